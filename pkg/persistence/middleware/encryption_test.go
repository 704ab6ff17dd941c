package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/ports/tests"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.EditingDataStore, cfg middleware.EncryptionConfig) ports.EditingDataStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware: %v", err)
	}
	return mw(next)
}

func snapshot(path string) *domain.EditingData {
	return &domain.EditingData{
		Path:       path,
		Language:   "en",
		Dictionary: map[string]string{"greeting": "Hello"},
		LayoutData: &domain.LayoutServiceData{Sitecore: domain.LayoutServiceContextData{
			Route: &domain.RouteData{Name: "home", ItemID: "item-1"},
		}},
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	tests.RunEditingDataStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	if err := secureStore.Set(ctx, "k1", snapshot("/secret-launch")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The wrapped store only holds the envelope.
	stored, err := underlyingStore.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if stored.Path != "" || stored.LayoutData != nil {
		t.Fatalf("Expected snapshot to be hidden, found path %q", stored.Path)
	}
	if _, ok := stored.Dictionary[middleware.EnvelopeKey]; !ok {
		t.Fatal("Expected envelope entry in dictionary")
	}
	if _, ok := stored.Dictionary["greeting"]; ok {
		t.Fatal("Dictionary leaked into the envelope")
	}

	loaded, err := secureStore.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if loaded.Path != "/secret-launch" || loaded.ItemID() != "item-1" || loaded.Dictionary["greeting"] != "Hello" {
		t.Errorf("Unexpected snapshot after decrypt: %+v", loaded)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: oldKey})
	if err := secureStoreOld.Set(ctx, "rotation", snapshot("/old")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	secureStoreNew := encrypted(t, underlyingStore, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := secureStoreNew.Get(ctx, "rotation")
	if err != nil {
		t.Fatalf("Get with rotated key failed: %v", err)
	}
	if loaded.Path != "/old" {
		t.Errorf("Decryption with fallback key failed")
	}

	if err := secureStoreNew.Set(ctx, "rotation", snapshot("/new")); err != nil {
		t.Fatalf("Set with new key failed: %v", err)
	}
	if _, err := secureStoreOld.Get(ctx, "rotation"); err == nil {
		t.Error("Expected failure when reading new-key data with the old key only")
	}
}

func TestEncryptionMiddleware_RejectsPlainSnapshots(t *testing.T) {
	underlyingStore := memory.NewStore()
	if err := underlyingStore.Set(context.Background(), "plain", snapshot("/")); err != nil {
		t.Fatal(err)
	}

	secureStore := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := secureStore.Get(context.Background(), "plain"); err == nil {
		t.Error("Expected plain snapshot to be rejected")
	}
}

func TestEncryptionMiddleware_NotFoundPassesThrough(t *testing.T) {
	secureStore := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secureStore.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEditingDataNotFound) {
		t.Errorf("Expected ErrEditingDataNotFound, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")}); !errors.Is(err, middleware.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	if !errors.Is(err, middleware.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for fallback, got %v", err)
	}
}
