package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEditingDataStoreContract runs a suite of tests to verify that an EditingDataStore
// implementation adheres to the defined interface contract.
func RunEditingDataStoreContract(t *testing.T, store ports.EditingDataStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	newData := func(path string) *domain.EditingData {
		return &domain.EditingData{
			Path:     path,
			Language: "en",
			LayoutData: &domain.LayoutServiceData{
				Sitecore: domain.LayoutServiceContextData{
					Route: &domain.RouteData{
						Name:   "home",
						ItemID: "d6ac9d26-9474-51cf-982d-4f8d44951229",
						Placeholders: domain.PlaceholdersOf(
							"main", domain.Placeholder{
								&domain.ComponentRendering{UID: "x1", ComponentName: "Hero"},
							},
						),
					},
				},
			},
			Dictionary: map[string]string{"hello": "Hello"},
		}
	}

	t.Run("Set and Get", func(t *testing.T) {
		data := newData("/styleguide")

		err := store.Set(ctx, key, data)
		require.NoError(t, err, "Set should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "/styleguide", loaded.Path)
		assert.Equal(t, "en", loaded.Language)
		assert.Equal(t, "Hello", loaded.Dictionary["hello"])
		assert.Equal(t, data.ItemID(), loaded.ItemID())

		main, ok := loaded.LayoutData.Placeholders().Get("main")
		require.True(t, ok, "layout placeholders should survive storage")
		require.Len(t, main, 1)
		assert.Equal(t, "x1", main[0].(*domain.ComponentRendering).UID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, newData("/first")))
		require.NoError(t, store.Set(ctx, key, newData("/second")))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "/second", loaded.Path)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrEditingDataNotFound)
	})

	t.Run("Stored copy is isolated", func(t *testing.T) {
		data := newData("/isolated")
		require.NoError(t, store.Set(ctx, key+"-iso", data))

		data.Path = "/mutated"

		loaded, err := store.Get(ctx, key+"-iso")
		require.NoError(t, err)
		assert.Equal(t, "/isolated", loaded.Path)
	})
}
