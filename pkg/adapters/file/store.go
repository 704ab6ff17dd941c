package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// ErrInvalidKey is returned for keys that cannot be used as a file name.
var ErrInvalidKey = errors.New("invalid editing data key")

// Store implements ports.EditingDataStore using the local filesystem.
// It stores snapshots as JSON files in a configured directory.
type Store struct {
	BasePath string
	// TTL expires snapshots by modification time. Zero keeps them forever.
	TTL time.Duration

	now func() time.Time
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "<tmp>/canopy/editing-data".
func New(basePath string, ttl time.Duration) *Store {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "canopy", "editing-data")
	}
	return &Store{BasePath: basePath, TTL: ttl, now: time.Now}
}

func (s *Store) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.BasePath, key+".json"), nil
}

// Set persists the snapshot to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Set(ctx context.Context, key string, data *domain.EditingData) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure editing data directory: %w", err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal editing data: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+key+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(raw); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing editing data for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Get retrieves the snapshot from its JSON file. Expired files are removed and
// reported as missing.
func (s *Store) Get(ctx context.Context, key string) (*domain.EditingData, error) {
	filePath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrEditingDataNotFound
		}
		return nil, fmt.Errorf("failed to stat editing data file: %w", err)
	}
	if s.expired(info.ModTime()) {
		_ = os.Remove(filePath)
		return nil, domain.ErrEditingDataNotFound
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrEditingDataNotFound
		}
		return nil, fmt.Errorf("failed to read editing data file: %w", err)
	}

	var data domain.EditingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal editing data: %w", err)
	}
	return &data, nil
}

// Prune removes expired snapshots and returns how many were deleted.
func (s *Store) Prune(ctx context.Context) (int, error) {
	if s.TTL <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list editing data: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := entry.Info()
		if err != nil || !s.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.BasePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) expired(modTime time.Time) bool {
	if s.TTL <= 0 {
		return false
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return now().Sub(modTime) > s.TTL
}
