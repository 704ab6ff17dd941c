package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// EditingDataStore persists editing snapshots between the editor's PUT and the
// preview render's GET.
type EditingDataStore interface {
	// Set stores data under key, replacing any previous snapshot.
	Set(ctx context.Context, key string, data *domain.EditingData) error

	// Get retrieves the snapshot stored under key.
	// Returns domain.ErrEditingDataNotFound if there is none.
	Get(ctx context.Context, key string) (*domain.EditingData, error)
}

// DataFetcher is the HTTP client the editing data service talks through.
// Retries, TLS and other transport concerns belong to the implementation.
type DataFetcher interface {
	// Get fetches url and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)

	// Put sends body, encoded as JSON, to url.
	Put(ctx context.Context, url string, body any) error
}

// KeyGenerator produces opaque unique keys for editing snapshots.
type KeyGenerator func(data *domain.EditingData) string
