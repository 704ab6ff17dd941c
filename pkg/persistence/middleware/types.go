// Package middleware wraps editing data stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/canopy/pkg/ports"

// Middleware allows wrapping an EditingDataStore to add behavior.
type Middleware func(ports.EditingDataStore) ports.EditingDataStore

// Chain applies mws so that the first one sees calls first.
func Chain(store ports.EditingDataStore, mws ...Middleware) ports.EditingDataStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
