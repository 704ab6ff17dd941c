/*
Package ports defines the driven ports (interfaces) of the canopy engine.

These interfaces decouple the tree processing core from the collaborators it is
handed at runtime: the component module lookup, the HTTP client used for editing
snapshots, and the store behind the editing data API.

# Key Interfaces

  - ModuleResolver: maps a component name to its ComponentModule (and thus its loaders).
  - Loader: the per-component data loading function invoked during props aggregation.
  - DataFetcher: GET/PUT client used by the editing data service.
  - EditingDataStore: persists editing snapshots by key.
*/
package ports
