package domain

import "errors"

// ErrEditingDataNotFound is returned when no editing snapshot is stored under a key.
var ErrEditingDataNotFound = errors.New("editing data not found")

// ErrPropsNotFound is returned when a props collection has no entry for a uid.
var ErrPropsNotFound = errors.New("component props not found")

// ErrPropsFailed is returned when the loader for a uid failed.
var ErrPropsFailed = errors.New("component props failed to load")
