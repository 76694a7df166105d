package cache

import "errors"

// Common cache errors. ErrNotFound and ErrCorrupt are recovered internally
// by the Manager (both become a cache miss); storage and executor errors
// always propagate to the caller.
var (
	ErrNotFound = errors.New("cache entry not found")
	ErrCorrupt  = errors.New("cache entry corrupt")
)
