package domain

import "time"

// ResultCache memoizes successful scan results. It is a pure optimization:
// results are a pure function of the cache key, so concurrent writes to the
// same key are idempotent overwrites and need no locking discipline beyond
// the implementation's own.
type ResultCache interface {
	// Get returns the cached result for key, or false when absent or expired.
	Get(key string) (*ScanResult, bool)

	// Set stores an immutable result snapshot under key for the given TTL.
	Set(key string, result *ScanResult, ttl time.Duration)
}
