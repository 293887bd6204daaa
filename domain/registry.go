package domain

import "context"

// BatchReport is the outcome of the phase-1 batch query: per-dependency
// vulnerability IDs plus aggregate counters across all batches.
type BatchReport struct {
	// IDsByDep is positionally aligned with the queried dependency slice:
	// IDsByDep[i] lists the vulnerability IDs reported for dependency i.
	IDsByDep [][]string
	// UniqueIDs lists every distinct vulnerability ID in first-seen order.
	UniqueIDs []string
	// TotalHits counts every (dependency, vulnerability) pairing, including
	// IDs shared by several dependencies.
	TotalHits int
}

// VulnerabilityRegistry abstracts the remote vulnerability database queried
// through the batch-then-detail protocol.
type VulnerabilityRegistry interface {
	// QueryBatch runs phase 1: it partitions deps into request-size batches,
	// queries each, and correlates the positionally-aligned responses back to
	// the input order. A failed batch aborts with a typed ScanError
	// distinguishing rate limiting from other upstream failures.
	QueryBatch(ctx context.Context, deps []Dependency) (*BatchReport, error)

	// FetchDetails runs phase 2: it fetches full records for the given IDs
	// through a bounded worker pool. Individual failures are logged and
	// skipped; the returned map holds only the records obtained.
	FetchDetails(ctx context.Context, ids []string) map[string]*VulnerabilityDetail
}
