// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"time"

	"github.com/depsentry/depsentry/domain"
)

// ---------------------------------------------------------------------------
// SpyArchive
// ---------------------------------------------------------------------------

// SpyArchive implements domain.ArchiveStore and domain.RepoIndex as a
// configurable spy. Configure Files/Meta for the paths your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyArchive struct {
	// --- GetFile ---
	Files      map[string][]byte // path -> content
	GetFileErr error             // returned for paths not in Files
	// spy: paths that were requested
	RequestedPaths []string

	// --- GetRepoMeta ---
	Meta    *domain.RepoMeta
	MetaErr error
	// spy: analysis ids that were requested
	RequestedIDs []string
}

var (
	_ domain.ArchiveStore = (*SpyArchive)(nil)
	_ domain.RepoIndex    = (*SpyArchive)(nil)
)

func (a *SpyArchive) GetFile(_ context.Context, _, path string) ([]byte, error) {
	a.RequestedPaths = append(a.RequestedPaths, path)
	if a.Files != nil {
		if content, ok := a.Files[path]; ok {
			return content, nil
		}
	}
	if a.GetFileErr != nil {
		return nil, a.GetFileErr
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrArchiveCorrupt, path)
}

func (a *SpyArchive) GetRepoMeta(
	_ context.Context,
	analysisID string,
) (*domain.RepoMeta, error) {
	a.RequestedIDs = append(a.RequestedIDs, analysisID)
	if a.MetaErr != nil {
		return nil, a.MetaErr
	}
	if a.Meta != nil {
		return a.Meta, nil
	}
	return &domain.RepoMeta{RepoName: "repo", Root: "repo"}, nil
}

// ---------------------------------------------------------------------------
// SpyRegistry
// ---------------------------------------------------------------------------

// SpyRegistry implements domain.VulnerabilityRegistry as a configurable spy.
type SpyRegistry struct {
	// --- QueryBatch ---
	Report   *domain.BatchReport
	BatchErr error
	// spy: dependency slices queried
	QueriedDeps [][]domain.Dependency

	// --- FetchDetails ---
	Details map[string]*domain.VulnerabilityDetail
	// spy: id slices fetched
	FetchedIDs [][]string
}

var _ domain.VulnerabilityRegistry = (*SpyRegistry)(nil)

func (r *SpyRegistry) QueryBatch(
	_ context.Context,
	deps []domain.Dependency,
) (*domain.BatchReport, error) {
	r.QueriedDeps = append(r.QueriedDeps, deps)
	if r.BatchErr != nil {
		return nil, r.BatchErr
	}
	if r.Report != nil {
		return r.Report, nil
	}
	return &domain.BatchReport{IDsByDep: make([][]string, len(deps))}, nil
}

func (r *SpyRegistry) FetchDetails(
	_ context.Context,
	ids []string,
) map[string]*domain.VulnerabilityDetail {
	r.FetchedIDs = append(r.FetchedIDs, ids)
	details := make(map[string]*domain.VulnerabilityDetail)
	for _, id := range ids {
		if d, ok := r.Details[id]; ok {
			details[id] = d
		}
	}
	return details
}

// ---------------------------------------------------------------------------
// SpyCache
// ---------------------------------------------------------------------------

// SpyCache implements domain.ResultCache with a plain map and call tracking.
// TTLs are recorded but never enforced.
type SpyCache struct {
	Entries map[string]*domain.ScanResult
	// spy: keys and TTLs from Set calls
	SetKeys []string
	SetTTLs []time.Duration
	// spy: keys from Get calls
	GetKeys []string
}

var _ domain.ResultCache = (*SpyCache)(nil)

func (c *SpyCache) Get(key string) (*domain.ScanResult, bool) {
	c.GetKeys = append(c.GetKeys, key)
	result, ok := c.Entries[key]
	return result, ok
}

func (c *SpyCache) Set(key string, result *domain.ScanResult, ttl time.Duration) {
	if c.Entries == nil {
		c.Entries = make(map[string]*domain.ScanResult)
	}
	c.Entries[key] = result
	c.SetKeys = append(c.SetKeys, key)
	c.SetTTLs = append(c.SetTTLs, ttl)
}
