package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/infrastructure/manifest"
	"github.com/depsentry/depsentry/infrastructure/telemetry"
)

// DefaultCacheTTL bounds how long a successful scan result is memoized.
const DefaultCacheTTL = 30 * time.Minute

// ScanService orchestrates the full correlation pipeline:
// discover manifests -> parse -> deduplicate and cap -> batch query ->
// detail fetch -> assemble findings.
type ScanService struct {
	archive   domain.ArchiveStore
	index     domain.RepoIndex
	registry  domain.VulnerabilityRegistry
	cache     domain.ResultCache
	manifests *manifest.Registry
	cacheTTL  time.Duration
}

// NewScanService creates the orchestrator. cache may be nil to disable
// memoization; every other collaborator is required.
func NewScanService(
	archive domain.ArchiveStore,
	index domain.RepoIndex,
	registry domain.VulnerabilityRegistry,
	cache domain.ResultCache,
	manifests *manifest.Registry,
) *ScanService {
	return &ScanService{
		archive:   archive,
		index:     index,
		registry:  registry,
		cache:     cache,
		manifests: manifests,
		cacheTTL:  DefaultCacheTTL,
	}
}

// WithCacheTTL overrides the memoization window. Non-positive values are
// ignored.
func (s *ScanService) WithCacheTTL(ttl time.Duration) *ScanService {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// Scan runs one scan invocation. Failures occurring before any findings
// exist surface as typed *domain.ScanError values; once detail fetching
// starts, per-item failures are absorbed.
func (s *ScanService) Scan(
	ctx context.Context,
	opts domain.ScanOptions,
) (*domain.ScanResult, error) {
	if strings.TrimSpace(opts.AnalysisID) == "" {
		return nil, domain.NewScanError(
			domain.ErrCodeInvalidInput, "analysis id is required", nil,
		)
	}
	opts = opts.Clamped()
	telemetry.ScansStarted.Inc()

	// The key carries every parameter that affects output.
	cacheKey := fmt.Sprintf("scan|%s|%d|%d", opts.AnalysisID, opts.MaxDeps, opts.MaxVulns)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			telemetry.CacheHits.Inc()
			logger.Debugf("[scan] cache hit for %s", cacheKey)
			return cached, nil
		}
	}

	result, err := s.runPipeline(ctx, opts)
	if err != nil {
		telemetry.ScansCompleted.WithLabelValues(string(domain.CodeOf(err))).Inc()
		return nil, err
	}

	telemetry.ScansCompleted.WithLabelValues("success").Inc()
	if s.cache != nil {
		// Only successful results are memoized; errors and rate-limited
		// outcomes must stay uncached so retries reach the registry.
		s.cache.Set(cacheKey, result, s.cacheTTL)
	}
	return result, nil
}

func (s *ScanService) runPipeline(
	ctx context.Context,
	opts domain.ScanOptions,
) (*domain.ScanResult, error) {
	meta, err := s.index.GetRepoMeta(ctx, opts.AnalysisID)
	if err != nil {
		return nil, mapArchiveError(err, "failed to read repository index")
	}

	candidates := s.manifests.Discover(meta.Files)
	if len(candidates) == 0 {
		logger.Infof("[scan] %s: no dependency manifests found", opts.AnalysisID)
		return &domain.ScanResult{
			Findings: []domain.Finding{},
			Note: "No dependency manifests found in the repository. Supported formats: " +
				strings.Join(s.manifests.Names(), ", ") + ".",
			ManifestsUsed: []string{},
		}, nil
	}

	parsed, err := s.parseManifests(ctx, opts.AnalysisID, candidates)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, domain.NewScanError(
			domain.ErrCodeNoReadableManifests,
			fmt.Sprintf("%d manifest(s) found but none were readable", len(candidates)),
			nil,
		)
	}

	set := buildDependencySet(parsed, opts.MaxDeps)
	if len(set.Deps) == 0 {
		logger.Infof("[scan] %s: manifests present but nothing exactly pinned", opts.AnalysisID)
		return &domain.ScanResult{
			Findings: []domain.Finding{},
			Note: composeNote(set, 0, 0, 0, opts,
				"No exactly pinned dependencies were found. Pin exact versions "+
					"(lockfiles, or requirement pins like name==1.2.3) to enable "+
					"vulnerability correlation."),
			TotalParsedDeps: set.TotalParsed,
			ManifestsUsed:   set.ManifestsUsed,
		}, nil
	}

	report, err := s.registry.QueryBatch(ctx, set.Deps)
	if err != nil {
		return nil, err
	}

	ids := report.UniqueIDs
	if len(ids) > opts.MaxVulns {
		logger.Debugf("[scan] capping detail lookups: %d -> %d", len(ids), opts.MaxVulns)
		ids = ids[:opts.MaxVulns]
	}
	details := s.registry.FetchDetails(ctx, ids)
	if err := ctx.Err(); err != nil {
		// Caller cancelled mid-flight; partial phase-2 progress is discarded.
		return nil, domain.NewScanError(domain.ErrCodeUpstream, "scan cancelled", err)
	}

	findings := assembleFindings(set.Deps, report.IDsByDep, details)

	result := &domain.ScanResult{
		Findings:        findings,
		ScannedDeps:     len(set.Deps),
		TotalParsedDeps: set.TotalParsed,
		ManifestsUsed:   set.ManifestsUsed,
		UniqueVulnIDs:   len(report.UniqueIDs),
		TotalVulnHits:   report.TotalHits,
		Truncated:       set.Truncated,
	}
	result.Note = composeNote(
		set, report.TotalHits, len(report.UniqueIDs), len(ids), opts,
		downgradeCaveat(findings),
	)

	logger.Infof("[scan] %s: %d finding(s) from %d dependencies",
		opts.AnalysisID, len(findings), len(set.Deps))
	return result, nil
}

// parseManifests fetches and parses every candidate, in scan order.
// Unreadable or empty manifests are dropped with a warning; an exhausted
// archive aborts the scan.
func (s *ScanService) parseManifests(
	ctx context.Context,
	analysisID string,
	candidates []manifest.Candidate,
) ([]parsedManifest, error) {
	var parsed []parsedManifest
	for _, cand := range candidates {
		content, err := s.archive.GetFile(ctx, analysisID, cand.Path)
		if err != nil {
			if errors.Is(err, domain.ErrArchiveNotReady) {
				return nil, mapArchiveError(err, "archive expired during scan")
			}
			logger.Warnf("[scan] unreadable manifest %s: %v", cand.Path, err)
			continue
		}
		if len(content) == 0 {
			logger.Warnf("[scan] empty manifest %s", cand.Path)
			continue
		}
		parsed = append(parsed, parsedManifest{
			Path:   cand.Path,
			Output: cand.Parser.Parse(cand.Path, content),
		})
	}
	return parsed, nil
}

func mapArchiveError(err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrArchiveNotReady):
		return domain.NewScanError(domain.ErrCodeArchiveNotReady, message, err)
	case errors.Is(err, domain.ErrArchiveCorrupt):
		return domain.NewScanError(domain.ErrCodeArchiveCorrupt, message, err)
	default:
		return domain.NewScanError(domain.ErrCodeUpstream, message, err)
	}
}

// composeNote builds the deterministic audit trail for the scan. The same
// inputs always produce the same string.
func composeNote(
	set dependencySet,
	totalHits, uniqueIDs, fetchedIDs int,
	opts domain.ScanOptions,
	extra string,
) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Scanned %d of %d parsed dependencies from %d manifest(s): %s.",
		len(set.Deps), set.TotalParsed, len(set.ManifestsUsed),
		strings.Join(set.ManifestsUsed, ", "),
	))
	if set.Truncated {
		parts = append(parts, fmt.Sprintf(
			"Dependency list truncated: %d of %d unique dependencies scanned.",
			opts.MaxDeps, set.TotalUnique,
		))
	}
	if set.Unpinned > 0 {
		parts = append(parts, fmt.Sprintf(
			"%d manifest entry(ies) without an exact pin were not checked.",
			set.Unpinned,
		))
	}
	if len(set.Deps) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Found %d vulnerability hit(s) across %d unique advisories.",
			totalHits, uniqueIDs,
		))
	}
	if uniqueIDs > fetchedIDs {
		parts = append(parts, fmt.Sprintf(
			"Detail lookups capped to %d of %d advisories.",
			fetchedIDs, uniqueIDs,
		))
	}
	parts = append(parts, set.ParserNotes...)
	if extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, " ")
}

// downgradeCaveat flags the inherited fix-version fallback: when no known
// fix exceeds the pinned version, the smallest known fix is reported even
// though it can look like a downgrade.
func downgradeCaveat(findings []domain.Finding) string {
	for _, f := range findings {
		if f.FixedVersion == "" {
			continue
		}
		if !domain.CompareVersions(f.Ecosystem, f.FixedVersion, f.Version) {
			return "Note: some fixedVersion values do not exceed the pinned version; " +
				"they are the smallest known fix when no newer one exists."
		}
	}
	return ""
}
