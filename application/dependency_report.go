package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// DependencySummary is the parse-only view of a repository: the dependency
// set a scan would correlate, without touching the registry.
type DependencySummary struct {
	Dependencies  []domain.Dependency `json:"dependencies"`
	TotalParsed   int                 `json:"totalParsedDeps"`
	ManifestsUsed []string            `json:"manifestsUsed"`
	Truncated     bool                `json:"truncated"`
	Notes         []string            `json:"notes,omitempty"`
}

// Dependencies discovers, parses, deduplicates, and caps the repository's
// dependencies without querying the vulnerability registry.
func (s *ScanService) Dependencies(
	ctx context.Context,
	opts domain.ScanOptions,
) (*DependencySummary, error) {
	if strings.TrimSpace(opts.AnalysisID) == "" {
		return nil, domain.NewScanError(
			domain.ErrCodeInvalidInput, "analysis id is required", nil,
		)
	}
	opts = opts.Clamped()

	meta, err := s.index.GetRepoMeta(ctx, opts.AnalysisID)
	if err != nil {
		return nil, mapArchiveError(err, "failed to read repository index")
	}

	candidates := s.manifests.Discover(meta.Files)
	if len(candidates) == 0 {
		return &DependencySummary{
			Dependencies:  []domain.Dependency{},
			ManifestsUsed: []string{},
			Notes: []string{
				"No dependency manifests found in the repository. Supported formats: " +
					strings.Join(s.manifests.Names(), ", ") + ".",
			},
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
	summary := &DependencySummary{
		Dependencies:  set.Deps,
		TotalParsed:   set.TotalParsed,
		ManifestsUsed: set.ManifestsUsed,
		Truncated:     set.Truncated,
		Notes:         set.ParserNotes,
	}
	if summary.Dependencies == nil {
		summary.Dependencies = []domain.Dependency{}
	}
	if set.Truncated {
		summary.Notes = append([]string{fmt.Sprintf(
			"Dependency list truncated: %d of %d unique dependencies kept.",
			opts.MaxDeps, set.TotalUnique,
		)}, summary.Notes...)
	}
	return summary, nil
}
