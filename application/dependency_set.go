package application

import (
	logger "github.com/sirupsen/logrus"

	"github.com/depsentry/depsentry/domain"
)

// parsedManifest pairs a manifest path with its parse output, in scan order.
type parsedManifest struct {
	Path   string
	Output domain.ParseOutput
}

// dependencySet is the deduplicated, capped dependency list together with
// the bookkeeping the audit note needs.
type dependencySet struct {
	Deps          []domain.Dependency
	TotalParsed   int
	TotalUnique   int
	Truncated     bool
	ManifestsUsed []string
	Unpinned      int
	ParserNotes   []string
}

// buildDependencySet merges parser outputs in manifest scan order,
// deduplicates by identity key (first occurrence wins, so earlier manifests
// take precedence) and caps the result at maxDeps.
func buildDependencySet(parsed []parsedManifest, maxDeps int) dependencySet {
	set := dependencySet{}
	seen := make(map[string]struct{})

	for _, pm := range parsed {
		set.ManifestsUsed = append(set.ManifestsUsed, pm.Path)
		set.Unpinned += pm.Output.Skipped
		if pm.Output.Note != "" {
			set.ParserNotes = append(set.ParserNotes, pm.Output.Note)
		}
		for _, dep := range pm.Output.Dependencies {
			set.TotalParsed++
			key := dep.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			set.Deps = append(set.Deps, dep)
		}
	}

	set.TotalUnique = len(set.Deps)
	if len(set.Deps) > maxDeps {
		logger.Debugf("[scan] capping dependency set: %d -> %d", len(set.Deps), maxDeps)
		set.Deps = set.Deps[:maxDeps]
		set.Truncated = true
	}
	return set
}
