package manifest

import (
	"path"
	"sort"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// Candidate pairs a manifest path found in the repository index with the
// parser responsible for its format.
type Candidate struct {
	Path   string
	Parser domain.ManifestParser
}

// Ignored directories (exact match on any path segment). Vendored trees
// carry their own lockfiles that do not describe the scanned project.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	".venv":        {},
	"venv":         {},
}

// Registry holds every supported manifest parser in registration order.
type Registry struct {
	parsers []domain.ManifestParser
}

// NewRegistry creates a registry with all six supported formats registered.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewNpmLockParser())
	r.Register(NewYarnLockParser())
	r.Register(NewPnpmLockParser())
	r.Register(NewRequirementsParser())
	r.Register(NewPoetryLockParser())
	r.Register(NewPyprojectParser())
	return r
}

// Register appends a parser. Registration order is the scan precedence used
// when several manifests pin the same dependency.
func (r *Registry) Register(p domain.ManifestParser) {
	r.parsers = append(r.parsers, p)
}

// Names returns the registered format identifiers in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.Name())
	}
	return names
}

// Match returns the parser for the given base filename, or nil.
func (r *Registry) Match(filename string) domain.ManifestParser {
	for _, p := range r.parsers {
		if p.Matches(filename) {
			return p
		}
	}
	return nil
}

// Discover selects the manifest candidates from a repository file listing.
// The result is ordered by format precedence first and path second so that
// repeat scans of the same archive parse manifests in the same order.
func (r *Registry) Discover(files []string) []Candidate {
	byParser := make(map[string][]string)
	for _, f := range files {
		if inIgnoredDir(f) {
			continue
		}
		if p := r.Match(path.Base(f)); p != nil {
			byParser[p.Name()] = append(byParser[p.Name()], f)
		}
	}

	var candidates []Candidate
	for _, p := range r.parsers {
		paths := byParser[p.Name()]
		sort.Strings(paths)
		for _, fp := range paths {
			candidates = append(candidates, Candidate{Path: fp, Parser: p})
		}
	}
	return candidates
}

// sortedKeys returns a map's keys in lexical order. Parsers iterating
// decoded maps use it so one manifest always yields the same entry order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func inIgnoredDir(filePath string) bool {
	for _, seg := range strings.Split(path.Dir(filePath), "/") {
		if _, ok := ignoredDirs[seg]; ok {
			return true
		}
	}
	return false
}
