package manifest

import (
	"encoding/json"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

const nodeModulesPrefix = "node_modules/"

// npmLockParser handles package-lock.json in all three lockfile versions.
// v2/v3 lockfiles carry a flat "packages" map keyed by install path; v1
// lockfiles nest a recursive "dependencies" tree.
type npmLockParser struct{}

// NewNpmLockParser creates the package-lock.json parser.
func NewNpmLockParser() domain.ManifestParser {
	return &npmLockParser{}
}

func (p *npmLockParser) Name() string { return "package-lock.json" }

func (p *npmLockParser) Matches(filename string) bool {
	return filename == "package-lock.json" || filename == "npm-shrinkwrap.json"
}

type npmLockFile struct {
	LockfileVersion int                       `json:"lockfileVersion"`
	Packages        map[string]npmLockPackage `json:"packages"`
	Dependencies    map[string]npmLockV1Node  `json:"dependencies"`
}

type npmLockPackage struct {
	Version string `json:"version"`
}

type npmLockV1Node struct {
	Version      string                   `json:"version"`
	Dependencies map[string]npmLockV1Node `json:"dependencies"`
}

func (p *npmLockParser) Parse(path string, content []byte) domain.ParseOutput {
	var lock npmLockFile
	if err := json.Unmarshal(content, &lock); err != nil {
		return domain.ParseOutput{Note: path + ": not valid JSON, skipped"}
	}

	var out domain.ParseOutput
	if len(lock.Packages) > 0 {
		p.parsePackagesMap(path, lock.Packages, &out)
		return out
	}
	p.walkV1Tree(path, lock.Dependencies, &out)
	return out
}

// parsePackagesMap reads the v2/v3 flat map. Keys look like
// "node_modules/<name>" (nested installs repeat the prefix); the package name
// is everything after the last occurrence.
func (p *npmLockParser) parsePackagesMap(
	path string,
	packages map[string]npmLockPackage,
	out *domain.ParseOutput,
) {
	for _, key := range sortedKeys(packages) {
		pkg := packages[key]
		idx := strings.LastIndex(key, nodeModulesPrefix)
		if idx < 0 {
			// The "" root entry and workspace paths carry no registry name.
			continue
		}
		name := key[idx+len(nodeModulesPrefix):]
		if name == "" || pkg.Version == "" {
			out.Skipped++
			continue
		}
		out.Dependencies = append(out.Dependencies, domain.Dependency{
			Ecosystem: domain.EcosystemNpm,
			Name:      name,
			Version:   pkg.Version,
			Manifest:  path,
		})
	}
}

// walkV1Tree recursively descends the v1 "dependencies" tree.
func (p *npmLockParser) walkV1Tree(
	path string,
	nodes map[string]npmLockV1Node,
	out *domain.ParseOutput,
) {
	for _, name := range sortedKeys(nodes) {
		node := nodes[name]
		if node.Version == "" {
			out.Skipped++
		} else {
			out.Dependencies = append(out.Dependencies, domain.Dependency{
				Ecosystem: domain.EcosystemNpm,
				Name:      name,
				Version:   node.Version,
				Manifest:  path,
			})
		}
		if len(node.Dependencies) > 0 {
			p.walkV1Tree(path, node.Dependencies, out)
		}
	}
}
