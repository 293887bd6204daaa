package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/depsentry/depsentry/domain"
)

// pnpmLockParser handles pnpm-lock.yaml. Entries in the top-level "packages"
// section are keyed "/<name>@<version>" with an optional parenthesized
// peer-dependency suffix; the key alone carries everything we need.
type pnpmLockParser struct{}

// NewPnpmLockParser creates the pnpm-lock.yaml parser.
func NewPnpmLockParser() domain.ManifestParser {
	return &pnpmLockParser{}
}

func (p *pnpmLockParser) Name() string { return "pnpm-lock.yaml" }

func (p *pnpmLockParser) Matches(filename string) bool {
	return filename == "pnpm-lock.yaml"
}

type pnpmLockFile struct {
	Packages map[string]yaml.Node `yaml:"packages"`
}

func (p *pnpmLockParser) Parse(path string, content []byte) domain.ParseOutput {
	var lock pnpmLockFile
	if err := yaml.Unmarshal(content, &lock); err != nil {
		return domain.ParseOutput{Note: path + ": not valid YAML, skipped"}
	}

	var out domain.ParseOutput
	for _, key := range sortedKeys(lock.Packages) {
		name, version, ok := splitPnpmKey(key)
		if !ok {
			out.Skipped++
			continue
		}
		out.Dependencies = append(out.Dependencies, domain.Dependency{
			Ecosystem: domain.EcosystemNpm,
			Name:      name,
			Version:   version,
			Manifest:  path,
		})
	}
	return out
}

// splitPnpmKey decomposes "/@scope/name@1.2.3(peer@4.5.6)" into name and
// version. The peer suffix is dropped before splitting on the last "@" so
// that "@" characters inside the suffix cannot shift the cut point.
func splitPnpmKey(key string) (name, version string, ok bool) {
	key = strings.TrimPrefix(key, "/")
	if i := strings.Index(key, "("); i >= 0 {
		key = key[:i]
	}
	at := strings.LastIndex(key, "@")
	if at <= 0 || at == len(key)-1 {
		return "", "", false
	}
	return key[:at], key[at+1:], true
}
