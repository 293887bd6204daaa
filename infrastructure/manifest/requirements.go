package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// requirementsParser handles pip requirements.txt. Only exact pins
// (name==version or name===version) become dependencies; every other
// dependency-shaped line bumps the unpinned counter, which is surfaced in
// the scan note so users learn why those packages were not checked.
type requirementsParser struct{}

// NewRequirementsParser creates the requirements.txt parser.
func NewRequirementsParser() domain.ManifestParser {
	return &requirementsParser{}
}

func (p *requirementsParser) Name() string { return "requirements.txt" }

func (p *requirementsParser) Matches(filename string) bool {
	return filename == "requirements.txt"
}

var (
	pinnedRequirement = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*===?\s*(\S+)$`)
	requirementShaped = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)
)

func (p *requirementsParser) Parse(path string, content []byte) domain.ParseOutput {
	var out domain.ParseOutput

	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		// Strip trailing comments and environment markers.
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			// Option flags (-r, -e, --index-url ...) are not dependencies.
			continue
		}

		if m := pinnedRequirement.FindStringSubmatch(line); m != nil {
			out.Dependencies = append(out.Dependencies, domain.Dependency{
				Ecosystem: domain.EcosystemPyPI,
				Name:      m[1],
				Version:   m[2],
				Manifest:  path,
			})
			continue
		}
		if requirementShaped.MatchString(line) {
			out.Skipped++
		}
	}

	if out.Skipped > 0 {
		out.Note = fmt.Sprintf(
			"%s: %d requirement(s) without exact '==' pins were not checked",
			path, out.Skipped,
		)
	}
	return out
}
