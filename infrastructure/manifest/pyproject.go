package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// pyprojectParser handles pyproject.toml. Two declaration styles yield
// dependencies: entries of the PEP 621 `dependencies = [...]` array that are
// exact pins, and `[tool.poetry.dependencies]` entries whose constraint is a
// purely numeric dotted string. Carets, ranges, git refs and tables count as
// unpinned.
type pyprojectParser struct{}

// NewPyprojectParser creates the pyproject.toml parser.
func NewPyprojectParser() domain.ManifestParser {
	return &pyprojectParser{}
}

func (p *pyprojectParser) Name() string { return "pyproject.toml" }

func (p *pyprojectParser) Matches(filename string) bool {
	return filename == "pyproject.toml"
}

var (
	pep621Pin        = regexp.MustCompile(`^"([A-Za-z0-9][A-Za-z0-9._-]*)\s*===?\s*([^"\s]+)"`)
	pep621Shaped     = regexp.MustCompile(`^"[A-Za-z0-9]`)
	poetryDepPin     = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*=\s*"(\d+(?:\.\d+)*)"$`)
	poetryDepShaped  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\s*=`)
	dependenciesOpen = regexp.MustCompile(`^dependencies\s*=\s*\[`)
)

func (p *pyprojectParser) Parse(path string, content []byte) domain.ParseOutput {
	var out domain.ParseOutput

	inArray := false       // inside `dependencies = [...]`
	inPoetryTable := false // inside `[tool.poetry.dependencies]`

	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inArray = false
			inPoetryTable = line == "[tool.poetry.dependencies]"
			continue
		}

		if dependenciesOpen.MatchString(line) {
			inArray = true
			line = strings.TrimSpace(line[strings.Index(line, "[")+1:])
			if line == "" {
				continue
			}
		}

		switch {
		case inArray:
			p.parseArrayEntries(path, line, &out)
			if strings.Contains(line, "]") {
				inArray = false
			}
		case inPoetryTable:
			p.parsePoetryEntry(path, line, &out)
		}
	}

	if out.Skipped > 0 {
		out.Note = fmt.Sprintf(
			"%s: %d dependency constraint(s) were not exact pins",
			path, out.Skipped,
		)
	}
	return out
}

// parseArrayEntries handles one line of the PEP 621 dependencies array, which
// may carry several comma-separated quoted entries.
func (p *pyprojectParser) parseArrayEntries(path, line string, out *domain.ParseOutput) {
	line = strings.TrimSuffix(strings.TrimSpace(line), "]")
	for _, entry := range strings.Split(line, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if m := pep621Pin.FindStringSubmatch(entry); m != nil {
			out.Dependencies = append(out.Dependencies, domain.Dependency{
				Ecosystem: domain.EcosystemPyPI,
				Name:      m[1],
				Version:   m[2],
				Manifest:  path,
			})
		} else if pep621Shaped.MatchString(entry) {
			out.Skipped++
		}
	}
}

// parsePoetryEntry handles one `name = <constraint>` line of the poetry
// dependencies table. Only plain numeric dotted strings are exact pins; the
// "python" interpreter constraint is not a package.
func (p *pyprojectParser) parsePoetryEntry(path, line string, out *domain.ParseOutput) {
	if m := poetryDepPin.FindStringSubmatch(line); m != nil {
		if m[1] == "python" {
			return
		}
		out.Dependencies = append(out.Dependencies, domain.Dependency{
			Ecosystem: domain.EcosystemPyPI,
			Name:      m[1],
			Version:   m[2],
			Manifest:  path,
		})
		return
	}
	if poetryDepShaped.MatchString(line) && !strings.HasPrefix(line, "python") {
		out.Skipped++
	}
}
