package manifest

import (
	"regexp"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// poetryLockParser handles poetry.lock. The file is TOML, but the engine
// only needs the "[[package]]" block headers and their name/version keys,
// so a narrow line scan keeps the parse fail-open on hand-edited files.
type poetryLockParser struct{}

// NewPoetryLockParser creates the poetry.lock parser.
func NewPoetryLockParser() domain.ManifestParser {
	return &poetryLockParser{}
}

func (p *poetryLockParser) Name() string { return "poetry.lock" }

func (p *poetryLockParser) Matches(filename string) bool {
	return filename == "poetry.lock"
}

var poetryKeyValue = regexp.MustCompile(`^(name|version)\s*=\s*"([^"]+)"`)

func (p *poetryLockParser) Parse(path string, content []byte) domain.ParseOutput {
	var out domain.ParseOutput
	var name, version string
	inPackage := false

	flush := func() {
		if inPackage && name != "" && version != "" {
			out.Dependencies = append(out.Dependencies, domain.Dependency{
				Ecosystem: domain.EcosystemPyPI,
				Name:      name,
				Version:   version,
				Manifest:  path,
			})
		} else if inPackage && (name != "" || version != "") {
			out.Skipped++
		}
		name, version = "", ""
	}

	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "[[package]]":
			flush()
			inPackage = true
		case strings.HasPrefix(line, "[") && line != "[[package]]":
			// Any other section ends the current package block.
			flush()
			inPackage = false
		case inPackage:
			if m := poetryKeyValue.FindStringSubmatch(line); m != nil {
				if m[1] == "name" {
					name = m[2]
				} else {
					version = m[2]
				}
			}
		}
	}
	flush()
	return out
}
