package manifest

import (
	"regexp"
	"strings"

	"github.com/depsentry/depsentry/domain"
)

// yarnLockParser handles yarn.lock (classic v1 format). The file is
// line-oriented: an unindented line ending in ":" opens a dependency block
// whose selectors name the package, and the indented `version "x.y.z"` line
// inside the block pins it.
type yarnLockParser struct{}

// NewYarnLockParser creates the yarn.lock parser.
func NewYarnLockParser() domain.ManifestParser {
	return &yarnLockParser{}
}

func (p *yarnLockParser) Name() string { return "yarn.lock" }

func (p *yarnLockParser) Matches(filename string) bool {
	return filename == "yarn.lock"
}

var yarnVersionLine = regexp.MustCompile(`^\s+version\s+"([^"]+)"`)

func (p *yarnLockParser) Parse(path string, content []byte) domain.ParseOutput {
	var out domain.ParseOutput
	current := "" // package name of the open block, "" when outside a block

	for _, line := range strings.Split(string(content), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		unindented := !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t")
		if unindented {
			current = ""
			trimmed := strings.TrimSpace(line)
			if strings.HasSuffix(trimmed, ":") && strings.Contains(trimmed, "@") {
				current = yarnBlockName(trimmed)
			}
			continue
		}

		if current == "" {
			continue
		}
		if m := yarnVersionLine.FindStringSubmatch(line); m != nil {
			out.Dependencies = append(out.Dependencies, domain.Dependency{
				Ecosystem: domain.EcosystemNpm,
				Name:      current,
				Version:   m[1],
				Manifest:  path,
			})
			current = "" // one version line closes the block
		}
	}
	return out
}

// yarnBlockName extracts the package name from a block header like
// `"@babel/core@^7.0.0", "@babel/core@^7.1.2":`. It takes the first comma-separated
// selector, stripped of quotes, truncated at the last "@" (which separates
// the name from the range; scoped names keep their leading "@").
func yarnBlockName(header string) string {
	header = strings.TrimSuffix(header, ":")
	selector := strings.TrimSpace(strings.Split(header, ",")[0])
	selector = strings.Trim(selector, `"`)
	at := strings.LastIndex(selector, "@")
	if at <= 0 {
		// "@" at position 0 is a scope marker, not a separator.
		return ""
	}
	return selector[:at]
}
