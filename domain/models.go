package domain

// Ecosystem identifies a package registry namespace.
type Ecosystem string

const (
	EcosystemNpm  Ecosystem = "npm"
	EcosystemPyPI Ecosystem = "PyPI"
)

// Dependency represents one exactly-pinned dependency extracted from a manifest.
type Dependency struct {
	Ecosystem Ecosystem // Registry namespace ("npm", "PyPI")
	Name      string    // Package name as published in the registry
	Version   string    // Exact pinned version
	Manifest  string    // Repository-relative path of the manifest it came from
}

// Key returns the identity key used for deduplication. Two dependencies with
// the same key are the same package at the same version regardless of which
// manifest declared them.
func (d Dependency) Key() string {
	return string(d.Ecosystem) + ":" + d.Name + "@" + d.Version
}

// ParseOutput is what every manifest parser returns. Parsers never fail on
// malformed input; entries they cannot use are counted in Skipped instead.
type ParseOutput struct {
	Dependencies []Dependency
	Skipped      int    // Dependency-shaped lines rejected (not exactly pinned)
	Note         string // Optional per-manifest diagnostic for the audit note
}

// SeverityEntry is one severity record attached to a vulnerability, either a
// scoring-vector type with a numeric score or an ecosystem-reported label.
type SeverityEntry struct {
	Type  string
	Score string
}

// FixEvent marks a version at which an affected range is resolved.
type FixEvent struct {
	Fixed string
}

// AffectedRange describes one affected package with its fix events.
type AffectedRange struct {
	Ecosystem Ecosystem
	Package   string
	Events    []FixEvent
}

// VulnerabilityDetail is the full record fetched for a single vulnerability ID.
type VulnerabilityDetail struct {
	ID              string
	Summary         string
	Details         string
	SeverityEntries []SeverityEntry
	Affected        []AffectedRange
	References      []string
}

// Finding is one (dependency, vulnerability) pairing with resolved severity
// and fix metadata. ID is unique within a scan.
type Finding struct {
	ID           string    `json:"id"`
	Ecosystem    Ecosystem `json:"ecosystem"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	VulnID       string    `json:"vulnId"`
	Severity     Severity  `json:"severity"`
	Summary      string    `json:"summary"`
	Details      string    `json:"details,omitempty"`
	FixedVersion string    `json:"fixedVersion,omitempty"`
	References   []string  `json:"references,omitempty"`
}

// ScanResult is the immutable outcome of one scan invocation.
type ScanResult struct {
	Findings        []Finding `json:"findings"`
	Note            string    `json:"note"`
	ScannedDeps     int       `json:"scannedDeps"`
	TotalParsedDeps int       `json:"totalParsedDeps"`
	ManifestsUsed   []string  `json:"manifestsUsed"`
	UniqueVulnIDs   int       `json:"uniqueVulnIds"`
	TotalVulnHits   int       `json:"totalVulnHits"`
	Truncated       bool      `json:"truncated"`
}

// Dependency/vulnerability limits. Caller-supplied values are clamped into
// these bounds before any I/O happens.
const (
	MinDeps     = 20
	MaxDeps     = 1500
	DefaultDeps = 500

	MinVulns     = 20
	MaxVulns     = 400
	DefaultVulns = 200
)

// ScanOptions carries the caller-tunable parameters of one scan.
type ScanOptions struct {
	AnalysisID string
	MaxDeps    int
	MaxVulns   int
}

// Clamped returns a copy with MaxDeps/MaxVulns forced into their bounds.
// Zero values select the defaults.
func (o ScanOptions) Clamped() ScanOptions {
	if o.MaxDeps == 0 {
		o.MaxDeps = DefaultDeps
	}
	if o.MaxVulns == 0 {
		o.MaxVulns = DefaultVulns
	}
	o.MaxDeps = clamp(o.MaxDeps, MinDeps, MaxDeps)
	o.MaxVulns = clamp(o.MaxVulns, MinVulns, MaxVulns)
	return o
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RepoMeta describes the indexed contents of a submitted repository.
type RepoMeta struct {
	RepoName string
	Root     string   // Common path prefix shared by all files
	Files    []string // Repository-relative file paths
}
