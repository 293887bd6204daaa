package domain

import "strings"

// Severity is the resolved severity level of a finding. Every finding carries
// one of the four known levels; inputs that cannot be resolved default to
// SeverityMedium rather than being dropped.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns an integer rank for sorting (LOW=1 .. CRITICAL=4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity maps an ecosystem-reported severity string onto one of the
// four levels. "moderate" is accepted as MEDIUM (GitHub advisories use it).
// The second return is false when the string is not a known level.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LOW":
		return SeverityLow, true
	case "MEDIUM", "MODERATE":
		return SeverityMedium, true
	case "HIGH":
		return SeverityHigh, true
	case "CRITICAL":
		return SeverityCritical, true
	default:
		return SeverityMedium, false
	}
}

// SeverityFromScore maps a numeric CVSS-style score onto a level.
func SeverityFromScore(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
