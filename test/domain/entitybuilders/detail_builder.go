package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/depsentry/depsentry/domain"
)

// DetailBuilder helps create vulnerability details with a fluent interface.
type DetailBuilder struct {
	*testkit.BaseBuilder
	id       string
	summary  string
	severity []domain.SeverityEntry
	affected []domain.AffectedRange
}

// NewDetailBuilder creates a new detail builder with sensible defaults.
func NewDetailBuilder() *DetailBuilder {
	return &DetailBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		id:          "GHSA-test",
		summary:     "test advisory",
	}
}

// WithID sets the vulnerability ID.
func (b *DetailBuilder) WithID(id string) *DetailBuilder {
	b.id = id
	return b
}

// WithSummary sets the advisory summary.
func (b *DetailBuilder) WithSummary(summary string) *DetailBuilder {
	b.summary = summary
	return b
}

// WithScore appends a numeric severity entry.
func (b *DetailBuilder) WithScore(score string) *DetailBuilder {
	b.severity = append(b.severity, domain.SeverityEntry{Type: "CVSS_V3", Score: score})
	return b
}

// WithEcosystemSeverity appends an ecosystem severity label entry.
func (b *DetailBuilder) WithEcosystemSeverity(label string) *DetailBuilder {
	b.severity = append(b.severity, domain.SeverityEntry{Type: "ecosystem", Score: label})
	return b
}

// WithFixes appends an affected range for the given package with fix events.
func (b *DetailBuilder) WithFixes(
	eco domain.Ecosystem, pkg string, fixed ...string,
) *DetailBuilder {
	ar := domain.AffectedRange{Ecosystem: eco, Package: pkg}
	for _, f := range fixed {
		ar.Events = append(ar.Events, domain.FixEvent{Fixed: f})
	}
	b.affected = append(b.affected, ar)
	return b
}

// Build creates the detail (satisfies testkit.Builder interface).
func (b *DetailBuilder) Build() interface{} {
	return b.BuildDetail()
}

// BuildDetail creates the detail with a concrete return type.
func (b *DetailBuilder) BuildDetail() *domain.VulnerabilityDetail {
	return &domain.VulnerabilityDetail{
		ID:              b.id,
		Summary:         b.summary,
		SeverityEntries: b.severity,
		Affected:        b.affected,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DetailBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.id = "GHSA-test"
	b.summary = "test advisory"
	b.severity = nil
	b.affected = nil
	return b
}

// Clone creates a deep copy of the DetailBuilder.
func (b *DetailBuilder) Clone() testkit.Builder {
	clone := &DetailBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		id:          b.id,
		summary:     b.summary,
	}
	clone.severity = append(clone.severity, b.severity...)
	clone.affected = append(clone.affected, b.affected...)
	return clone
}
