package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/depsentry/depsentry/domain"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	ecosystem domain.Ecosystem
	name      string
	version   string
	manifest  string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		ecosystem:   domain.EcosystemNpm,
		name:        "test-package",
		version:     "1.0.0",
		manifest:    "package-lock.json",
	}
}

// WithEcosystem sets the package ecosystem.
func (b *DependencyBuilder) WithEcosystem(eco domain.Ecosystem) *DependencyBuilder {
	b.ecosystem = eco
	return b
}

// WithName sets the package name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the pinned version.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithManifest sets the source manifest path.
func (b *DependencyBuilder) WithManifest(path string) *DependencyBuilder {
	b.manifest = path
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() domain.Dependency {
	return domain.Dependency{
		Ecosystem: b.ecosystem,
		Name:      b.name,
		Version:   b.version,
		Manifest:  b.manifest,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.ecosystem = domain.EcosystemNpm
	b.name = "test-package"
	b.version = "1.0.0"
	b.manifest = "package-lock.json"
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		ecosystem:   b.ecosystem,
		name:        b.name,
		version:     b.version,
		manifest:    b.manifest,
	}
}
