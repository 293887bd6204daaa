package application //nolint:testpackage // tests unexported pipeline internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/test/domain/entitybuilders"
)

func TestSeverityOf(t *testing.T) {
	t.Parallel()

	t.Run("should prefer numeric scores over labels", func(t *testing.T) {
		t.Parallel()

		// given
		detail := entitybuilders.NewDetailBuilder().
			WithScore("9.8").WithEcosystemSeverity("LOW").BuildDetail()

		// when
		sev := severityOf(detail)

		// then
		assert.Equal(t, domain.SeverityCritical, sev)
	})

	t.Run("should map score thresholds to levels", func(t *testing.T) {
		t.Parallel()

		cases := map[string]domain.Severity{
			"9.0": domain.SeverityCritical,
			"7.5": domain.SeverityHigh,
			"4.0": domain.SeverityMedium,
			"2.1": domain.SeverityLow,
		}
		for score, want := range cases {
			// given
			detail := entitybuilders.NewDetailBuilder().WithScore(score).BuildDetail()

			// when / then
			assert.Equal(t, want, severityOf(detail), "score %s", score)
		}
	})

	t.Run("should fall back to a recognized label", func(t *testing.T) {
		t.Parallel()

		// given CVSS vector strings do not parse as floats
		detail := entitybuilders.NewDetailBuilder().
			WithScore("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H").
			WithEcosystemSeverity("moderate").BuildDetail()

		// when
		sev := severityOf(detail)

		// then
		assert.Equal(t, domain.SeverityMedium, sev)
	})

	t.Run("should default to MEDIUM when nothing resolves", func(t *testing.T) {
		t.Parallel()

		// given
		detail := entitybuilders.NewDetailBuilder().BuildDetail()

		// when
		sev := severityOf(detail)

		// then
		assert.Equal(t, domain.SeverityMedium, sev)
	})
}

func TestFixedVersionOf(t *testing.T) {
	t.Parallel()

	t.Run("should choose the nearest fix above the pinned version", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("4.17.15").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemNpm, "lodash", "4.17.21", "4.17.19", "5.0.0").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Equal(t, "4.17.19", fixed)
	})

	t.Run("should fall back to the smallest known fix", func(t *testing.T) {
		t.Parallel()

		// given no fix exceeds the pinned version
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("9.9.9").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemNpm, "lodash", "4.17.21", "4.17.19").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Equal(t, "4.17.19", fixed)
	})

	t.Run("should ignore ranges for other packages", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("4.17.15").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemNpm, "underscore", "1.13.0").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Empty(t, fixed)
	})

	t.Run("should drop fix events the comparator cannot order", func(t *testing.T) {
		t.Parallel()

		// given the only orderable fix is below the pinned version
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("4.17.15").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemNpm, "lodash", "", "see-advisory", "4.17.10").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Equal(t, "4.17.10", fixed)
	})

	t.Run("should return empty when no fix event is orderable", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("4.17.15").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemNpm, "lodash", "", "unaffected").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Empty(t, fixed)
	})

	t.Run("should compare PyPI versions numerically", func(t *testing.T) {
		t.Parallel()

		// given 1.10 > 1.9 numerically though not lexically
		dep := entitybuilders.NewDependencyBuilder().
			WithEcosystem(domain.EcosystemPyPI).
			WithName("django").WithVersion("1.9").BuildDependency()
		detail := entitybuilders.NewDetailBuilder().
			WithFixes(domain.EcosystemPyPI, "django", "1.10", "2.0").
			BuildDetail()

		// when
		fixed := fixedVersionOf(dep, detail)

		// then
		assert.Equal(t, "1.10", fixed)
	})
}

func TestAssembleFindings(t *testing.T) {
	t.Parallel()

	t.Run("should sort by severity rank then name and version", func(t *testing.T) {
		t.Parallel()

		// given
		deps := []domain.Dependency{
			entitybuilders.NewDependencyBuilder().
				WithName("zlib-wrap").WithVersion("1.0.0").BuildDependency(),
			entitybuilders.NewDependencyBuilder().
				WithName("acorn").WithVersion("6.0.0").BuildDependency(),
		}
		idsByDep := [][]string{{"GHSA-low"}, {"GHSA-crit"}}
		details := map[string]*domain.VulnerabilityDetail{
			"GHSA-low":  entitybuilders.NewDetailBuilder().WithID("GHSA-low").WithScore("2.0").BuildDetail(),
			"GHSA-crit": entitybuilders.NewDetailBuilder().WithID("GHSA-crit").WithScore("9.9").BuildDetail(),
		}

		// when
		findings := assembleFindings(deps, idsByDep, details)

		// then
		require.Len(t, findings, 2)
		assert.Equal(t, domain.SeverityCritical, findings[0].Severity)
		assert.Equal(t, "acorn", findings[0].Name)
		assert.Equal(t, domain.SeverityLow, findings[1].Severity)
		for i := 1; i < len(findings); i++ {
			assert.GreaterOrEqual(t,
				findings[i-1].Severity.Rank(), findings[i].Severity.Rank(),
			)
		}
	})

	t.Run("should omit findings whose details were not fetched", func(t *testing.T) {
		t.Parallel()

		// given
		deps := []domain.Dependency{
			entitybuilders.NewDependencyBuilder().WithName("lodash").BuildDependency(),
		}
		idsByDep := [][]string{{"GHSA-present", "GHSA-missing"}}
		details := map[string]*domain.VulnerabilityDetail{
			"GHSA-present": entitybuilders.NewDetailBuilder().WithID("GHSA-present").BuildDetail(),
		}

		// when
		findings := assembleFindings(deps, idsByDep, details)

		// then
		require.Len(t, findings, 1)
		assert.Equal(t, "GHSA-present", findings[0].VulnID)
	})

	t.Run("should only report fixed versions its comparator can parse", func(t *testing.T) {
		t.Parallel()

		// given fix events mixing orderable and junk values across ecosystems
		deps := []domain.Dependency{
			entitybuilders.NewDependencyBuilder().
				WithName("lodash").WithVersion("4.17.15").BuildDependency(),
			entitybuilders.NewDependencyBuilder().
				WithEcosystem(domain.EcosystemPyPI).
				WithName("flask").WithVersion("1.0").BuildDependency(),
		}
		idsByDep := [][]string{{"GHSA-a"}, {"PYSEC-b"}}
		details := map[string]*domain.VulnerabilityDetail{
			"GHSA-a": entitybuilders.NewDetailBuilder().WithID("GHSA-a").
				WithFixes(domain.EcosystemNpm, "lodash", "not-a-version", "4.17.21").
				BuildDetail(),
			"PYSEC-b": entitybuilders.NewDetailBuilder().WithID("PYSEC-b").
				WithFixes(domain.EcosystemPyPI, "flask", "", "1.1").
				BuildDetail(),
		}

		// when
		findings := assembleFindings(deps, idsByDep, details)

		// then
		require.Len(t, findings, 2)
		for _, f := range findings {
			if f.FixedVersion == "" {
				continue
			}
			assert.True(t, domain.ValidVersion(f.Ecosystem, f.FixedVersion),
				"finding %s carries unparseable fixedVersion %q", f.ID, f.FixedVersion)
		}
	})

	t.Run("should build globally unique finding ids", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entitybuilders.NewDependencyBuilder().
			WithName("lodash").WithVersion("4.17.20").BuildDependency()
		details := map[string]*domain.VulnerabilityDetail{
			"GHSA-x": entitybuilders.NewDetailBuilder().WithID("GHSA-x").BuildDetail(),
		}

		// when
		findings := assembleFindings(
			[]domain.Dependency{dep}, [][]string{{"GHSA-x"}}, details,
		)

		// then
		require.Len(t, findings, 1)
		assert.Equal(t, "npm:lodash@4.17.20:GHSA-x", findings[0].ID)
	})
}
