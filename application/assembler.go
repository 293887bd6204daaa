package application

import (
	"sort"
	"strconv"

	"github.com/depsentry/depsentry/domain"
)

// severityOf resolves a detail's severity. Numeric scores win (CVSS-style
// thresholds), then a recognized ecosystem severity label; anything else
// defaults to MEDIUM so a finding never ships without a level.
func severityOf(detail *domain.VulnerabilityDetail) domain.Severity {
	best := -1.0
	for _, entry := range detail.SeverityEntries {
		if score, err := strconv.ParseFloat(entry.Score, 64); err == nil && score > best {
			best = score
		}
	}
	if best >= 0 {
		return domain.SeverityFromScore(best)
	}

	for _, entry := range detail.SeverityEntries {
		if sev, known := domain.ParseSeverity(entry.Score); known {
			return sev
		}
	}
	return domain.SeverityMedium
}

// fixedVersionOf resolves the nearest safe upgrade for dep: the smallest
// fixed version strictly greater than the pinned one among the detail's fix
// events for this package. Fix events the ecosystem's comparator cannot
// order are dropped, so a reported fixedVersion always parses. When no fix
// exceeds the pinned version the smallest known fix is returned as a
// fallback, which can look like a downgrade; the audit note carries a
// caveat when that happens.
func fixedVersionOf(dep domain.Dependency, detail *domain.VulnerabilityDetail) string {
	var fixes []string
	for _, ar := range detail.Affected {
		if ar.Package != dep.Name {
			continue
		}
		if ar.Ecosystem != "" && ar.Ecosystem != dep.Ecosystem {
			continue
		}
		for _, ev := range ar.Events {
			if !domain.ValidVersion(dep.Ecosystem, ev.Fixed) {
				continue
			}
			fixes = append(fixes, ev.Fixed)
		}
	}
	if len(fixes) == 0 {
		return ""
	}

	nearest := ""
	for _, fix := range fixes {
		if !domain.CompareVersions(dep.Ecosystem, fix, dep.Version) {
			continue
		}
		if nearest == "" || domain.CompareVersions(dep.Ecosystem, nearest, fix) {
			nearest = fix
		}
	}
	if nearest != "" {
		return nearest
	}

	smallest := fixes[0]
	for _, fix := range fixes[1:] {
		if domain.CompareVersions(dep.Ecosystem, smallest, fix) {
			smallest = fix
		}
	}
	return smallest
}

// assembleFindings produces the final sorted finding list. Dependencies whose
// vulnerability details were not obtained in phase 2 (failed fetch or capped
// out) are silently omitted.
func assembleFindings(
	deps []domain.Dependency,
	idsByDep [][]string,
	details map[string]*domain.VulnerabilityDetail,
) []domain.Finding {
	findings := make([]domain.Finding, 0)

	for i, dep := range deps {
		if i >= len(idsByDep) {
			break
		}
		for _, vulnID := range idsByDep[i] {
			detail, ok := details[vulnID]
			if !ok {
				continue
			}
			findings = append(findings, domain.Finding{
				ID:           dep.Key() + ":" + vulnID,
				Ecosystem:    dep.Ecosystem,
				Name:         dep.Name,
				Version:      dep.Version,
				VulnID:       vulnID,
				Severity:     severityOf(detail),
				Summary:      detail.Summary,
				Details:      detail.Details,
				FixedVersion: fixedVersionOf(dep, detail),
				References:   detail.References,
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		ri, rj := findings[i].Severity.Rank(), findings[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		ki := findings[i].Name + "@" + findings[i].Version
		kj := findings[j].Name + "@" + findings[j].Version
		if ki != kj {
			return ki < kj
		}
		return findings[i].VulnID < findings[j].VulnID
	})
	return findings
}
