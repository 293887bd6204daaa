package osv

import "github.com/depsentry/depsentry/domain"

// Wire types for the OSV-style batch-then-detail API. Field extraction is
// defensive throughout: records in the wild omit most optional fields.

type batchRequest struct {
	Queries []batchQuery `json:"queries"`
}

type batchQuery struct {
	Package packageRef `json:"package"`
	Version string     `json:"version"`
}

type packageRef struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type batchResponse struct {
	Results []batchResult `json:"results"`
}

type batchResult struct {
	Vulns []vulnRef `json:"vulns"`
}

type vulnRef struct {
	ID string `json:"id"`
}

type vulnerability struct {
	ID               string          `json:"id"`
	Summary          string          `json:"summary"`
	Details          string          `json:"details"`
	Severity         []severityEntry `json:"severity"`
	Affected         []affected      `json:"affected"`
	References       []reference     `json:"references"`
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

type severityEntry struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

type affected struct {
	Package packageRef   `json:"package"`
	Ranges  []affectRange `json:"ranges"`
}

type affectRange struct {
	Type   string       `json:"type"`
	Events []rangeEvent `json:"events"`
}

type rangeEvent struct {
	Introduced string `json:"introduced,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
}

type reference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// toDetail converts a wire record into the domain detail. The ecosystem
// severity label, when present, is appended as one more severity entry so
// the assembler can fall back to it after the numeric entries.
func (v *vulnerability) toDetail() *domain.VulnerabilityDetail {
	detail := &domain.VulnerabilityDetail{
		ID:      v.ID,
		Summary: v.Summary,
		Details: v.Details,
	}

	for _, s := range v.Severity {
		detail.SeverityEntries = append(detail.SeverityEntries, domain.SeverityEntry{
			Type:  s.Type,
			Score: s.Score,
		})
	}
	if v.DatabaseSpecific.Severity != "" {
		detail.SeverityEntries = append(detail.SeverityEntries, domain.SeverityEntry{
			Type:  "ecosystem",
			Score: v.DatabaseSpecific.Severity,
		})
	}

	for _, a := range v.Affected {
		ar := domain.AffectedRange{
			Ecosystem: domain.Ecosystem(a.Package.Ecosystem),
			Package:   a.Package.Name,
		}
		for _, r := range a.Ranges {
			for _, e := range r.Events {
				if e.Fixed != "" {
					ar.Events = append(ar.Events, domain.FixEvent{Fixed: e.Fixed})
				}
			}
		}
		detail.Affected = append(detail.Affected, ar)
	}

	for _, r := range v.References {
		if r.URL != "" {
			detail.References = append(detail.References, r.URL)
		}
	}
	return detail
}
