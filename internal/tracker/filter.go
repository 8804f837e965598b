package tracker

import (
	"strings"

	"github.com/iliyamo/study-ui/internal/model"
)

// All disables a facet filter.
const All = "ALL"

// Filter selects rows by level, review tag and a free-text query.
type Filter struct {
	Level  string
	Review string
	Query  string
}

// Match reports whether r passes every active criterion. The query is
// matched case-insensitively against title, revisit, topic and level.
func (f Filter) Match(r model.StudyRow) bool {
	if f.Level != "" && f.Level != All && r.Level != f.Level {
		return false
	}
	if f.Review != "" && f.Review != All && !contains(r.Reviews, f.Review) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{r.Title, r.Revisit, r.Topic, r.Level} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching rows in their original order.
func (f Filter) Apply(rows []model.StudyRow) []model.StudyRow {
	out := make([]model.StudyRow, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Facets lists the selectable filter values, each headed by ALL, in order
// of first appearance.
type Facets struct {
	Levels  []string `json:"levels"`
	Reviews []string `json:"reviews"`
}

// FacetsOf collects the levels and review tags present in rows.
func FacetsOf(rows []model.StudyRow) Facets {
	f := Facets{Levels: []string{All}, Reviews: []string{All}}
	seenL := map[string]bool{}
	seenR := map[string]bool{}
	for _, r := range rows {
		if r.Level != "" && !seenL[r.Level] {
			seenL[r.Level] = true
			f.Levels = append(f.Levels, r.Level)
		}
		for _, t := range r.Reviews {
			if !seenR[t] {
				seenR[t] = true
				f.Reviews = append(f.Reviews, t)
			}
		}
	}
	return f
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
