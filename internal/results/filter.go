package results

import (
	"strings"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/sentiment"
)

// PageSize is the number of rows per results page.
const PageSize = 10

// Query narrows the result rows. Zero values disable a criterion.
type Query struct {
	Search string           `json:"search,omitempty"`
	Label  *sentiment.Label `json:"label,omitempty"`
	Source string           `json:"source,omitempty"`
	Page   int              `json:"page"`
}

// Matches reports whether row satisfies every set criterion.
func (q Query) Matches(row backend.AnalysisResult) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(row.Text), strings.ToLower(q.Search)) {
		return false
	}
	if q.Label != nil && row.Label != *q.Label {
		return false
	}
	if q.Source != "" && row.Source != q.Source {
		return false
	}
	return true
}

// Row is a result with its position in the full result set.
type Row struct {
	Index int `json:"index"`
	backend.AnalysisResult
}

// Filter returns the rows matching q, in input order.
func Filter(rows []backend.AnalysisResult, q Query) []Row {
	out := make([]Row, 0, len(rows))
	for i, row := range rows {
		if q.Matches(row) {
			out = append(out, Row{Index: i, AnalysisResult: row})
		}
	}
	return out
}

// Paginate returns one page of rows. page is clamped to [1, totalPages];
// an empty input yields page 1 of 0.
func Paginate(rows []Row, page, size int) (pageRows []Row, current, totalPages int) {
	if size <= 0 {
		size = PageSize
	}
	totalPages = (len(rows) + size - 1) / size
	current = page
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}
	start := (current - 1) * size
	if start >= len(rows) {
		return []Row{}, current, totalPages
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], current, totalPages
}

// Sources returns the distinct non-empty sources in first-seen order.
func Sources(rows []backend.AnalysisResult) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range rows {
		if row.Source == "" {
			continue
		}
		if _, ok := seen[row.Source]; ok {
			continue
		}
		seen[row.Source] = struct{}{}
		out = append(out, row.Source)
	}
	return out
}

// LabelCount is the per-class total shown beside the table.
type LabelCount struct {
	Class   sentiment.Class `json:"-"`
	Label   sentiment.Label `json:"label"`
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Percent float64         `json:"percent"`
}

// LabelCounts derives per-class counts and their share of stats.Total.
func LabelCounts(stats *backend.Stats) []LabelCount {
	var s backend.Stats
	if stats != nil {
		s = *stats
	}
	out := make([]LabelCount, 0, len(sentiment.Labels))
	for _, label := range sentiment.Labels {
		count := s.Count(label)
		pct := 0.0
		if s.Total > 0 {
			pct = float64(count) * 100 / float64(s.Total)
		}
		out = append(out, LabelCount{
			Class:   label.Class(),
			Label:   label,
			Name:    label.Class().Name,
			Count:   count,
			Percent: pct,
		})
	}
	return out
}
