package dashboard

import (
	"sort"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/sentiment"
	"sentiment-dashboard/internal/state"
	"sentiment-dashboard/internal/web"
)

const (
	// TopSources caps the source histogram.
	TopSources = 10
	// UnknownSource labels rows without a source.
	UnknownSource = "Неизвестно"
)

// Slice is one sentiment class in the distribution.
type Slice struct {
	Label         sentiment.Label `json:"label"`
	Name          string          `json:"name"`
	Color         string          `json:"color"`
	Value         int             `json:"value"`
	Percent       float64         `json:"percent"`
	PercentLabel  string          `json:"percentLabel"`
	PercentDetail string          `json:"percentDetail"`
}

// SourceCount is one bar of the source histogram.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Summary is the dashboard page model.
type Summary struct {
	HasResults        bool          `json:"hasResults"`
	Total             int           `json:"total"`
	Positive          int           `json:"positive"`
	Negative          int           `json:"negative"`
	Slices            []Slice       `json:"slices"`
	Sources           []SourceCount `json:"sources"`
	AverageConfidence float64       `json:"averageConfidence"`
}

// SentimentSlices splits stats into the three classes. Percentages are
// value/total*100 and 0 when total is 0.
func SentimentSlices(stats backend.Stats) []Slice {
	out := make([]Slice, 0, len(sentiment.Labels))
	for _, label := range sentiment.Labels {
		class := label.Class()
		value := stats.Count(label)
		s := Slice{
			Label:         label,
			Name:          class.ChartName,
			Color:         class.Color,
			Value:         value,
			PercentLabel:  "0%",
			PercentDetail: "0%",
		}
		if stats.Total > 0 {
			s.Percent = float64(value) * 100 / float64(stats.Total)
			s.PercentLabel = web.Percent(s.Percent)
			s.PercentDetail = web.Percent1(s.Percent)
		}
		out = append(out, s)
	}
	return out
}

// SourceHistogram counts rows per source, empty sources as UnknownSource,
// sorted by count descending with ties in first-seen order, truncated to limit.
func SourceHistogram(rows []backend.AnalysisResult, limit int) []SourceCount {
	index := make(map[string]int)
	out := []SourceCount{}
	for _, row := range rows {
		src := row.Source
		if src == "" {
			src = UnknownSource
		}
		if i, ok := index[src]; ok {
			out[i].Count++
			continue
		}
		index[src] = len(out)
		out = append(out, SourceCount{Source: src, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AverageConfidence is the mean confidence over rows, 0 for none.
func AverageConfidence(rows []backend.AnalysisResult) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range rows {
		sum += row.Confidence
	}
	return sum / float64(len(rows))
}

// Summarize builds the dashboard model from the store snapshot.
func Summarize(snap state.AppState) Summary {
	var stats backend.Stats
	if snap.Stats != nil {
		stats = *snap.Stats
	}
	return Summary{
		HasResults:        snap.HasResults(),
		Total:             stats.Total,
		Positive:          stats.Positive,
		Negative:          stats.Negative,
		Slices:            SentimentSlices(stats),
		Sources:           SourceHistogram(snap.Results, TopSources),
		AverageConfidence: AverageConfidence(snap.Results),
	}
}
