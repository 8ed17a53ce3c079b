package validation

import (
	"strconv"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/sentiment"
)

// Grade buckets a score for display.
type Grade string

const (
	GradeGood Grade = "good"
	GradeFair Grade = "fair"
	GradePoor Grade = "poor"
)

const (
	goodThreshold = 0.75
	fairThreshold = 0.65
)

// GradeOf maps a 0-1 score to its grade.
func GradeOf(score float64) Grade {
	switch {
	case score >= goodThreshold:
		return GradeGood
	case score >= fairThreshold:
		return GradeFair
	default:
		return GradePoor
	}
}

// F1 is the harmonic mean of precision and recall, 0 when either is 0.
func F1(precision, recall float64) float64 {
	if precision == 0 || recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// ClassMetrics is one row of the per-class table.
type ClassMetrics struct {
	Label     sentiment.Label `json:"label"`
	Name      string          `json:"name"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Grade     Grade           `json:"grade"`
}

// Cell is one confusion-matrix entry. Rows are true labels, columns predictions.
type Cell struct {
	Value     int     `json:"value"`
	Intensity float64 `json:"intensity"`
	Opacity   float64 `json:"opacity"`
	Diagonal  bool    `json:"diagonal"`
}

// MatrixRow is a labelled confusion-matrix row.
type MatrixRow struct {
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

// Report is the validation view model. The per-class F1 is recomputed from
// precision and recall rather than taken from the backend.
type Report struct {
	MacroF1 float64        `json:"macroF1"`
	Score   string         `json:"score"`
	Grade   Grade          `json:"grade"`
	Classes []ClassMetrics `json:"classes"`
	Matrix  []MatrixRow    `json:"matrix,omitempty"`
}

// BuildReport derives the display model from backend metrics.
func BuildReport(m backend.ValidationMetrics) Report {
	r := Report{
		MacroF1: m.MacroF1,
		Score:   formatRatio(m.MacroF1),
		Grade:   GradeOf(m.MacroF1),
		Classes: make([]ClassMetrics, 0, len(sentiment.Labels)),
	}
	for _, label := range sentiment.Labels {
		p := m.Precision[int(label)]
		rc := m.Recall[int(label)]
		f1 := F1(p, rc)
		r.Classes = append(r.Classes, ClassMetrics{
			Label:     label,
			Name:      label.Class().Name,
			Precision: p,
			Recall:    rc,
			F1:        f1,
			Grade:     GradeOf(f1),
		})
	}
	for i, row := range m.ConfusionMatrix {
		r.Matrix = append(r.Matrix, MatrixRow{Name: rowName(i), Cells: cells(i, row)})
	}
	return r
}

func cells(i int, row []int) []Cell {
	sum := 0
	for _, v := range row {
		sum += v
	}
	out := make([]Cell, 0, len(row))
	for j, v := range row {
		intensity := 0.0
		if sum > 0 {
			intensity = float64(v) / float64(sum)
		}
		out = append(out, Cell{
			Value:     v,
			Intensity: intensity,
			Opacity:   0.5 + 0.5*intensity,
			Diagonal:  i == j,
		})
	}
	return out
}

func rowName(i int) string {
	label := sentiment.Label(i)
	if !label.Valid() {
		return strconv.Itoa(i)
	}
	return label.Class().ShortName
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
