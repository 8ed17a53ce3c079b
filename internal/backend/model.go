package backend

import "sentiment-dashboard/internal/sentiment"

// StatusProcessing is the only non-terminal task status.
const StatusProcessing = "processing"

// Task identifies an asynchronous analysis on the inference service.
type Task struct {
	ID      string `json:"task_id"`
	Message string `json:"message,omitempty"`
}

// AnalysisResult is one classified input row.
type AnalysisResult struct {
	Text       string          `json:"text"`
	Source     string          `json:"src"`
	Label      sentiment.Label `json:"label"`
	Confidence float64         `json:"confidence"`
}

// Stats holds per-label counts for a completed task.
type Stats struct {
	Total    int `json:"total"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

// Count returns the number of rows with the given label.
func (s Stats) Count(label sentiment.Label) int {
	switch label {
	case sentiment.Negative:
		return s.Negative
	case sentiment.Neutral:
		return s.Neutral
	case sentiment.Positive:
		return s.Positive
	default:
		return 0
	}
}

// TaskStatus is the poll response. Progress and Total are set while processing;
// Data and Stats are set once the task reaches a terminal status.
type TaskStatus struct {
	Status   string           `json:"status"`
	Progress int              `json:"progress,omitempty"`
	Total    int              `json:"total,omitempty"`
	Data     []AnalysisResult `json:"data,omitempty"`
	Stats    *Stats           `json:"stats,omitempty"`
}

// Processing reports whether the task is still running.
func (s TaskStatus) Processing() bool {
	return s.Status == StatusProcessing
}

// ValidationMetrics is the classifier evaluation for a labeled CSV.
// Confusion matrix rows are true labels and columns are predicted labels.
// Map keys arrive as JSON strings ("0", "1", "2") and decode into ints.
type ValidationMetrics struct {
	MacroF1         float64         `json:"macro_f1"`
	Precision       map[int]float64 `json:"precision"`
	Recall          map[int]float64 `json:"recall"`
	ConfusionMatrix [][]int         `json:"confusion_matrix"`
}
