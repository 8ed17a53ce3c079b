package state

import "sentiment-dashboard/internal/backend"

// StoreName keys the durable record in every persister.
const StoreName = "sentiment-store"

// Progress counts processed rows of the running task.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Percent returns Current/Total*100, or 0 when Total is 0.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) * 100 / float64(p.Total)
}

// AppState is the dashboard's shared state. Results is replaced whole on
// every write; callers must not mutate the slice returned by a snapshot.
type AppState struct {
	TaskID    string                   `json:"taskId"`
	Results   []backend.AnalysisResult `json:"results"`
	Stats     *backend.Stats           `json:"stats"`
	IsLoading bool                     `json:"isLoading"`
	Progress  Progress                 `json:"progress"`
}

// HasResults reports whether a completed analysis is available.
func (s AppState) HasResults() bool {
	return len(s.Results) > 0
}

// Record is the persisted subset of AppState.
type Record struct {
	TaskID  string                   `json:"taskId"`
	Results []backend.AnalysisResult `json:"results"`
	Stats   *backend.Stats           `json:"stats"`
}

func recordOf(s AppState) Record {
	return Record{TaskID: s.TaskID, Results: s.Results, Stats: s.Stats}
}

func persistedChanged(before, after AppState) bool {
	if before.TaskID != after.TaskID || before.Stats != after.Stats {
		return true
	}
	if len(before.Results) != len(after.Results) {
		return true
	}
	return len(before.Results) > 0 && &before.Results[0] != &after.Results[0]
}
