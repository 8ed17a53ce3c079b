package analysis

import (
	"time"

	"sentiment-dashboard/internal/state"
)

// Phase is the orchestrator state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhasePolling   Phase = "polling"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// ResultsPath is where the UI navigates once results are ready.
const ResultsPath = "/results"

// Options bounds the polling loop.
type Options struct {
	PollInterval           time.Duration
	RetryDelay             time.Duration
	MaxConsecutiveFailures int
	MaxDuration            time.Duration
}

// DefaultOptions polls every second and retries failures after two seconds,
// giving up after 30 consecutive failures or 30 minutes.
func DefaultOptions() Options {
	return Options{
		PollInterval:           time.Second,
		RetryDelay:             2 * time.Second,
		MaxConsecutiveFailures: 30,
		MaxDuration:            30 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.MaxConsecutiveFailures <= 0 {
		o.MaxConsecutiveFailures = d.MaxConsecutiveFailures
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = d.MaxDuration
	}
	return o
}

// Status is what the upload view renders.
type Status struct {
	Phase    Phase          `json:"phase"`
	TaskID   string         `json:"taskId,omitempty"`
	Loading  bool           `json:"isLoading"`
	Progress state.Progress `json:"progress"`
	Percent  float64        `json:"percent"`
	Error    string         `json:"error,omitempty"`
	Redirect string         `json:"redirect,omitempty"`
}
