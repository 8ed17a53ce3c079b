package analysis

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/notify"
	"sentiment-dashboard/internal/shared/metrics"
	"sentiment-dashboard/internal/shared/telemetry"
	"sentiment-dashboard/internal/shared/util"
	"sentiment-dashboard/internal/state"
)

// Backend is the subset of the inference API the orchestrator drives.
type Backend interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (backend.Task, error)
	GetStatus(ctx context.Context, taskID string) (backend.TaskStatus, error)
}

// Notifier receives user-visible messages.
type Notifier interface {
	Info(title, description string) notify.Notification
	Error(title, description string) notify.Notification
}

// Orchestrator runs the upload and status polling flow. At most one polling
// chain is active; an accepted upload cancels the previous chain, and every
// chain writes to the store only while its generation is current.
type Orchestrator struct {
	backend Backend
	store   *state.Store
	notes   Notifier
	opts    Options
	now     func() time.Time

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu       sync.Mutex
	phase    Phase
	chainGen uint64
	lastErr  string
	redirect string
	cancel   context.CancelFunc
	done     chan struct{}
}

// New constructs an orchestrator. Shutdown cancels every chain it started.
func New(b Backend, store *state.Store, notes Notifier, opts Options) *Orchestrator {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	return &Orchestrator{
		backend:    b,
		store:      store,
		notes:      notes,
		opts:       opts.withDefaults(),
		now:        time.Now,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		phase:      PhaseIdle,
	}
}

// Start uploads the file and begins polling for its results. It returns once
// the upload has been accepted; polling continues in the background.
func (o *Orchestrator) Start(ctx context.Context, fileName string, r io.Reader) (Status, error) {
	if !util.HasExtension(fileName, ".csv") {
		o.notes.Error(msgInvalidFileTitle, msgInvalidFileDesc)
		return o.Status(), ErrInvalidFileType
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		o.notes.Error(msgInvalidFileTitle, msgInvalidFileDesc)
		return o.Status(), fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	// A running chain keeps polling until the new task is accepted.
	running := o.chainRunning()
	idleGen := o.store.Generation()
	if !running {
		o.mu.Lock()
		o.phase = PhaseUploading
		o.lastErr = ""
		o.redirect = ""
		o.mu.Unlock()
		o.store.UpdateIf(idleGen, func(st *state.AppState) {
			st.IsLoading = true
			st.Progress = state.Progress{}
		})
	}

	started := o.now()
	task, err := o.backend.Upload(ctx, name, r)
	if err != nil {
		detail := backend.Detail(err)
		if detail == "" {
			detail = msgUploadFailedDesc
		}
		telemetry.Warn("analysis.upload_failed", map[string]any{
			"file":          name,
			"error":         err.Error(),
			"chain_running": running,
		})
		metrics.IncAnalysisFailed()
		if !running {
			o.store.UpdateIf(idleGen, func(st *state.AppState) { st.IsLoading = false })
			o.mu.Lock()
			o.phase = PhaseFailed
			o.lastErr = detail
			o.redirect = ""
			o.mu.Unlock()
		}
		o.notes.Error(msgUploadFailedTitle, detail)
		status := o.Status()
		status.Error = detail
		return status, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	o.stopChain()
	gen := o.store.BeginGeneration()
	o.mu.Lock()
	o.chainGen = gen
	o.phase = PhaseUploading
	o.lastErr = ""
	o.redirect = ""
	o.mu.Unlock()

	if !o.store.UpdateIf(gen, func(st *state.AppState) {
		st.TaskID = task.ID
		st.IsLoading = true
		st.Progress = state.Progress{}
	}) {
		return o.Status(), nil
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", map[string]any{
		"task_id":    task.ID,
		"file":       name,
		"generation": gen,
	})
	o.notes.Info(msgStartedTitle, msgStartedDesc)
	o.launch(gen, task.ID, started)
	return o.Status(), nil
}

// Resume restarts polling for a persisted task that never reached a terminal
// status, for example after a restart mid-analysis.
func (o *Orchestrator) Resume() error {
	snap := o.store.Snapshot()
	if snap.TaskID == "" {
		return ErrNoTask
	}
	if snap.HasResults() {
		return nil
	}

	o.stopChain()
	gen := o.store.BeginGeneration()
	o.mu.Lock()
	o.chainGen = gen
	o.lastErr = ""
	o.redirect = ""
	o.mu.Unlock()

	o.store.UpdateIf(gen, func(st *state.AppState) { st.IsLoading = true })
	telemetry.Info("analysis.resumed", map[string]any{"task_id": snap.TaskID, "generation": gen})
	o.launch(gen, snap.TaskID, o.now())
	return nil
}

// Status reports the current phase together with the store's progress.
func (o *Orchestrator) Status() Status {
	snap := o.store.Snapshot()
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		Phase:    o.phase,
		TaskID:   snap.TaskID,
		Loading:  snap.IsLoading,
		Progress: snap.Progress,
		Percent:  snap.Progress.Percent(),
		Error:    o.lastErr,
		Redirect: o.redirect,
	}
}

// Reset cancels any running chain and clears the store.
func (o *Orchestrator) Reset() {
	o.stopChain()
	o.store.Reset()
	o.mu.Lock()
	o.phase = PhaseIdle
	o.chainGen = 0
	o.lastErr = ""
	o.redirect = ""
	o.mu.Unlock()
	telemetry.Info("analysis.reset", nil)
}

// Wait blocks until the current chain exits or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every chain and waits for the current one to exit.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.rootCancel()
	return o.Wait(ctx)
}

func (o *Orchestrator) launch(gen uint64, taskID string, started time.Time) {
	chainCtx, cancel := context.WithCancel(o.rootCtx)
	done := make(chan struct{})

	o.mu.Lock()
	if o.chainGen != gen {
		o.mu.Unlock()
		cancel()
		return
	}
	o.phase = PhasePolling
	o.cancel = cancel
	o.done = done
	o.mu.Unlock()

	go o.poll(chainCtx, gen, taskID, started, done)
}

// chainRunning reports whether a polling goroutine is still active.
func (o *Orchestrator) chainRunning() bool {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (o *Orchestrator) stopChain() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.cancel, o.done = nil, nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) setPhase(gen uint64, phase Phase, errMsg, redirect string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.chainGen != gen {
		return false
	}
	o.phase = phase
	o.lastErr = errMsg
	o.redirect = redirect
	return true
}

func (o *Orchestrator) poll(ctx context.Context, gen uint64, taskID string, started time.Time, done chan struct{}) {
	defer close(done)
	fields := map[string]any{"task_id": taskID, "generation": gen}
	failures := 0

	for {
		status, err := o.backend.GetStatus(ctx, taskID)
		if ctx.Err() != nil {
			telemetry.Info("analysis.poll_cancelled", fields)
			return
		}
		elapsed := o.now().Sub(started)

		if err != nil {
			failures++
			metrics.IncPollFailure()
			telemetry.Warn("analysis.poll_failed", map[string]any{
				"task_id":  taskID,
				"attempt":  failures,
				"error":    err.Error(),
				"duration": elapsed.String(),
			})
			if failures >= o.opts.MaxConsecutiveFailures {
				o.fail(gen, taskID, msgPollFailedDesc)
				return
			}
			if elapsed >= o.opts.MaxDuration {
				o.fail(gen, taskID, msgPollTimeoutDesc)
				return
			}
			if !sleep(ctx, o.opts.RetryDelay) {
				return
			}
			continue
		}
		failures = 0

		if status.Processing() {
			o.store.UpdateIf(gen, func(st *state.AppState) {
				st.Progress = state.Progress{Current: status.Progress, Total: status.Total}
			})
			if elapsed >= o.opts.MaxDuration {
				o.fail(gen, taskID, msgPollTimeoutDesc)
				return
			}
			if !sleep(ctx, o.opts.PollInterval) {
				return
			}
			continue
		}

		o.complete(gen, taskID, status, elapsed)
		return
	}
}

func (o *Orchestrator) complete(gen uint64, taskID string, status backend.TaskStatus, elapsed time.Duration) {
	var stats *backend.Stats
	if status.Stats != nil {
		c := *status.Stats
		stats = &c
	}
	applied := o.store.UpdateIf(gen, func(st *state.AppState) {
		st.Results = status.Data
		st.Stats = stats
		st.IsLoading = false
	})
	if !applied {
		telemetry.Info("analysis.stale_result_discarded", map[string]any{"task_id": taskID, "generation": gen})
		return
	}
	o.setPhase(gen, PhaseDone, "", ResultsPath)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("analysis.completed", map[string]any{
		"task_id":     taskID,
		"status":      status.Status,
		"rows":        len(status.Data),
		"duration_ms": elapsed.Milliseconds(),
	})
	o.notes.Info(msgCompletedTitle, msgCompletedDesc)
}

func (o *Orchestrator) fail(gen uint64, taskID, reason string) {
	if !o.store.UpdateIf(gen, func(st *state.AppState) { st.IsLoading = false }) {
		return
	}
	o.setPhase(gen, PhaseFailed, reason, "")
	metrics.IncAnalysisFailed()
	telemetry.Error("analysis.poll_abandoned", map[string]any{"task_id": taskID, "reason": reason})
	o.notes.Error(msgPollFailedTitle, reason)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
