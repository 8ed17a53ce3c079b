package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sentiment-dashboard/internal/backend"
	"sentiment-dashboard/internal/shared/telemetry"
)

const defaultSaveTimeout = 5 * time.Second

// Store owns the AppState. Reads return copies of the struct; writes to the
// persisted fields are saved through the Persister before the setter returns.
type Store struct {
	mu         sync.RWMutex
	state      AppState
	generation uint64
	version    uint64

	persister     Persister
	saveMu        sync.Mutex
	lastAttempted uint64
	saveTimeout   time.Duration
}

// Open rehydrates the persisted subset from p. Volatile fields start empty.
func Open(ctx context.Context, p Persister) (*Store, error) {
	if p == nil {
		p = NewMemoryPersister()
	}
	s := &Store{persister: p, saveTimeout: defaultSaveTimeout}

	rec, err := p.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	default:
		s.state.TaskID = rec.TaskID
		s.state.Results = rec.Results
		s.state.Stats = rec.Stats
	}
	return s, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) SetTaskID(id string) {
	s.Update(func(st *AppState) { st.TaskID = id })
}

func (s *Store) SetResults(results []backend.AnalysisResult) {
	s.Update(func(st *AppState) { st.Results = results })
}

func (s *Store) SetStats(stats *backend.Stats) {
	if stats != nil {
		c := *stats
		stats = &c
	}
	s.Update(func(st *AppState) { st.Stats = stats })
}

func (s *Store) SetLoading(loading bool) {
	s.Update(func(st *AppState) { st.IsLoading = loading })
}

func (s *Store) SetProgress(p Progress) {
	s.Update(func(st *AppState) { st.Progress = p })
}

// Reset clears every field and invalidates the current generation.
func (s *Store) Reset() {
	s.mutate(func(st *AppState) bool {
		*st = AppState{}
		s.generation++
		return true
	})
}

// Update applies fn unconditionally.
func (s *Store) Update(fn func(*AppState)) {
	s.mutate(func(st *AppState) bool {
		fn(st)
		return true
	})
}

// UpdateIf applies fn only while gen is still the current generation and
// reports whether it did.
func (s *Store) UpdateIf(gen uint64, fn func(*AppState)) bool {
	return s.mutate(func(st *AppState) bool {
		if gen != s.generation {
			return false
		}
		fn(st)
		return true
	})
}

// BeginGeneration starts a new writer generation; older generations lose
// write access through UpdateIf.
func (s *Store) BeginGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Generation returns the current writer generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) mutate(fn func(*AppState) bool) bool {
	s.mu.Lock()
	before := s.state
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	persist := persistedChanged(before, s.state)
	var (
		rec     Record
		version uint64
	)
	if persist {
		s.version++
		version = s.version
		rec = recordOf(s.state)
	}
	s.mu.Unlock()

	if persist {
		s.save(version, rec)
	}
	return true
}

func (s *Store) save(version uint64, rec Record) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.lastAttempted {
		return
	}
	s.lastAttempted = version

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, rec); err != nil {
		telemetry.Warn("state.persist_failed", map[string]any{
			"store":   StoreName,
			"task_id": rec.TaskID,
			"error":   err.Error(),
		})
	}
}
