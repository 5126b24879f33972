package pipeline

import (
	"context"
	"sync"
	"time"
)

// Stage is one unit of pipeline work operating on the shared run state.
type Stage interface {
	// ID returns the unique identifier for this stage.
	ID() string

	// Name returns the human-readable name for this stage.
	Name() string

	// Run executes the stage against the run state.
	Run(ctx context.Context, state *State) error
}

// StageStatus is the lifecycle state of a stage within a run.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// StageState tracks one stage's execution within a run.
type StageState struct {
	mu        sync.RWMutex
	id        string
	name      string
	status    StageStatus
	startTime time.Time
	endTime   time.Time
	err       error
}

// NewStageState creates a pending stage state.
func NewStageState(id, name string) *StageState {
	return &StageState{id: id, name: name, status: StageStatusPending}
}

// Start marks the stage active.
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StageStatusActive
	s.startTime = time.Now()
}

// Complete marks the stage completed.
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StageStatusCompleted
	s.endTime = time.Now()
}

// Fail marks the stage failed with err.
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StageStatusFailed
	s.endTime = time.Now()
	s.err = err
}

// Status returns the current status.
func (s *StageState) Status() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the failure error, if any.
func (s *StageState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Duration returns how long the stage ran, zero while pending.
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	if s.endTime.IsZero() {
		return time.Since(s.startTime)
	}
	return s.endTime.Sub(s.startTime)
}
