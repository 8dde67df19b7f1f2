package pipeline

import (
	"sync"
	"time"

	"embdash/internal/config"
	"embdash/internal/exporter"
	"embdash/internal/indicators"
	"embdash/pkg/contracts/domain"
)

// StepStatus is the lifecycle state of one step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState tracks the runtime state of one step across a run.
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Err       string     `json:"error,omitempty"`
}

// NewStepState creates a pending state for a step.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step completed.
func (s *StepState) Complete(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Message = message
}

// Fail marks the step failed.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err.Error()
}

// Skip marks the step skipped with a reason.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Snapshot returns a copy safe to serialize while the run continues.
func (s *StepState) Snapshot() StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StepState{
		ID:        s.ID,
		Name:      s.Name,
		Status:    s.Status,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Message:   s.Message,
		Err:       s.Err,
	}
}

// Duration returns the elapsed time of a finished step.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// State is the shared run state threaded through the steps. Each step
// reads the artifacts of its predecessors and adds its own.
type State struct {
	Config *config.Config
	Paths  *config.Paths

	// TargetYear is the resolved target year for this run.
	TargetYear int
	// SkipFetch reuses previously downloaded source files when present.
	SkipFetch bool

	// Universe is the sorted ISO3 country set from the holdings file.
	Universe []string
	// Series holds the parsed WEO series, keyed by indicator code.
	Series map[string]*domain.Series
	// Table is the assembled snapshot table.
	Table *indicators.Table
	// Metrics is the nested country document fed to the dashboard.
	Metrics exporter.CountryMetrics
}
