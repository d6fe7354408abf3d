// Package profile provides a thread-safe profiling session that accumulates
// per-operation metrics over an open-ended recording window.
package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/probekit/probekit/internal/stats"
)

var (
	// ErrAlreadyRunning is returned by Start when the session is running.
	ErrAlreadyRunning = errors.New("profile session is already running")
	// ErrNotRunning is returned by Stop when the session is not running.
	ErrNotRunning = errors.New("profile session is not running")
)

// Session is a mutable recording context with an explicit Start/Stop
// lifecycle. All methods are safe for concurrent use; a single mutex guards
// the operation sequence together with the running sums, so a reader never
// observes a sequence length inconsistent with the totals.
type Session struct {
	mu          sync.Mutex
	id          ulid.ULID
	name        string
	running     bool
	startTime   time.Time
	endTime     time.Time
	ops         []OperationMetrics
	totalMemory int64
	totalAllocs int64
	view        *OperationList
}

// NewSession creates a session in the not-started state.
// The name must not be empty or whitespace.
func NewSession(name string) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("session name must not be empty")
	}
	s := &Session{
		id:   ulid.Make(),
		name: name,
	}
	s.view = &OperationList{session: s}
	return s, nil
}

// ID returns the session's run identifier, assigned at construction.
func (s *Session) ID() ulid.ULID { return s.id }

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// Start opens the recording window. Starting a running session fails with
// ErrAlreadyRunning and changes nothing. A stopped session may be started
// again; this resets the start instant and clears the stop instant.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.startTime = time.Now()
	s.endTime = time.Time{}
	return nil
}

// Stop closes the recording window. Stopping a session that is not running
// fails with ErrNotRunning and changes nothing.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	s.running = false
	s.endTime = time.Now()
	return nil
}

// Running reports whether the recording window is open.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// StartedAt returns the instant the session was last started, or the zero
// time if it has never been started.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// StoppedAt returns the instant the session was last stopped, or the zero
// time while running or before the first stop.
func (s *Session) StoppedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

// Duration returns the live elapsed time while running, the fixed
// stop-start interval after stopping, and zero before the first start.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.running:
		return time.Since(s.startTime)
	case !s.endTime.IsZero():
		return s.endTime.Sub(s.startTime)
	default:
		return 0
	}
}

// AddOperation appends one metrics record and updates the running sums in the
// same critical section. Valid regardless of running state. Invalid metrics
// are rejected before any mutation.
func (s *Session) AddOperation(m OperationMetrics) error {
	if err := m.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, m)
	s.totalMemory += m.MemoryUsed
	s.totalAllocs += m.Allocations
	return nil
}

// TotalMemoryUsed returns the running sum of recorded memory deltas.
func (s *Session) TotalMemoryUsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalMemory
}

// TotalAllocations returns the running sum of recorded allocation counts.
func (s *Session) TotalAllocations() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalAllocs
}

// AverageOperationDuration is recomputed from the live sequence on every
// call rather than tracked incrementally, so it cannot drift. Zero when no
// operations have been recorded.
func (s *Session) AverageOperationDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ops) == 0 {
		return 0
	}
	var total time.Duration
	for _, m := range s.ops {
		total += m.Duration
	}
	return total / time.Duration(len(s.ops))
}

// Clear empties the operation sequence and resets both running sums. The
// running state and the start/stop instants are left untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	s.totalMemory = 0
	s.totalAllocs = 0
}

// Operations returns a read-only live view over the recorded operations. The
// same OperationList instance is returned on every call, so callers may hold
// the reference and observe later appends through it.
func (s *Session) Operations() *OperationList {
	return s.view
}

// SessionStats is an aggregate snapshot of a session at read time.
type SessionStats struct {
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	Running     bool   `json:"running"`
	Operations  int    `json:"operations"`

	TotalMemoryUsed  int64 `json:"total_memory_used"`
	TotalAllocations int64 `json:"total_allocations"`

	AverageDuration time.Duration `json:"-"`
	MinDuration     time.Duration `json:"-"`
	MaxDuration     time.Duration `json:"-"`
	StdDev          time.Duration `json:"-"`
	Duration        time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	AverageMs  float64 `json:"average_ms"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	StdDevMs   float64 `json:"stddev_ms"`
	DurationMs float64 `json:"duration_ms"`
}

// Snapshot reduces the current operation sequence into a SessionStats.
func (s *Session) Snapshot() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make([]time.Duration, len(s.ops))
	for i, m := range s.ops {
		durations[i] = m.Duration
	}
	sum := stats.Reduce(durations)

	var elapsed time.Duration
	switch {
	case s.running:
		elapsed = time.Since(s.startTime)
	case !s.endTime.IsZero():
		elapsed = s.endTime.Sub(s.startTime)
	}

	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return SessionStats{
		SessionID:        s.id.String(),
		SessionName:      s.name,
		Running:          s.running,
		Operations:       len(s.ops),
		TotalMemoryUsed:  s.totalMemory,
		TotalAllocations: s.totalAllocs,
		AverageDuration:  sum.Mean,
		MinDuration:      sum.Min,
		MaxDuration:      sum.Max,
		StdDev:           sum.StdDev,
		Duration:         elapsed,
		AverageMs:        ms(sum.Mean),
		MinMs:            ms(sum.Min),
		MaxMs:            ms(sum.Max),
		StdDevMs:         ms(sum.StdDev),
		DurationMs:       ms(elapsed),
	}
}
