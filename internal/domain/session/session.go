// Package session holds the per-visitor assessment state behind the
// prediction form.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/riskterm/internal/domain/types"
	"github.com/okian/riskterm/pkg/metrics"
)

// State is the assessment lifecycle position.
type State string

// States. success and failure only move on through a fresh Begin.
const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID         string
	State      State
	Record     types.ApplicantRecord
	Result     *types.PredictionResult
	Error      string
	Generation uint64
	UpdatedAt  time.Time
}

// HasResult reports whether a successful prediction is available.
func (s Snapshot) HasResult() bool { return s.State == StateSuccess && s.Result != nil }

// Session is one visitor's assessment. All methods are safe for concurrent use.
type Session struct {
	id  string
	now func() time.Time

	mu      sync.Mutex
	state   State
	record  types.ApplicantRecord
	result  *types.PredictionResult
	errMsg  string
	gen     uint64
	updated time.Time
}

func newSession(id string, now func() time.Time) *Session {
	return &Session{id: id, now: now, state: StateIdle, updated: now()}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Begin starts a new submission for rec. Any previous result or error is
// cleared first. The returned generation must be passed to Succeed or Fail.
func (s *Session) Begin(rec types.ApplicantRecord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = StateSubmitting
	s.record = rec
	s.result = nil
	s.errMsg = ""
	s.updated = s.now()
	return s.gen
}

// Succeed records res for generation gen. A superseded generation is dropped.
func (s *Session) Succeed(gen uint64, res types.PredictionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(gen); err != nil {
		return err
	}
	s.state = StateSuccess
	s.result = &res
	s.updated = s.now()
	return nil
}

// Fail records msg for generation gen. A superseded generation is dropped.
func (s *Session) Fail(gen uint64, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(gen); err != nil {
		return err
	}
	s.state = StateFailure
	s.errMsg = msg
	s.updated = s.now()
	return nil
}

func (s *Session) checkLocked(gen uint64) error {
	if gen != s.gen {
		metrics.RecordStaleResponse()
		return fmt.Errorf("%w: generation %d, current %d", ErrStaleGeneration, gen, s.gen)
	}
	if s.state != StateSubmitting {
		return fmt.Errorf("%w: state %s", ErrNotSubmitting, s.state)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Record:     s.record,
		Error:      s.errMsg,
		Generation: s.gen,
		UpdatedAt:  s.updated,
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	return snap
}
