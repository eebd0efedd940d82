// Package segment provides segment ID generation and the per-segment
// lifecycle state machine used by the session pipeline.
package segment

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Generator issues monotonically increasing segment IDs per interaction.
type Generator struct {
	counter uint64
}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// Next returns the next segment ID for an interaction.
func (g *Generator) Next(interactionId string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-seg-%d", interactionId, n)
}

// State is the lifecycle state of a segment.
type State int

const (
	// StateOpen accepts partials and exactly one final.
	StateOpen State = iota
	// StateFinalEmitted has produced its final and only awaits Close.
	StateFinalEmitted
	// StateClosed is terminal, reached on normal shutdown.
	StateClosed
	// StateDropped is terminal, reached on error. No final was or will be
	// emitted for a dropped segment: silence beats bad data.
	StateDropped
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateFinalEmitted:
		return "FINAL_EMITTED"
	case StateClosed:
		return "CLOSED"
	case StateDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal reports whether the state is CLOSED or DROPPED.
func (s State) IsTerminal() bool {
	return s == StateClosed || s == StateDropped
}

var (
	ErrSegmentClosed       = errors.New("segment is closed")
	ErrFinalAlreadyEmitted = errors.New("final already emitted for this segment")
	ErrPartialAfterFinal   = errors.New("cannot emit partial after final")
)

// Lifecycle is the state machine for a single segment. Thread-safe.
//
// OPEN allows any number of partials and exactly one final; emitting the
// final moves to FINAL_EMITTED, after which nothing but Close/Drop is legal.
type Lifecycle struct {
	mu        sync.RWMutex
	segmentId string
	state     State
}

// NewLifecycle creates a lifecycle in OPEN state.
func NewLifecycle(segmentId string) *Lifecycle {
	return &Lifecycle{segmentId: segmentId, state: StateOpen}
}

// SegmentId returns the current segment ID.
func (l *Lifecycle) SegmentId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.segmentId
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsDropped reports whether the segment was dropped due to error.
func (l *Lifecycle) IsDropped() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateDropped
}

// EmitPartial validates a partial emission against the current state.
func (l *Lifecycle) EmitPartial() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateOpen:
		return nil
	case StateFinalEmitted:
		return ErrPartialAfterFinal
	default:
		return ErrSegmentClosed
	}
}

// EmitFinal validates a final emission and transitions to FINAL_EMITTED.
func (l *Lifecycle) EmitFinal() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateOpen:
		l.state = StateFinalEmitted
		return nil
	case StateFinalEmitted:
		return ErrFinalAlreadyEmitted
	default:
		return ErrSegmentClosed
	}
}

// Close transitions to CLOSED. Legal from any state; idempotent.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateClosed
}

// Drop transitions to DROPPED unless already terminal. Returns whether the
// segment was dropped by this call.
func (l *Lifecycle) Drop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateDropped
	return true
}

// Reset reopens the lifecycle under a new segment ID. Used when an utterance
// boundary starts the next segment.
func (l *Lifecycle) Reset(newSegmentId string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.segmentId = newSegmentId
	l.state = StateOpen
}
