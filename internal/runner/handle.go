package runner

import (
	"context"
	"sync"
	"sync/atomic"
)

// State is the lifecycle of one run.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateFinished
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run can no longer change state.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed || s == StateCancelled
}

// Handle represents one in-flight run. It is created by Orchestrator.Start
// and is never reused; the event channel is closed after the single
// finished event has been delivered.
type Handle struct {
	id        string
	casePath  string
	reportDir string

	events chan Event
	state  atomic.Int32

	proc       Process
	cancelReq  chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

func newHandle(id, casePath, reportDir string) *Handle {
	h := &Handle{
		id:        id,
		casePath:  casePath,
		reportDir: reportDir,
		events:    make(chan Event, eventBuffer),
		cancelReq: make(chan struct{}),
		done:      make(chan struct{}),
	}
	h.state.Store(int32(StateStarting))
	return h
}

// ID returns the run's unique identifier.
func (h *Handle) ID() string { return h.id }

// CasePath returns the test case the run was started with.
func (h *Handle) CasePath() string { return h.casePath }

// ReportDir returns the directory the worker writes its artifacts into.
func (h *Handle) ReportDir() string { return h.reportDir }

// Events returns the receive side of the run's event channel. Events arrive
// in emission order; the last event is always KindFinished, after which the
// channel is closed.
func (h *Handle) Events() <-chan Event { return h.events }

// State returns the current lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

func (h *Handle) setState(s State) { h.state.Store(int32(s)) }

// Wait blocks until the run reaches a terminal state or ctx is done.
func (h *Handle) Wait(ctx context.Context) (State, error) {
	select {
	case <-h.done:
		return h.State(), nil
	case <-ctx.Done():
		return h.State(), ctx.Err()
	}
}

func (h *Handle) cancelRequested() bool {
	select {
	case <-h.cancelReq:
		return true
	default:
		return false
	}
}
