// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidgate/internal/log"
)

// State is the lifecycle of one download request.
type State int

const (
	StateInitiating State = iota
	StateResolving
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInitiating:
		return "initiating"
	case StateResolving:
		return "resolving"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// allowed lists the legal successors of each non-terminal state.
var allowed = map[State][]State{
	StateInitiating: {StateResolving, StateFailed, StateCancelled},
	StateResolving:  {StateStreaming, StateFailed, StateCancelled},
	StateStreaming:  {StateCompleted, StateFailed, StateCancelled},
}

// Tracker follows one request through its states and logs each transition.
// It is owned by the request goroutine.
type Tracker struct {
	route   string
	state   State
	started time.Time
	logger  zerolog.Logger
}

// Track starts a request in StateInitiating.
func Track(ctx context.Context, route string) *Tracker {
	return &Tracker{
		route:   route,
		state:   StateInitiating,
		started: time.Now(),
		logger:  log.WithComponentFromContext(ctx, "relay").With().Str(log.FieldRoute, route).Logger(),
	}
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Route is the route label used for metrics.
func (t *Tracker) Route() string { return t.route }

// To moves to next. Illegal transitions are ignored and reported as false.
func (t *Tracker) To(next State) bool {
	for _, s := range allowed[t.state] {
		if s == next {
			t.logger.Debug().
				Str(log.FieldOldState, t.state.String()).
				Str(log.FieldNewState, next.String()).
				Dur(log.FieldDuration, time.Since(t.started)).
				Msg("relay state changed")
			t.state = next
			return true
		}
	}
	t.logger.Warn().
		Str(log.FieldOldState, t.state.String()).
		Str(log.FieldNewState, next.String()).
		Msg("illegal relay state transition")
	return false
}

// Logger is the request-scoped relay logger.
func (t *Tracker) Logger() *zerolog.Logger { return &t.logger }
