// Package sequencer drives state-changing canvas operations through
// their submitted/confirming lifecycle. One operation may be in flight
// at a time; compound operations (listing a pixel is approve, then
// listPixel) carry an explicit continuation that is only submitted once
// the first step confirms. Failures discard the continuation and are
// surfaced to the caller; nothing is retried automatically, since a
// duplicate write is worse than a manual retry.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
)

// State is the lifecycle position of the in-flight operation.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitted  State = "submitted"
	StateConfirming State = "confirming"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

// inFlight reports whether the state blocks a new operation. The
// terminal states are quiescent; a new intent resets them.
func (s State) inFlight() bool {
	return s == StateSubmitted || s == StateConfirming
}

var (
	ErrBusy     = errors.New("sequencer: an operation is already in flight")
	ErrReverted = errors.New("sequencer: transaction reverted")
)

// Step is one signed call within an operation.
type Step struct {
	Call  chain.Call
	Value *uint256.Int
}

// Operation is one user intent, possibly spanning two chained calls.
// The continuation is submitted only after the first step confirms; it
// captures its arguments (the listing price) at intent time.
type Operation struct {
	ID           uuid.UUID
	Kind         string
	First        Step
	Continuation *Step
}

// Hook observes terminal outcomes. Confirmed fires after the final step
// of an operation confirms; Failed fires on any submission error or
// revert, with a short human-readable cause.
type Hook struct {
	Confirmed func(Operation)
	Failed    func(Operation, error)
}

// Sequencer executes operations one at a time against a TxSubmitter.
type Sequencer struct {
	submitter chain.TxSubmitter
	hook      Hook
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	current *Operation
}

// New creates an idle sequencer.
func New(submitter chain.TxSubmitter, hook Hook, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{
		submitter: submitter,
		hook:      hook,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the in-flight operation, if any.
func (s *Sequencer) Current() (Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Operation{}, false
	}
	return *s.current, true
}

// Execute runs op through its full lifecycle, blocking until the final
// step confirms or anything fails. A second intent while one is in
// flight returns ErrBusy immediately; the caller is expected to disable
// its triggering controls rather than queue. The terminal state
// (confirmed or failed) stays visible until the next intent starts.
func (s *Sequencer) Execute(ctx context.Context, op Operation) error {
	s.mu.Lock()
	if s.state.inFlight() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateSubmitted
	s.current = &op
	s.mu.Unlock()

	err := s.run(ctx, op)

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
	} else {
		s.state = StateConfirmed
	}
	s.current = nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("operation failed",
			slog.String("kind", op.Kind),
			slog.String("id", op.ID.String()),
			slog.String("error", err.Error()))
		if s.hook.Failed != nil {
			s.hook.Failed(op, err)
		}
		return err
	}

	s.logger.Info("operation confirmed",
		slog.String("kind", op.Kind),
		slog.String("id", op.ID.String()))
	if s.hook.Confirmed != nil {
		s.hook.Confirmed(op)
	}
	return nil
}

func (s *Sequencer) run(ctx context.Context, op Operation) error {
	steps := []Step{op.First}
	if op.Continuation != nil {
		steps = append(steps, *op.Continuation)
	}

	for i, step := range steps {
		s.setState(StateSubmitted)
		handle, err := s.submitter.Submit(ctx, step.Call, step.Value)
		if err != nil {
			return fmt.Errorf("%s step %d/%d: %w", op.Kind, i+1, len(steps), err)
		}

		s.setState(StateConfirming)
		status, err := s.submitter.Wait(ctx, handle)
		if err != nil {
			return fmt.Errorf("%s step %d/%d: %w", op.Kind, i+1, len(steps), err)
		}
		if status != chain.ReceiptConfirmed {
			// A revert on the first step discards the continuation.
			return fmt.Errorf("%s step %d/%d: %w", op.Kind, i+1, len(steps), ErrReverted)
		}
	}
	return nil
}

func (s *Sequencer) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
