package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/events"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/messenger"
)

// Failure is one store or gateway call that went wrong during a turn.
type Failure struct {
	Op  string
	Err error
}

// TurnResult describes what handling one inbound event did. Failures are
// collected rather than aborting the turn; the dispatcher logs them.
type TurnResult struct {
	SenderID string
	Kind     events.Kind
	Sends    int
	Writes   int
	Failures []Failure
}

func (r *TurnResult) fail(op string, err error) {
	r.Failures = append(r.Failures, Failure{Op: op, Err: err})
}

func (r *TurnResult) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins every failure into one error, nil when the turn was clean.
func (r *TurnResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Op, f.Err))
	}
	return errors.Join(errs...)
}

// write records the outcome of a persistence mutation.
func (r *TurnResult) write(op string, err error) bool {
	if err != nil {
		r.fail(op, err)
		return false
	}
	r.Writes++
	return true
}

func deliver(ctx context.Context, gw messenger.Gateway, res *TurnResult, op string, req dto.SendRequest) bool {
	if _, err := gw.Send(ctx, req); err != nil {
		res.fail(op, err)
		return false
	}
	res.Sends++
	return true
}
