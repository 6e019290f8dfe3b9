// Package steps executes named, idempotent units of work with bounded
// retries and durable memoization. A step's result is recorded under
// (runID, step name) before it is returned, so a re-entrant pipeline run
// skips work that already completed.
package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"podscribe/internal/logger"
)

// Log is the append-only step record the Runner memoizes results in.
// Implemented by the record store.
type Log interface {
	GetStep(ctx context.Context, runID, name string) ([]byte, bool, error)
	PutStep(ctx context.Context, runID, name string, value []byte) error
}

// Policy bounds one step's execution: MaxRetries retries after the first
// attempt, exponential backoff from BaseDelay by Multiplier, and a
// per-attempt Timeout.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Multiplier float64
	Timeout    time.Duration
}

type Runner struct {
	log    Log
	logger *logger.Logger
}

func NewRunner(log Log, lg *logger.Logger) *Runner {
	return &Runner{log: log, logger: lg.Module("steps")}
}

type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal marks an error as non-retriable: the step fails immediately
// regardless of the policy's retry budget.
func Fatal(err error) error {
	return &fatalError{err: err}
}

// Run executes the named step under the runner's log and the given
// policy. If the step already completed for this run, the recorded value
// is returned without invoking fn.
func Run[T any](ctx context.Context, r *Runner, runID, name string, pol Policy, fn func(context.Context) (T, error)) (T, error) {
	var out T

	raw, ok, err := r.log.GetStep(ctx, runID, name)
	if err != nil {
		return out, fmt.Errorf("step %s: read log: %w", name, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("step %s: decode recorded value: %w", name, err)
		}
		r.logger.WithField("step", name).WithField("run_id", runID).Debug("step already recorded, skipping")
		return out, nil
	}

	attempt := 0
	op := func() error {
		attempt++
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if pol.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, pol.Timeout)
		}
		defer cancel()

		v, err := fn(attemptCtx)
		if err != nil {
			var fe *fatalError
			if errors.As(err, &fe) {
				return backoff.Permanent(fe.err)
			}
			r.logger.WithError(err).WithField("step", name).WithField("attempt", attempt).Warn("step attempt failed")
			return err
		}
		out = v
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = pol.BaseDelay
	if pol.Multiplier > 0 {
		bo.Multiplier = pol.Multiplier
	}
	bo.MaxElapsedTime = 0

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(pol.MaxRetries)), ctx)); err != nil {
		return out, fmt.Errorf("step %s: %w", name, err)
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("step %s: encode result: %w", name, err)
	}
	if err := r.log.PutStep(ctx, runID, name, raw); err != nil {
		return out, fmt.Errorf("step %s: record result: %w", name, err)
	}
	return out, nil
}
