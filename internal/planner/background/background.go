// Package background implements the explicit UI/core hand-off
// contract named in spec.md §5: the Production Table Solver (and any
// other long-running engine call) crosses onto a background executor
// before running and back onto the caller's thread with a result plus
// an optional warning string, never a propagated panic.
package background

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Executor rate-limits how often callers may hop onto the background
// boundary, guarding against a UI that fires more solves than the
// core can keep up with (spec.md §5's "no concurrent mutation of
// project state is permitted across the boundary").
type Executor struct {
	limiter *rate.Limiter
}

// New creates an Executor allowing rps hops per second, with burst
// extra hops permitted instantaneously.
func New(rps float64, burst int) *Executor {
	return &Executor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Hop runs fn on the background boundary: it blocks for a rate-limiter
// slot, then invokes fn, converting both a returned error and any
// panic inside fn into a non-fatal warning string rather than letting
// either reach the caller as a crash (spec.md §5: "any exception in
// the solver is surfaced as a failed task whose error is converted
// into a user-visible warning string").
func Hop[T any](ctx context.Context, ex *Executor, fn func(ctx context.Context) (T, error)) (result T, warning string) {
	if err := ex.limiter.Wait(ctx); err != nil {
		return result, err.Error()
	}

	defer func() {
		if r := recover(); r != nil {
			warning = fmt.Sprintf("background task failed: %v", r)
		}
	}()

	var err error
	result, err = fn(ctx)
	if err != nil {
		warning = err.Error()
	}
	return result, warning
}
