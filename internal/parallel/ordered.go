// Package parallel runs independent units of work over a bounded pool and
// hands results back in input order.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when a caller passes workers <= 0.
const DefaultWorkers = 4

// ErrPanic marks a unit that panicked. The panic value and stack are kept on
// the PanicError wrapping it.
var ErrPanic = errors.New("unit panicked")

// PanicError carries a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("%v: %v", ErrPanic, e.Value) }

func (e *PanicError) Unwrap() error { return ErrPanic }

// Result is the outcome of one unit, stored at its input index.
type Result[R any] struct {
	Value R
	Err   error
}

// OrderedMap applies fn to every item using at most workers goroutines and
// returns one Result per item, in input order regardless of completion
// order. A failing or panicking unit never cancels its siblings. Units that
// have not started when ctx is done report ctx.Err().
func OrderedMap[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, i int, item T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))
	if len(items) == 0 {
		return out
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i] = call(ctx, i, item, fn)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func call[T, R any](ctx context.Context, i int, item T, fn func(context.Context, int, T) (R, error)) (res Result[R]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[R]{Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()
	v, err := fn(ctx, i, item)
	return Result[R]{Value: v, Err: err}
}

// Errors returns the non-nil unit errors joined, or nil.
func Errors[R any](results []Result[R]) error {
	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("unit %d: %w", i, r.Err))
		}
	}
	return errors.Join(errs...)
}
