// Package batch implements the Batch Executor (C6): a bounded worker pool
// that runs one operation per path against a single, consistent store
// snapshot, with independent per-path failure and input-order-preserving
// output.
package batch

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Result pairs one input path with its per-path outcome.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// Operation is a per-path unit of work executed against a shared snapshot.
// Implementations must be safe for concurrent use across goroutines; the
// snapshot they close over is read-only.
type Operation[T any] func(ctx context.Context, path string) (T, error)

// Run executes op for every path in paths on a bounded pool (default
// parallelism = CPU count), returning one Result per path in input order.
// One path's error never cancels another's work.
func Run[T any](ctx context.Context, paths []string, op Operation[T]) []Result[T] {
	return RunWithConcurrency(ctx, paths, runtime.NumCPU(), op)
}

// RunWithConcurrency is Run with an explicit worker cap, mainly for tests
// that want deterministic scheduling.
func RunWithConcurrency[T any](ctx context.Context, paths []string, maxGoroutines int, op Operation[T]) []Result[T] {
	if maxGoroutines < 1 {
		maxGoroutines = 1
	}

	p := pool.NewWithResults[Result[T]]().WithMaxGoroutines(maxGoroutines)
	for _, path := range paths {
		path := path
		p.Go(func() Result[T] {
			value, err := op(ctx, path)
			return Result[T]{Path: path, Value: value, Err: err}
		})
	}
	return p.Wait()
}

// Paths extracts the path list back out of a Result slice, preserving order.
func Paths[T any](results []Result[T]) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return paths
}

// Errors collects the non-nil errors from results into a map keyed by the
// path that produced each one.
func Errors[T any](results []Result[T]) map[string]error {
	errs := make(map[string]error)
	for _, r := range results {
		if r.Err != nil {
			errs[r.Path] = r.Err
		}
	}
	return errs
}
