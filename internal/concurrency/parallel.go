package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures parallel processing.
type ParallelOptions struct {
	// MaxWorkers caps how many items run at once.
	MaxWorkers int
}

// DefaultOptions returns the default parallel options.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 10}
}

// ProcessParallel runs itemFunc over items on a bounded worker pool and
// waits for every item to settle. Failures never cancel the batch: each
// item's result and error land at its own index, so a caller can use the
// successes and ignore the failures. Results come back in input order.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	type indexed struct {
		index int
		err   error
	}
	done := make(chan indexed, len(items))

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					done <- indexed{i, ctx.Err()}
				default:
					r, err := itemFunc(ctx, i, items[i])
					results[i] = r
					done <- indexed{i, err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	for d := range done {
		errs[d.index] = d.err
	}
	return results, errs
}

// ForEach runs fn over items in parallel for side effects only, returning
// the errors that occurred. Like ProcessParallel it always waits for the
// whole batch.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	fn func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})

	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
