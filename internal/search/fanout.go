package search

import (
	"context"
	"errors"
	"sync"
)

// fanOut runs n calls concurrently with at most limit in flight.
// Callers pass an index-addressed callback and collect results into
// their own index-addressed slice, so output order never depends on
// completion order. The first failure cancels the remaining calls and
// aborts the whole batch.
func fanOut(ctx context.Context, limit, n int, call func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan int)
	errCh := make(chan error, n)
	var wg sync.WaitGroup

	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if runCtx.Err() != nil {
					errCh <- nil
					continue
				}
				if err := call(runCtx, i); err != nil {
					cancel()
					errCh <- err
					continue
				}
				errCh <- nil
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i := 0; i < n; i++ {
			select {
			case tasks <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(errCh)
	}()

	// Sibling calls canceled by the real failure also report errors;
	// prefer the cause over its cancellation fallout.
	var firstErr error
	for err := range errCh {
		if err == nil {
			continue
		}
		if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(err, context.Canceled)) {
			firstErr = err
		}
	}
	return firstErr
}
