package jobs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WaitForCompletion polls an operation until it completes, fails, is
// cancelled, or the wait deadline passes. Terminal snapshots are never
// fetched twice: the loop returns or errors the moment it observes one.
// Polls are strictly sequential and the loop checks for caller cancellation
// before every fetch and every sleep.
func (s *Service) WaitForCompletion(ctx context.Context, operationID string) (*Operation, error) {
	start := s.now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if elapsed := s.now().Sub(start); elapsed > s.timeout {
			s.logger.Warn().
				Str("operation_id", operationID).
				Dur("elapsed", elapsed).
				Msg("wait for operation timed out")
			return nil, &TimeoutError{OperationID: operationID, Elapsed: elapsed, Timeout: s.timeout}
		}

		op, err := s.Get(ctx, operationID)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case StatusCompleted:
			s.logger.Debug().
				Str("operation_id", operationID).
				Dur("elapsed", s.now().Sub(start)).
				Msg("operation completed")
			return op, nil
		case StatusFailed:
			return nil, &FailedError{OperationID: operationID, Detail: op.Error}
		case StatusCancelled:
			return nil, &CancelledError{OperationID: operationID}
		}

		if err := s.sleep(ctx, s.interval); err != nil {
			return nil, err
		}
	}
}

// WaitForAll waits for every listed operation concurrently. The result slice
// is aligned with ids; the first failure cancels the remaining waits. Each
// operation is still polled sequentially by its own goroutine.
func (s *Service) WaitForAll(ctx context.Context, operationIDs []string) ([]*Operation, error) {
	results := make([]*Operation, len(operationIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range operationIDs {
		i, id := i, id
		g.Go(func() error {
			op, err := s.WaitForCompletion(ctx, id)
			if err != nil {
				return err
			}
			results[i] = op
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
