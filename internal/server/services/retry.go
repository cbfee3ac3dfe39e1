package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/sethvargo/go-retry"
)

// retrier runs store calls with exponential backoff. Only
// common.ErrUnavailable is retried; every other error returns at once.
type retrier struct {
	attempts uint64
	base     time.Duration
}

func newRetrier(attempts uint64, base time.Duration) retrier {
	if attempts == 0 {
		attempts = 1
	}
	if base <= 0 {
		base = 10 * time.Millisecond
	}
	return retrier{attempts: attempts, base: base}
}

func (r retrier) do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(r.attempts-1, retry.NewExponential(r.base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func withRetry[T any](ctx context.Context, r retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
