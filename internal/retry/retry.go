// Package retry retries transient provider failures on the caller's side.
// The provider client itself never retries.
package retry

import (
	"context"
	"time"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
)

// Policy controls the backoff between attempts.
type Policy struct {
	// Attempts is the total number of tries, the first one included.
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
	Logger   *logrus.Logger
}

// DefaultPolicy tries three times, starting at one second.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}
}

func (p Policy) normalized() Policy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	if p.MaxDelay < p.Delay {
		p.MaxDelay = p.Delay
	}
	if p.Logger == nil {
		p.Logger = logrus.StandardLogger()
	}
	return p
}

// Get calls fn until it succeeds, fails with an error that is not
// ServiceUnavailable or TooManyRequests, ctx is done, or the attempts run out.
// The last error is returned as is.
func Get[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()
	policy := retrypolicy.NewBuilder[T]().
		HandleIf(func(_ T, err error) bool {
			return ctx.Err() == nil && coreerrors.Retryable(err)
		}).
		WithBackoff(p.Delay, p.MaxDelay).
		WithMaxRetries(p.Attempts - 1).
		OnRetry(func(e failsafe.ExecutionEvent[T]) {
			p.Logger.WithFields(logrus.Fields{
				"attempt": e.Attempts(),
				"kind":    coreerrors.Kind(e.LastError()),
			}).Warn("retrying after transient failure")
		}).
		ReturnLastFailure().
		Build()

	return failsafe.With[T](policy).WithContext(ctx).Get(func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx)
	})
}

// Do is Get for operations without a result.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := Get(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
