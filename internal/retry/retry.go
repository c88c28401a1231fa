// Package retry runs operations with a bounded number of attempts and a
// linearly growing pause between them.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retried operation. The pause after failed attempt n is Base*n.
type Policy struct {
	Attempts uint
	Base     time.Duration
	// Notify, if set, is called before each pause with the attempt that just failed.
	Notify func(attempt int, err error, next time.Duration)
}

// LinearBackOff waits Base, 2*Base, 3*Base, ... between attempts
type LinearBackOff struct {
	Base time.Duration

	attempt int64
}

// NextBackOff implements backoff.BackOff
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.Base * time.Duration(b.attempt)
}

// Reset implements backoff.BackOff
func (b *LinearBackOff) Reset() {
	b.attempt = 0
}

// Do runs op until it succeeds, returns a permanent error, the context ends,
// or Attempts is exhausted. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	attempt := 0
	return backoff.Retry(ctx,
		func() (T, error) {
			attempt++
			return op(ctx, attempt)
		},
		backoff.WithBackOff(&LinearBackOff{Base: p.Base}),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			if p.Notify != nil {
				p.Notify(attempt, err, next)
			}
		}),
	)
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}
