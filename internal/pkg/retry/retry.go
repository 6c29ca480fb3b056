package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/TemirB/invoice-processor/internal/config"
)

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// Do calls fn until it succeeds, returns an error wrapping ErrPermanent,
// the attempts are exhausted or ctx is done. Delays grow exponentially from
// Base up to Max with optional jitter. At least one attempt is always made.
func Do(ctx context.Context, retryPolicy config.Retry, fn func() error) error {
	attempts := retryPolicy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	d := retryPolicy.Base
	if d <= 0 {
		d = 100 * time.Millisecond
	}

	var err error
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) || i == attempts-1 {
			return err
		}

		delay := d
		if retryPolicy.JitterFactor > 0 {
			jitter := 1 + retryPolicy.JitterFactor*(2*r.Float64()-1)
			delay = time.Duration(float64(delay) * jitter)
		}
		if retryPolicy.Max > 0 && delay > retryPolicy.Max {
			delay = retryPolicy.Max
		}

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}

		d *= 2
		if retryPolicy.Max > 0 && d > retryPolicy.Max {
			d = retryPolicy.Max
		}
	}
	return err
}
