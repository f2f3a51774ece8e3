package retryutil

import (
	"context"
	"time"
)

const defaultMaxRetries = 1

// Policy retries an operation when the failure carries a provider-supplied
// delay (e.g. a throttled send with retry_after). Sleep is injectable so
// tests run without real time delays.
type Policy struct {
	MaxRetries int
	Sleep      func(ctx context.Context, d time.Duration)
}

func Default() Policy {
	return Policy{MaxRetries: defaultMaxRetries}
}

// Do runs fn, consulting delayFor after each failure. A retry happens only
// when delayFor reports a delay for the error and the retry budget is not
// exhausted. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, delayFor func(error) (time.Duration, bool)) error {
	if fn == nil {
		return nil
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		}
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || delayFor == nil {
			return err
		}
		d, ok := delayFor(err)
		if !ok {
			return err
		}
		if d > 0 {
			sleep(ctx, d)
		}
		if ctx.Err() != nil {
			return err
		}
	}
}
