package github

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const (
	backoffBase      = 500 * time.Millisecond
	backoffCap       = 15 * time.Second
	backoffJitterMax = 250 * time.Millisecond

	// secondaryRetryWait is the fixed pause before the single retry
	// allowed after an abuse-detection response.
	secondaryRetryWait = 60 * time.Second
)

// serverErrorDelay computes the exponential backoff for a transient server
// error: min(15s, 500ms * 2^attempt + jitter) with jitter uniform in
// [0, 250ms).
func serverErrorDelay(attempt int) time.Duration {
	delay := backoffCap
	if attempt < 5 {
		// 500ms << 5 already exceeds the cap.
		delay = backoffBase << uint(attempt)
	}
	delay += time.Duration(rand.Int64N(int64(backoffJitterMax)))
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}

// sleepContext pauses for d or until the context is done, whichever comes
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// errSecondaryAbort signals that abuse detection fired again on the single
// allowed retry. The walkers translate it into a successful partial result
// rather than an error.
var errSecondaryAbort = errors.New("secondary rate limit persisted after retry")

// retryState tracks the retry budget across one walk. Every page fetch of a
// retrieval call shares it, so the auth-scheme switch and the single
// secondary retry each happen at most once per call, not once per page.
type retryState struct {
	attempts         int
	usedLegacyAuth   bool
	secondaryRetried bool
}
