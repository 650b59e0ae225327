package upstream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-github/v60/github"
)

// Retry runs an operation with bounded retries.
type Retry struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// Delay is the pause between attempts.
	Delay time.Duration

	// RetryOn decides whether the error is worth another attempt. When
	// nil every error is retried.
	RetryOn func(error) bool
}

// DefaultRetry retries transient API failures a few times with a short pause.
func DefaultRetry() Retry {
	return Retry{
		MaxRetries: 3,
		Delay:      2 * time.Second,
		RetryOn:    transientError,
	}
}

// Do runs fn, retrying per the policy. It returns the last error once the
// attempts are exhausted, the error is not retryable, or ctx is cancelled.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	var last error

	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.Delay):
			}
		}

		last = fn()
		if last == nil {
			return nil
		}
		if r.RetryOn != nil && !r.RetryOn(last) {
			return last
		}
	}

	return last
}

// transientError reports whether err looks like a temporary API failure.
// Server errors, rate limits, and transport failures are transient; other
// client errors are not.
func transientError(err error) bool {
	var rate *github.RateLimitError
	if errors.As(err, &rate) {
		return true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return true
	}

	var gerr *github.ErrorResponse
	if asGitHubError(err, &gerr) {
		if gerr.Response == nil {
			return false
		}
		return gerr.Response.StatusCode >= http.StatusInternalServerError
	}

	// No structured API error means the request never produced a
	// response, typically a network failure.
	return true
}

func asGitHubError(err error, target **github.ErrorResponse) bool {
	return errors.As(err, target)
}
