package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
)

// Classification buckets an API response into exactly one retry category.
// The walkers drive an explicit classify → decide → sleep-or-return state
// machine off these values, so backoff policy is testable without a network.
type Classification int

const (
	// ClassSuccess is any 2xx response.
	ClassSuccess Classification = iota
	// ClassRetryableServer covers 5xx responses and transport-level
	// failures, retried with exponential backoff.
	ClassRetryableServer
	// ClassPrimaryRateLimited is the account-level hourly quota. Waited
	// out without an attempt-count penalty.
	ClassPrimaryRateLimited
	// ClassSecondaryRateLimited is short-term abuse detection. Retried
	// exactly once; indefinite retry risks IP-level penalties.
	ClassSecondaryRateLimited
	// ClassAuthFailure is a 401, eligible for one auth-scheme-switch retry.
	ClassAuthFailure
	// ClassNotFound is a 404, never retried.
	ClassNotFound
	// ClassFatal is anything unexpected.
	ClassFatal
)

func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassRetryableServer:
		return "retryable_server_error"
	case ClassPrimaryRateLimited:
		return "primary_rate_limited"
	case ClassSecondaryRateLimited:
		return "secondary_rate_limited"
	case ClassAuthFailure:
		return "auth_failure"
	case ClassNotFound:
		return "not_found"
	default:
		return "fatal"
	}
}

const (
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
	headerRetryAfter    = "Retry-After"
	headerRequestID     = "X-Github-Request-Id"
)

// secondaryPhrases mark abuse-detection responses. GitHub has used both
// wordings over time, so match case-insensitively on either.
var secondaryPhrases = []string{"secondary rate limit", "abuse detection"}

func hasSecondaryPhrase(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range secondaryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ClassifyStatus classifies a raw HTTP response. The GraphQL walker feeds
// it directly; ClassifyError reduces go-github typed errors to the same
// rules for the REST walker.
func ClassifyStatus(status int, header http.Header, body string) Classification {
	switch {
	case status >= 200 && status < 300:
		return ClassSuccess
	case status == http.StatusUnauthorized:
		return ClassAuthFailure
	case status == http.StatusNotFound:
		return ClassNotFound
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		if hasSecondaryPhrase(body) {
			return ClassSecondaryRateLimited
		}
		return ClassPrimaryRateLimited
	case status >= 500 && status < 600:
		return ClassRetryableServer
	default:
		if header.Get(headerRateRemaining) == "0" {
			return ClassPrimaryRateLimited
		}
		return ClassFatal
	}
}

// ClassifyError classifies an error returned by go-github. Transport-level
// failures with no HTTP response are treated as transient; context
// cancellation is terminal.
func ClassifyError(err error) Classification {
	if err == nil {
		return ClassSuccess
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return ClassSecondaryRateLimited
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		// go-github prefers the remaining-quota check, but the abuse
		// phrase takes priority in our taxonomy.
		if hasSecondaryPhrase(rateErr.Message) {
			return ClassSecondaryRateLimited
		}
		return ClassPrimaryRateLimited
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return ClassifyStatus(errResp.Response.StatusCode, errResp.Response.Header, errResp.Message)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassFatal
	}

	return ClassRetryableServer
}

// responseOf extracts the underlying HTTP response from a go-github error,
// when one exists, for header inspection (wait hints, correlation IDs).
func responseOf(err error) *http.Response {
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Response
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Response
	}
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Response
	}
	return nil
}

// requestIDOf returns the request-correlation identifier from a go-github
// error's response headers, or "" when absent. Logged before every backoff
// sleep for operator diagnostics.
func requestIDOf(err error) string {
	if resp := responseOf(err); resp != nil {
		return resp.Header.Get(headerRequestID)
	}
	return ""
}

// defaultPrimaryWait applies when a primary-limited response carries
// neither a Retry-After nor a usable reset timestamp.
const defaultPrimaryWait = 60 * time.Second

// primaryWait computes how long to wait out a primary rate limit: the
// Retry-After header when present, otherwise the reset timestamp minus now
// floored at zero.
func primaryWait(header http.Header, now time.Time) time.Duration {
	if ra := header.Get(headerRetryAfter); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}

	if reset := header.Get(headerRateReset); reset != "" {
		if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
			wait := time.Unix(ts, 0).Sub(now)
			if wait < 0 {
				wait = 0
			}
			return wait
		}
	}

	return defaultPrimaryWait
}

// primaryWaitFromError is primaryWait applied to a go-github error.
func primaryWaitFromError(err error, now time.Time) time.Duration {
	if resp := responseOf(err); resp != nil {
		return primaryWait(resp.Header, now)
	}
	return defaultPrimaryWait
}
