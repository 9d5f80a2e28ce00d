// Package apierr defines sentinel errors for the GitHub API error taxonomy.
// Callers match them with errors.Is to tell "I have nothing, and here is
// why" apart from a successful-but-truncated result.
package apierr

import "errors"

var (
	// ErrAuthFailed indicates authentication was rejected under both the
	// Bearer and legacy token schemes.
	ErrAuthFailed = errors.New("github authentication failed")

	// ErrNotFound indicates the pull request or repository does not exist
	// or is not visible to the credential. Never retried.
	ErrNotFound = errors.New("pull request not found")

	// ErrRateLimited indicates a rate limit that could not be waited out.
	ErrRateLimited = errors.New("github rate limit exceeded")

	// ErrServerError indicates transient 5xx failures that persisted past
	// the retry budget.
	ErrServerError = errors.New("github server error")

	// ErrNoOpenPR indicates open-PR resolution found no matching pull
	// request.
	ErrNoOpenPR = errors.New("no matching open pull request")
)
