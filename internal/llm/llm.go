// Package llm defines the contract between the analysis pipeline and the
// external generative-model provider. Providers convert their wide space of
// upstream failure shapes into the small closed taxonomy defined here so the
// rest of the system can branch on it.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Client abstracts the generative-model provider used for resume analysis.
// Analyze returns the model's structured output as valid JSON, or an *Error.
type Client interface {
	Analyze(ctx context.Context, resumeText string) (json.RawMessage, error)
}

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	// KindTimeout means the call exceeded the wall-clock budget. Never
	// retried automatically; retry is left to the user.
	KindTimeout ErrorKind = "timeout"
	// KindRateLimited means the provider throttled the request. RetryAfter
	// carries a backoff hint in seconds.
	KindRateLimited ErrorKind = "rate_limited"
	// KindBadResponse means the response body held no parseable JSON even
	// after best-effort extraction.
	KindBadResponse ErrorKind = "bad_upstream_response"
	// KindUpstream is any other non-success from the provider; Status holds
	// the provider's HTTP status code.
	KindUpstream ErrorKind = "upstream_error"
)

// Error is a classified gateway failure.
type Error struct {
	Kind       ErrorKind
	Status     int
	RetryAfter int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUpstream:
		return fmt.Sprintf("llm %s: status %d: %v", e.Kind, e.Status, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("llm %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError returns the classified gateway error, if err is one.
func AsError(err error) (*Error, bool) {
	var gw *Error
	if errors.As(err, &gw) {
		return gw, true
	}
	return nil, false
}
