package textservice

import (
	"errors"
	"fmt"
)

// Generators may return these to let the provider classify a bad response.
var (
	ErrEmptyResponse     = errors.New("generator returned no text")
	ErrMalformedResponse = errors.New("generator returned a malformed response")
)

// FailureReason classifies why a generation attempt did not produce text.
type FailureReason string

const (
	ReasonNotConfigured     FailureReason = "not_configured"
	ReasonTimeout           FailureReason = "timeout"
	ReasonCanceled          FailureReason = "canceled"
	ReasonRemoteError       FailureReason = "remote_error"
	ReasonEmptyResponse     FailureReason = "empty_response"
	ReasonMalformedResponse FailureReason = "malformed_response"
)

// ProviderFailure is the internal error of a generation attempt. It never
// leaves the provider; Generate collapses it into the fallback text.
type ProviderFailure struct {
	Reason FailureReason
	Err    error
}

func (f *ProviderFailure) Error() string {
	if f.Err == nil {
		return "text provider: " + string(f.Reason)
	}
	return fmt.Sprintf("text provider: %s: %v", f.Reason, f.Err)
}

func (f *ProviderFailure) Unwrap() error { return f.Err }
