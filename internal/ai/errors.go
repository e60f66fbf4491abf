package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"packwise/internal/retry"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("no response candidates from Gemini")

// statusError attaches an HTTP-equivalent status to a gRPC failure so the
// retry layer can apply its rate-limit backoff.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return fmt.Sprintf("gemini status %d: %v", e.status, e.err) }
func (e *statusError) Unwrap() error { return e.err }
func (e *statusError) HTTPCode() int { return e.status }

// classify maps SDK errors onto HTTP statuses. Unknown errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := apierror.FromError(err); ok {
		if code := ae.HTTPCode(); code > 0 {
			return &statusError{status: code, err: err}
		}
		if st := ae.GRPCStatus(); st != nil {
			if code := httpFromGRPC(st.Code()); code > 0 {
				return &statusError{status: code, err: err}
			}
		}
		return err
	}
	if st, ok := status.FromError(err); ok {
		if code := httpFromGRPC(st.Code()); code > 0 {
			return &statusError{status: code, err: err}
		}
	}
	return err
}

func httpFromGRPC(c codes.Code) int {
	switch c {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal:
		return http.StatusInternalServerError
	}
	return 0
}

// ShouldRetry is the retry predicate for Gemini calls: 5xx, 429 and
// per-attempt timeouts. Parse failures and 4xx are permanent.
func ShouldRetry(_ *http.Response, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return retry.IsTransientStatus(se.status)
	}
	return false
}
