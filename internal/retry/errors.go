// README: Transient error classification and response status checks.
package retry

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// TransientError is a timeout, 5xx or 429 that survived the whole retry budget.
type TransientError struct {
	Status   int
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("transient failure after %d attempts (status %d): %v", e.Attempts, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transient failure after %d attempts: %v", e.Attempts, e.Err)
	default:
		return fmt.Sprintf("transient failure after %d attempts (status %d)", e.Attempts, e.Status)
	}
}

func (e *TransientError) Unwrap() error { return e.Err }

// HTTPCode exposes the upstream status, mirroring apierror.APIError.
func (e *TransientError) HTTPCode() int { return e.Status }

// IsTransient reports whether err is, or wraps, a *TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// CheckResponse turns a non-2xx response into an error. Transient statuses
// become *TransientError; the body prefix is kept for diagnostics.
func CheckResponse(resp *http.Response, attempts int) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(payload))
	if IsTransientStatus(resp.StatusCode) {
		return &TransientError{Status: resp.StatusCode, Attempts: attempts, Err: err}
	}
	return err
}

type httpCoder interface {
	HTTPCode() int
}

func statusOf(err error) int {
	var hc httpCoder
	if errors.As(err, &hc) {
		if code := hc.HTTPCode(); code > 0 {
			return code
		}
	}
	return 0
}
