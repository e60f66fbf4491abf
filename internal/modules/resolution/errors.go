package resolution

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is returned for blank queries, before any I/O.
var ErrInvalidQuery = errors.New("query must not be empty")

// NotFoundError reports that every extraction tier came back without a
// geocodable place. Tried lists the candidate names in the order attempted.
type NotFoundError struct {
	Query       string
	Tried       []string
	Suggestions []string
	// Cause is set when the overall budget or the caller's context ended the search.
	Cause error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no location found for %q", e.Query)
	if len(e.Tried) > 0 {
		msg += " (tried: " + strings.Join(e.Tried, ", ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func suggestionsFor(tried []string) []string {
	out := []string{
		"Try a nearby major city.",
		"Check the spelling of the place name.",
		"Use full names instead of abbreviations or nicknames.",
	}
	if len(tried) > 0 {
		out = append(out, "Try one of: "+strings.Join(tried, ", ")+".")
	}
	return out
}
