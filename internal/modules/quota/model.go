package quota

import "errors"

// ErrExhausted is returned when a caller has no extraction calls left for the current month.
var ErrExhausted = errors.New("monthly extraction quota exhausted")

// DefaultAllowance is the number of extractor-backed calls granted per month.
const DefaultAllowance = 100
