package genjob

import (
	"errors"
	"fmt"
)

// ErrSubmissionRejected indicates the provider refused the job or returned an
// unusable acknowledgement. No polling is attempted.
var ErrSubmissionRejected = errors.New("genjob: submission rejected")

// ErrGenerationFailed indicates the provider accepted the job and later
// reported a terminal failure.
var ErrGenerationFailed = errors.New("genjob: generation failed")

// ErrPollTimeout indicates the poll budget (wall clock or attempts) was
// exhausted before the provider reached a terminal status. It wraps
// ErrGenerationFailed so callers treating all failures uniformly keep
// working while logs retain the distinct reason.
var ErrPollTimeout = fmt.Errorf("poll budget exhausted: %w", ErrGenerationFailed)

// TransportError reports a network or decoding failure while talking to a
// provider. It is surfaced to users like a generation failure but logged
// separately for diagnosis.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status > 0:
		return fmt.Sprintf("genjob: %s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("genjob: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("genjob: %s: status %d", e.Op, e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
