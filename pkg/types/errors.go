package types

import (
	"errors"
	"fmt"
)

// ErrIncompleteAssessment is returned by the aggregator when fewer than
// two subsystem scores are available for a cycle.
var ErrIncompleteAssessment = errors.New("incomplete assessment: fewer than two subsystem scores available")

// ErrConfig is the root of all configuration-time failures. Configuration
// errors are fatal at load time and are never silently defaulted.
var ErrConfig = errors.New("configuration error")

// InvalidSignalError reports a malformed or out-of-domain raw signal:
// NaN, negative voltage, capacity above design beyond tolerance, and so
// on. The signal is excluded from its analyzer's weighted sum and the
// analyzer reduces confidence by the excluded factor's weight.
type InvalidSignalError struct {
	Signal string
	Reason string
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal %q: %s", e.Signal, e.Reason)
}

// IsInvalidSignal reports whether err is an InvalidSignalError.
func IsInvalidSignal(err error) bool {
	var ise *InvalidSignalError
	return errors.As(err, &ise)
}
