package hal

import (
	"fmt"
	"strings"
)

// InvalidArgumentError reports an out-of-range or malformed value passed to
// a component operation. It is raised before any backend I/O occurs.
type InvalidArgumentError struct {
	Op     string
	Value  interface{}
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("hal: invalid argument to %s: %v (%s)", e.Op, e.Value, e.Reason)
}

// BoardNotFoundError reports a group lookup for an unknown serial number.
type BoardNotFoundError struct {
	Kind   string
	Serial string
}

func (e *BoardNotFoundError) Error() string {
	return fmt.Sprintf("hal: no %s board with serial %q", e.Kind, e.Serial)
}

// BoardCountError reports a Singular call on a group that does not hold
// exactly one board. Count lets callers distinguish none from many.
type BoardCountError struct {
	Kind  string
	Count int
}

func (e *BoardCountError) Error() string {
	return fmt.Sprintf(
		"hal: expected exactly one %s board to be connected, found %d",
		e.Kind, e.Count,
	)
}

// TimeoutError reports a transport call that exceeded its configured
// timeout. Retrying is the caller's decision; the core never retries.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("hal: %s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// TransportError reports a lower-level transport failure (device gone, I/O
// error). The affected board should be considered invalid and re-discovered.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hal: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AmbiguityError reports two candidates with the same serial number during
// one discovery call. The whole discovery call fails.
type AmbiguityError struct {
	Kind   string
	Serial string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf(
		"hal: discovery found multiple %s boards with serial %q",
		e.Kind, e.Serial,
	)
}

// CapabilityError reports a backend that does not implement an interface
// required by the components of the board it was handed to.
type CapabilityError struct {
	Board      string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("hal: backend for %s does not implement %s", e.Board, e.Capability)
}

// SafetyError aggregates the per-component failures of a best-effort
// MakeSafe pass. It is only returned when at least one component failed;
// every other component was still attempted.
type SafetyError struct {
	Errs []error
}

func (e *SafetyError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("hal: %d failure(s) while making safe: %s",
		len(e.Errs), strings.Join(msgs, "; "))
}

func (e *SafetyError) Unwrap() []error { return e.Errs }

// Safety folds collected MakeSafe failures into a *SafetyError, or nil
// when there were none.
func Safety(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &SafetyError{Errs: errs}
}
