package gateway

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable matches any BackendUnavailableError via errors.Is.
var ErrBackendUnavailable = errors.New("backend unavailable")

// TransportError reports that no response arrived: connection refused,
// DNS failure or a timeout before the headers.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports that a response arrived but its body could not be
// read in full or did not match the expected shape: a syntax error, a
// missing or mistyped field, or a key in the wrong case.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BackendUnavailableError is returned by operations that have no sensible
// default when the backend cannot be reached.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend error: %v", e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBackendUnavailable.
func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}
