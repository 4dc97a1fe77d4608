package exam

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by the Manager for unknown attempt ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionEnded is wrapped in an InvalidOperationError when a terminated
// session is mutated.
var ErrSessionEnded = errors.New("session has ended")

// ConfigurationError means an assessment configuration could not be
// resolved to a question set. No session exists when it is returned.
type ConfigurationError struct {
	Config AssessmentConfig
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Config.SectionCode != "" {
		return fmt.Sprintf("configuration %s/%s: %v", e.Config.Mode, e.Config.SectionCode, e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Config.Mode, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InvalidOperationError rejects a request without touching session state.
type InvalidOperationError struct {
	Op  string
	Err error
}

func (e *InvalidOperationError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *InvalidOperationError) Unwrap() error { return e.Err }

func invalidOp(op string, format string, args ...any) error {
	return &InvalidOperationError{Op: op, Err: fmt.Errorf(format, args...)}
}

// StorageError reports that a computed result could not be saved. The
// result accompanying it is still valid.
type StorageError struct {
	AttemptID string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("persist attempt %s: %v", e.AttemptID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
