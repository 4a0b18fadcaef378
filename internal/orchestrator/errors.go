package orchestrator

import "fmt"

// ValidationError reports bad input. No gateway call and no persistence happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError reports that the transaction could not be written.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "transaction could not be recorded: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
