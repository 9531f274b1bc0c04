package wantlist

import "fmt"

// ValidationError rejects an operation before any resolution is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// CapacityError rejects an add that would push a list past MaxEntries.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("your want list is full (%d entries max)", e.Limit)
}

// NoMatchError rejects a remove that matched nothing in the list.
type NoMatchError struct {
	Message string
}

func (e *NoMatchError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func noMatch(format string, args ...interface{}) *NoMatchError {
	return &NoMatchError{Message: fmt.Sprintf(format, args...)}
}
