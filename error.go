package matcha

import (
	"fmt"

	"github.com/pkg/errors"
)

// FunctionConflictError indicates that a function with the same name has
// already been registered with the emulator. Probes that register
// functions tolerate this error so that they can be re-run against a
// dirty emulator.
type FunctionConflictError struct {
	// FunctionName is the name of the already-registered function.
	FunctionName string
}

// NewFunctionConflictError returns a new error indicating that the
// function with the given name is already registered.
func NewFunctionConflictError(name string) *FunctionConflictError {
	return &FunctionConflictError{FunctionName: name}
}

// Error returns the formatted error message.
func (e *FunctionConflictError) Error() string {
	return fmt.Sprintf("function '%s' is already registered", e.FunctionName)
}

// IsFunctionConflictError returns whether the error or any error it wraps
// is due to a function registration conflict.
func IsFunctionConflictError(err error) bool {
	if err == nil {
		return false
	}
	var conflictErr *FunctionConflictError
	return errors.As(err, &conflictErr)
}
