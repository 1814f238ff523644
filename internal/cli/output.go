package cli

import (
	"errors"
	"fmt"
)

// Exit codes reported by the phasesync binary.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // analysis failure (every requested pair failed)
	ExitCommandError = 2 // bad invocation (unreadable file, unknown channel, bad flag value)
)

// ExitError carries an exit code through cobra's error return so main
// can map command failures to distinct process statuses.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors report ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}
