package cli

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess = 0 // All tests passed
	ExitFailure = 1 // A test failed, or the filter matched nothing
	ExitFatal   = 2 // Configuration, credential or API error
)

// ExitError carries the exit code a command should end with. An ExitError
// without a message ends the process quietly.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether nothing should be printed for the error
func (e *ExitError) Silent() bool {
	return e.Message == "" && e.Err == nil
}

// Fail ends the process with ExitFailure without printing anything
func Fail() *ExitError {
	return &ExitError{Code: ExitFailure}
}

// Fatal wraps err so the process ends with ExitFatal
func Fatal(err error) *ExitError {
	return &ExitError{Code: ExitFatal, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError are fatal.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}
