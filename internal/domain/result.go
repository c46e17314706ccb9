package domain

import "time"

// OutputHidden replaces captured output for tests with show-output disabled
const OutputHidden = "OUTPUT HIDDEN"

// RunResult represents the result of executing one test
type RunResult struct {
	ExitCode     int           // Exit code of the shell pipeline
	Output       string        // Combined stdout and stderr
	OutputHidden bool          // Output was neither streamed nor kept
	Started      time.Time     // When the shell was started
	Duration     time.Duration // Time taken to execute
}

// Passed reports whether the pipeline exited zero
func (r RunResult) Passed() bool {
	return r.ExitCode == 0
}

// CommentOutput returns the output to embed in a failure comment
func (r RunResult) CommentOutput() string {
	if r.OutputHidden {
		return OutputHidden
	}
	return r.Output
}

// Outcome classifies a finished test
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeFailed
	OutcomeFailedIgnored
)

// Classify derives the outcome of a test from its result
func Classify(t Test, r RunResult) Outcome {
	switch {
	case r.Passed():
		return OutcomePassed
	case t.IgnoreFailure:
		return OutcomeFailedIgnored
	default:
		return OutcomeFailed
	}
}

// String returns the label used in result tables
func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "Passed"
	case OutcomeFailedIgnored:
		return "Failed (Ignoring)"
	default:
		return "Failed"
	}
}

// State returns the commit status state reported for the outcome
func (o Outcome) State() StatusState {
	if o == OutcomeFailed {
		return StateFailure
	}
	return StateSuccess
}
