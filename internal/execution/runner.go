package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"yamltests/internal/config"
	"yamltests/internal/domain"
)

// Sink receives the output of a test whose output is hidden
type Sink interface {
	io.Writer
	Finish() error
}

// SinkFactory creates a Sink for the named test
type SinkFactory func(name string) Sink

// Runner executes a test's command lines as one shell pipeline
type Runner struct {
	config *config.Config
	out    io.Writer
	hidden SinkFactory
}

// NewRunner creates a new Runner. Visible output is streamed to out; hidden
// output goes to a sink from hidden, or nowhere when hidden is nil.
func NewRunner(cfg *config.Config, out io.Writer, hidden SinkFactory) *Runner {
	return &Runner{config: cfg, out: out, hidden: hidden}
}

// Run executes the test and waits for it without a timeout. A non-zero exit
// is reported in the result; an error means the shell could not be run.
func (r *Runner) Run(ctx context.Context, test domain.Test) (domain.RunResult, error) {
	command := test.CommandLine()
	cmd := exec.CommandContext(ctx, r.config.Shell, "-c", command)

	// Set environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env,
		"YAML_TESTS=1",
		fmt.Sprintf("YAML_TESTS_NAME=%s", test.Name),
		fmt.Sprintf("YAML_TESTS_COMMAND=%s", command),
		fmt.Sprintf("YAML_TESTS_DESCRIPTION=%s", test.Label()),
		fmt.Sprintf("YAML_TESTS_RUN_ID=%s", r.config.RunID),
	)

	// Set working directory
	cmd.Dir = r.config.WorkingDir

	var captured bytes.Buffer
	var sink Sink
	var w io.Writer
	if test.ShowOutput {
		w = io.MultiWriter(r.out, &captured)
	} else if r.hidden != nil {
		sink = r.hidden(test.Name)
		w = sink
	} else {
		w = io.Discard
	}
	// One writer for both streams keeps them in order
	cmd.Stdout = w
	cmd.Stderr = w

	started := time.Now()
	runErr := cmd.Run()
	duration := time.Since(started)

	if sink != nil {
		_ = sink.Finish()
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return domain.RunResult{}, fmt.Errorf("running test %s: %w", test.Name, runErr)
		}
		// -1 when killed by a signal
		exitCode = exitErr.ExitCode()
	}

	result := domain.RunResult{
		ExitCode:     exitCode,
		Started:      started,
		Duration:     duration,
		OutputHidden: !test.ShowOutput,
	}
	if test.ShowOutput {
		result.Output = captured.String()
	} else {
		result.Output = domain.OutputHidden
	}
	return result, nil
}
