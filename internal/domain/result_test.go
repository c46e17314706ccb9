package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		test     Test
		result   RunResult
		expected Outcome
		state    StatusState
	}{
		{
			name:     "zero exit passes",
			test:     Test{Name: "lint"},
			result:   RunResult{ExitCode: 0},
			expected: OutcomePassed,
			state:    StateSuccess,
		},
		{
			name:     "non-zero exit fails",
			test:     Test{Name: "lint"},
			result:   RunResult{ExitCode: 2},
			expected: OutcomeFailed,
			state:    StateFailure,
		},
		{
			name:     "ignored failure reports success",
			test:     Test{Name: "build", IgnoreFailure: true},
			result:   RunResult{ExitCode: 1},
			expected: OutcomeFailedIgnored,
			state:    StateSuccess,
		},
		{
			name:     "ignore flag on a passing test",
			test:     Test{Name: "build", IgnoreFailure: true},
			result:   RunResult{ExitCode: 0},
			expected: OutcomePassed,
			state:    StateSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(tt.test, tt.result)
			assert.Equal(t, tt.expected, outcome)
			assert.Equal(t, tt.state, outcome.State())
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Passed", OutcomePassed.String())
	assert.Equal(t, "Failed", OutcomeFailed.String())
	assert.Equal(t, "Failed (Ignoring)", OutcomeFailedIgnored.String())
}

func TestRunResult_CommentOutput(t *testing.T) {
	assert.Equal(t, "boom", RunResult{Output: "boom"}.CommentOutput())
	assert.Equal(t, OutputHidden, RunResult{Output: "secret", OutputHidden: true}.CommentOutput())
}

func TestTest_Label(t *testing.T) {
	assert.Equal(t, "lint", Test{Name: "lint"}.Label())
	assert.Equal(t, "Run the linter", Test{Name: "lint", Description: "Run the linter"}.Label())
}

func TestTest_CommandLine(t *testing.T) {
	test := Test{Name: "build", Command: []string{"make deps", "make build"}}
	assert.Equal(t, "make deps && make build", test.CommandLine())
	assert.Equal(t, "make deps\nmake build", test.CommandView())
}
