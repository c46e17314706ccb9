package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yamltests/internal/domain"
)

func TestFailureViewer_FormatFailureDetails(t *testing.T) {
	viewer := NewFailureViewer("ci-1")

	tests := []struct {
		name     string
		row      ResultRow
		contains []string
		excludes []string
	}{
		{
			name: "output with colours and brackets",
			row: ResultRow{
				Name:    "unit",
				Command: "phpunit",
				Outcome: domain.OutcomeFailed,
				Output:  "\x1b[31mFAIL\x1b[0m [red] line",
			},
			contains: []string{"Failed: unit", "phpunit", "FAIL"},
			excludes: []string{"\x1b[31m"},
		},
		{
			name:     "hidden output",
			row:      ResultRow{Name: "secret", Outcome: domain.OutcomeFailed, OutputHidden: true},
			contains: []string{domain.OutputHidden},
		},
		{
			name:     "no output",
			row:      ResultRow{Name: "quiet", Outcome: domain.OutcomeFailedIgnored},
			contains: []string{"(no output)", "Failed (Ignoring)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := viewer.formatFailureDetails(tt.row)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestFailureViewer_FormatFailureStats(t *testing.T) {
	viewer := NewFailureViewer("ci-1")
	out := viewer.formatFailureStats(ResultRow{Name: "unit", ExitCode: 3, Duration: 1500 * time.Millisecond})

	assert.Contains(t, out, "unit")
	assert.Contains(t, out, "exit:[white] 3")
	assert.Contains(t, out, "ci-1")
	assert.Contains(t, out, "1.5s")
}

func TestFailureViewer_ViewWithoutFailures(t *testing.T) {
	assert.NoError(t, NewFailureViewer("ci-1").View(nil))
}
