package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"yamltests/internal/domain"
)

// ResultRow is one finished test
type ResultRow struct {
	Name         string
	Command      string
	Outcome      domain.Outcome
	ExitCode     int
	Duration     time.Duration
	Output       string
	OutputHidden bool
}

// Results accumulates finished tests in run order and decides the exit code
type Results struct {
	rows []ResultRow
}

// NewResults creates an empty Results
func NewResults() *Results {
	return &Results{}
}

// Add records a finished test and returns its outcome
func (r *Results) Add(test domain.Test, result domain.RunResult) domain.Outcome {
	outcome := domain.Classify(test, result)
	r.rows = append(r.rows, ResultRow{
		Name:         test.Name,
		Command:      test.CommandView(),
		Outcome:      outcome,
		ExitCode:     result.ExitCode,
		Duration:     result.Duration,
		Output:       result.Output,
		OutputHidden: result.OutputHidden,
	})
	return outcome
}

// Rows returns all recorded rows
func (r *Results) Rows() []ResultRow {
	return r.rows
}

// Failures returns the rows that did not pass, ignored failures included
func (r *Results) Failures() []ResultRow {
	var failed []ResultRow
	for _, row := range r.rows {
		if row.Outcome != domain.OutcomePassed {
			failed = append(failed, row)
		}
	}
	return failed
}

// Failed reports whether any test failed without ignore-failure
func (r *Results) Failed() bool {
	for _, row := range r.rows {
		if row.Outcome == domain.OutcomeFailed {
			return true
		}
	}
	return false
}

// ExitCode returns 1 if any test failed without ignore-failure, otherwise 0
func (r *Results) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Render prints the summary table
func (r *Results) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Test Results")
	t.AppendHeader(table.Row{"Test", "Command", "Duration", "Result"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Command", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, row := range r.rows {
		t.AppendRow(table.Row{row.Name, row.Command, formatDuration(row.Duration), OutcomeLabel(row.Outcome)})
	}

	if r.Failed() {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()
}

// OutcomeLabel returns the glyph and label for an outcome
func OutcomeLabel(o domain.Outcome) string {
	if o == domain.OutcomePassed {
		return color.GreenString("✔") + " " + o.String()
	}
	return color.RedString("✘") + " " + o.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
