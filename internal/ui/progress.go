package ui

import (
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Spinner shows activity for a test whose output is hidden. Output written
// to it only advances the byte counter and is otherwise dropped.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to w
func NewSpinner(w io.Writer, label string) *Spinner {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(color.CyanString(label)),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowBytes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Spinner{bar: bar}
}

// Write counts hidden output
func (s *Spinner) Write(p []byte) (int, error) {
	return s.bar.Write(p)
}

// Finish clears the spinner
func (s *Spinner) Finish() error {
	return s.bar.Finish()
}
