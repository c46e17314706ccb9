package ui

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"yamltests/internal/domain"
)

// Viewer displays failed tests interactively
type Viewer interface {
	View(failures []ResultRow) error
}

// FailureViewer is the tview implementation of Viewer
type FailureViewer struct {
	hostname string
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(hostname string) *FailureViewer {
	return &FailureViewer{hostname: hostname}
}

// View shows the failures in a list with the selected test's output on the
// right. It returns when the user quits.
func (fv *FailureViewer) View(failures []ResultRow) error {
	if len(failures) == 0 {
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i, row := range failures {
		list.AddItem(fv.formatListItem(i, row), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetScrollable(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsView, 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" Failed tests (%d) | ↑↓ navigate, → view output, ← back, q or Ctrl+C to exit ", len(failures)))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		statsView.SetText(fv.formatFailureStats(failures[index]))
		detailsView.SetText(fv.formatFailureDetails(failures[index])).ScrollToBeginning()
	}

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (fv *FailureViewer) formatListItem(index int, row ResultRow) string {
	if row.Outcome == domain.OutcomeFailedIgnored {
		return fmt.Sprintf("[gray]%d. %s (ignored)[white]", index+1, tview.Escape(row.Name))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(row.Name))
}

// formatFailureStats formats the header above a failure's output
func (fv *FailureViewer) formatFailureStats(row ResultRow) string {
	return fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]  [cyan]exit:[white] %d  [cyan]on:[white] %s  [cyan]in:[white] %s\n",
		tview.Escape(row.Name), row.ExitCode, tview.Escape(fv.hostname), formatDuration(row.Duration))
}

// formatFailureDetails formats a failure's command and output using tview colour tags
func (fv *FailureViewer) formatFailureDetails(row ResultRow) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✘ %s: %s[white]\n\n", row.Outcome, tview.Escape(row.Name))
	fmt.Fprintf(&builder, "[yellow]Command:[white]\n%s\n\n", tview.Escape(row.Command))

	fmt.Fprintf(&builder, "[yellow]Output:[white]\n")
	switch {
	case row.OutputHidden:
		fmt.Fprintf(&builder, "[gray]%s[white]\n", domain.OutputHidden)
	case strings.TrimSpace(row.Output) == "":
		fmt.Fprintf(&builder, "[gray](no output)[white]\n")
	default:
		builder.WriteString(tview.Escape(stripansi.Strip(row.Output)))
	}
	return builder.String()
}
