package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"yamltests/internal/domain"
)

// Formatter renders manifest listings
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintTestList prints the tests of a manifest with their commands. The
// title is printed above the table so it is never wrapped.
func (f *Formatter) PrintTestList(title string, manifest *domain.Manifest) {
	fmt.Fprintf(f.out, "\n%s\n", color.CyanString(title))

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.AppendHeader(table.Row{"Test", "Command"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Command", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, test := range manifest.Tests {
		t.AppendRow(table.Row{test.Name, test.CommandView()})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// FoundTitle is the title of the full manifest listing
func FoundTitle(testsFile string) string {
	return fmt.Sprintf("Tests found in %s", testsFile)
}

// FilteredTitle is the title of the listing after filtering
func FilteredTitle(filter string) string {
	return fmt.Sprintf("Tests to run based on filter '%s'", filter)
}
