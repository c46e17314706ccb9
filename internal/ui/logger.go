package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a console message. It picks the glyph and colour.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
	LevelPending
	LevelDebug
)

const bannerWidth = 60

var levelStyles = map[Level]struct {
	glyph string
	color *color.Color
}{
	LevelSuccess: {"✔", color.New(color.FgGreen)},
	LevelWarning: {"!", color.New(color.FgYellow)},
	LevelError:   {"✘", color.New(color.FgRed)},
	LevelPending: {"⏺", color.New(color.FgYellow)},
	LevelDebug:   {"›", color.New(color.FgHiBlack)},
}

// Logger writes levelled console messages
type Logger struct {
	out     io.Writer
	verbose bool
}

// NewLogger creates a Logger writing to out. Debug messages are only
// written when verbose is set.
func NewLogger(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, verbose: verbose}
}

// Writer returns the logger's output
func (l *Logger) Writer() io.Writer {
	return l.out
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

// SetVerbose enables or disables debug output
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// Log writes one message at the given level
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if level == LevelDebug && !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	style, ok := levelStyles[level]
	if !ok {
		fmt.Fprintf(l.out, " %s\n", msg)
		return
	}
	fmt.Fprintf(l.out, " %s %s\n", style.color.Sprint(style.glyph), msg)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

func (l *Logger) Success(format string, args ...interface{}) {
	l.Log(LevelSuccess, format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Field prints a "label: value" line with the value highlighted
func (l *Logger) Field(label, value string) {
	fmt.Fprintf(l.out, " %s: %s\n", label, color.YellowString(value))
}

// Title prints a boxed banner
func (l *Logger) Title(text string) {
	cyan := color.New(color.FgCyan)
	inner := bannerWidth - 2
	pad := inner - len([]rune(text))
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	cyan.Fprintf(l.out, "\n╔%s╗\n", strings.Repeat("═", inner))
	cyan.Fprintf(l.out, "║%s%s%s║\n", strings.Repeat(" ", left), text, strings.Repeat(" ", pad-left))
	cyan.Fprintf(l.out, "╚%s╝\n\n", strings.Repeat("═", inner))
}

// Section prints a section heading
func (l *Logger) Section(text string) {
	fmt.Fprintf(l.out, "\n%s\n%s\n", color.CyanString(text), color.CyanString(strings.Repeat("─", len([]rune(text)))))
}

// Newline prints an empty line
func (l *Logger) Newline() {
	fmt.Fprintln(l.out)
}
