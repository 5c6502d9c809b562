// Package output formats command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Stdout and Stderr are swapped out by tests
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Error prints an error message to stderr
func Error(format string, args ...any) {
	fmt.Fprintln(Stderr, errorStyle.Render("ERROR:")+" "+fmt.Sprintf(format, args...))
}

// Warning prints a warning to stderr
func Warning(format string, args ...any) {
	fmt.Fprintln(Stderr, warningStyle.Render("WARNING:")+" "+fmt.Sprintf(format, args...))
}

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Fprintln(Stdout, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Info prints a muted informational line
func Info(format string, args ...any) {
	fmt.Fprintln(Stdout, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// JSON writes v as indented JSON
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table is a column-aligned table with a bold header row
type Table struct {
	tbl *uitable.Table
}

// NewTable starts a table with the given headers
func NewTable(headers ...any) *Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	if len(headers) > 0 {
		bold := color.New(color.Bold)
		cells := make([]any, len(headers))
		for i, h := range headers {
			cells[i] = bold.Sprint(h)
		}
		tbl.AddRow(cells...)
	}
	return &Table{tbl: tbl}
}

// Row appends a row
func (t *Table) Row(cells ...any) *Table {
	t.tbl.AddRow(cells...)
	return t
}

// RightAlign right-aligns column col
func (t *Table) RightAlign(col int) *Table {
	t.tbl.RightAlign(col)
	return t
}

// String renders the table
func (t *Table) String() string {
	return t.tbl.String()
}

// Print writes the table to Stdout
func (t *Table) Print() {
	fmt.Fprintln(Stdout, t.tbl)
}
