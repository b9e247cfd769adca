// Package ui renders engine results in the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/core/introspection"
	"github.com/satishbabariya/nlsql/internal/core/rowconv"
)

var (
	// Out receives regular output.
	Out io.Writer = os.Stdout
	// Err receives error output.
	Err io.Writer = os.Stderr
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	sqlStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(0, 1)
)

// PrintHeader prints a boxed title.
func PrintHeader(title string, subtitle string) {
	header := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)
	fmt.Fprintln(Out, header)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	fmt.Fprintln(Out, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintAppError prints err with its taxonomy kind.
func PrintAppError(err error) {
	p := apperr.ToPayload(err)
	PrintError("%s: %s", p.Err, p.Msg)
}

// PrintSQL prints a statement in a bordered block.
func PrintSQL(sql string) {
	fmt.Fprintln(Out, SecondaryStyle.Render(" sql "))
	fmt.Fprintln(Out, sqlStyle.Render(strings.TrimSpace(sql)))
}

// PrintJSON writes v as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TableData lays rows out as a header line followed by one line per row.
// Columns are taken from the first row; a later row missing a column gets an
// empty cell.
func TableData(rows []rowconv.Row) pterm.TableData {
	if len(rows) == 0 {
		return nil
	}
	headers := rows[0].Columns()
	data := pterm.TableData{headers}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, c := range headers {
			if v, ok := row.Get(c); ok {
				line[i] = cell(v)
			}
		}
		data = append(data, line)
	}
	return data
}

func cell(v rowconv.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}

// PrintRows prints rows as a table, or a note when there are none.
func PrintRows(rows []rowconv.Row) error {
	data := TableData(rows)
	if data == nil {
		fmt.Fprintln(Out, SecondaryStyle.Render("(no rows)"))
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(Out).Render(); err != nil {
		return err
	}
	fmt.Fprintln(Out, SecondaryStyle.Render(fmt.Sprintf("(%d rows)", len(rows))))
	return nil
}

// FactsMarkdown renders schema facts as one markdown table per table.
func FactsMarkdown(facts []introspection.SchemaFact) string {
	var b strings.Builder
	current := ""
	for _, f := range facts {
		if f.TableName != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = f.TableName
			fmt.Fprintf(&b, "## %s\n\n| column | type | constraint |\n|---|---|---|\n", f.TableName)
		}
		constraint := ""
		if f.ConstraintType != nil {
			constraint = *f.ConstraintType
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", f.ColumnName, f.DataType, constraint)
	}
	if current == "" {
		b.WriteString("_No tables found._\n")
	}
	return b.String()
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Out, out)
	return nil
}

// PrintSpinner starts a spinner on Out.
func PrintSpinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.WithWriter(Out).WithRemoveWhenDone(true).Start(message)
}

// Prompt returns the shell prompt for the given dialect.
func Prompt(dialect string) string {
	if dialect == "" {
		dialect = "unconfigured"
	}
	return color.New(color.FgCyan, color.Bold).Sprint("nlsql") +
		color.New(color.FgHiBlack).Sprintf("(%s)", strings.ToLower(dialect)) + "> "
}
