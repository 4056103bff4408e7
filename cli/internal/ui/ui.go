package ui

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/satishbabariya/litemodel/query"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	InfoColor      = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

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
			Foreground(InfoColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// PrintHeader prints a boxed title
func PrintHeader(title string, subtitle string) {
	fmt.Println(Header(title, subtitle))
	fmt.Println()
}

// Header renders title and subtitle in a rounded box at most 60 columns wide.
func Header(title string, subtitle string) string {
	width := 60
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(SuccessStyle.Render("✓ " + message))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(WarningStyle.Render("⚠ " + message))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(InfoStyle.Render("ℹ " + message))
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintRows prints query results as a table followed by a row count.
func PrintRows(rows []query.Row) error {
	if len(rows) == 0 {
		PrintWarning("no rows")
		return nil
	}
	headers, data := RowsTable(rows)
	if err := PrintTable(headers, data); err != nil {
		return err
	}
	Colors()["secondary"].Printf("%d row(s)\n", len(rows))
	return nil
}

// RowsTable lays rows out as table cells. Columns are sorted by name with
// "id" first; NULL values render as "NULL".
func RowsTable(rows []query.Row) ([]string, [][]string) {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				headers = append(headers, col)
			}
		}
	}
	sort.Slice(headers, func(i, j int) bool {
		if (headers[i] == "id") != (headers[j] == "id") {
			return headers[i] == "id"
		}
		return headers[i] < headers[j]
	})

	data := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(headers))
		for j, col := range headers {
			cells[j] = FormatValue(row[col])
		}
		data[i] = cells
	}
	return headers, data
}

// FormatValue renders one cell.
func FormatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	// Use glamour for markdown rendering
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Print(out)
	return nil
}

// Colors returns color printers for common use cases
func Colors() map[string]*color.Color {
	return map[string]*color.Color{
		"success":   color.New(color.FgGreen, color.Bold),
		"error":     color.New(color.FgRed, color.Bold),
		"warning":   color.New(color.FgYellow, color.Bold),
		"info":      color.New(color.FgCyan),
		"primary":   color.New(color.FgCyan, color.Bold),
		"secondary": color.New(color.FgHiBlack),
	}
}
