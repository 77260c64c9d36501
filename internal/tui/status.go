package tui

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Status prints one-line messages between menus
type Status struct {
	out io.Writer
}

func NewStatus(out io.Writer) *Status {
	return &Status{out: out}
}

// Warn reports a non-fatal condition, such as an empty list
func (s *Status) Warn(msg string) {
	fmt.Fprintln(s.out, errorStyle.Render("⚠️  "+msg))
}

// Info prints a dimmed progress note
func (s *Status) Info(msg string) {
	fmt.Fprintln(s.out, dimStyle.Render(msg))
}

// Success prints a completed step
func (s *Status) Success(msg string) {
	fmt.Fprintln(s.out, successStyle.Render(msg))
}

// PrintFatal writes the error line shown before the program exits
func PrintFatal(out io.Writer, err error) {
	fmt.Fprintln(out, fatalStyle.Render("❌ Error: ")+err.Error())
}

// WaitForEnter keeps a freshly opened console window up until the user
// presses Enter. EOF counts as Enter.
func WaitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, dimStyle.Render("🔚 Press Enter to exit..."))
	bufio.NewReader(in).ReadString('\n')
}

// RenderTable lays rows out under headers for the listing commands
func RenderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
