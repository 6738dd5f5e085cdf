package iostreams

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

// TablePrinter renders rows to IOStreams.Out.
// With colors enabled the header is bold and columns are padded by their
// visible width, so styled cells line up. Otherwise a plain tabwriter is used.
type TablePrinter struct {
	ios     *IOStreams
	headers []string
	rows    [][]string
}

// NewTablePrinter creates a table with the given column headers.
func (s *IOStreams) NewTablePrinter(headers ...string) *TablePrinter {
	return &TablePrinter{ios: s, headers: headers}
}

// AddRow appends a row. Missing columns render empty.
func (tp *TablePrinter) AddRow(cols ...string) {
	tp.rows = append(tp.rows, cols)
}

// Len returns the number of data rows.
func (tp *TablePrinter) Len() int {
	return len(tp.rows)
}

// Render writes the table.
func (tp *TablePrinter) Render() error {
	if len(tp.headers) == 0 {
		return nil
	}
	if tp.ios.ColorEnabled() {
		return tp.renderStyled()
	}
	return tp.renderPlain()
}

func (tp *TablePrinter) renderPlain() error {
	w := tabwriter.NewWriter(tp.ios.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(tp.headers, "\t"))
	for _, row := range tp.rows {
		fmt.Fprintln(w, strings.Join(tp.normalizeRow(row), "\t"))
	}
	return w.Flush()
}

func (tp *TablePrinter) renderStyled() error {
	widths := make([]int, len(tp.headers))
	for i, h := range tp.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range tp.rows {
		for i, col := range tp.normalizeRow(row) {
			widths[i] = max(widths[i], lipgloss.Width(col))
		}
	}

	header := lipgloss.NewStyle().Bold(true)
	line := func(cols []string, style *lipgloss.Style) error {
		parts := make([]string, len(cols))
		for i, col := range cols {
			cell := lipgloss.NewStyle().Width(widths[i])
			if style != nil {
				cell = cell.Inherit(*style)
			}
			parts[i] = cell.Render(col)
		}
		_, err := fmt.Fprintln(tp.ios.Out, strings.TrimRight(strings.Join(parts, "  "), " "))
		return err
	}

	if err := line(tp.headers, &header); err != nil {
		return err
	}
	for _, row := range tp.rows {
		if err := line(tp.normalizeRow(row), nil); err != nil {
			return err
		}
	}
	return nil
}

// normalizeRow pads or truncates a row to the header count.
func (tp *TablePrinter) normalizeRow(row []string) []string {
	cols := make([]string, len(tp.headers))
	copy(cols, row)
	return cols
}
