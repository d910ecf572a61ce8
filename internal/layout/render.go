package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/items"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Styles for the table view
var (
	groupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("241"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// TableOptions tunes table rendering.
type TableOptions struct {
	Headers bool                   // print a column header row under each group label
	Marked  func(domain.Item) bool // rows for which Marked is true get a "*" marker
}

// Write renders groups in the requested format. Widths are only used by the
// table format and must have been computed over every group beforehand.
func Write(w io.Writer, format string, groups []Group, cols []Column, widths Widths, opts TableOptions) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return RenderTable(w, groups, cols, widths, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(groups); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// RenderTable writes one table per group using the shared widths.
func RenderTable(w io.Writer, groups []Group, cols []Column, widths Widths, opts TableOptions) error {
	var b strings.Builder

	for gi, g := range groups {
		if g.Label != "" {
			if gi > 0 {
				b.WriteString("\n")
			}
			b.WriteString(groupHeaderStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Items))))
			b.WriteString("\n")
		}
		if opts.Headers {
			b.WriteString(headerRow(cols, widths))
			b.WriteString("\n")
		}
		for _, item := range g.Items {
			marked := opts.Marked != nil && opts.Marked(item)
			b.WriteString(row(item, cols, widths, marked))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func headerRow(cols []Column, widths Widths) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = columnHeaderStyle.Render(fit(col.Header, widths[col.Field]))
	}
	return strings.Repeat(" ", markerWidth) + strings.Join(cells, strings.Repeat(" ", columnGap))
}

func row(item domain.Item, cols []Column, widths Widths, marked bool) string {
	prefix := strings.Repeat(" ", markerWidth)
	if marked {
		prefix = markerStyle.Render("*") + " "
	}

	cells := make([]string, len(cols))
	for i, col := range cols {
		width := widths[col.Field]
		switch items.Canonical(col.Field) {
		case items.FieldLabels:
			cells[i] = labelCell(item, width)
		case items.FieldNumber:
			cells[i] = dimStyle.Render(fit(CellText(item, col.Field), width))
		default:
			cells[i] = fit(CellText(item, col.Field), width)
		}
	}
	return prefix + strings.Join(cells, strings.Repeat(" ", columnGap))
}

// labelCell colors each label with its repository color when the whole list fits.
func labelCell(item domain.Item, width int) string {
	plain := CellText(item, items.FieldLabels)
	if runewidth.StringWidth(plain) > width {
		return fit(plain, width)
	}
	parts := make([]string, len(item.Labels))
	for i, l := range item.Labels {
		parts[i] = l.Name
		if l.Color != "" {
			parts[i] = lipgloss.NewStyle().Foreground(lipgloss.Color("#" + l.Color)).Render(l.Name)
		}
	}
	return padding.String(strings.Join(parts, ", "), uint(width))
}

// fit truncates s to width display cells and pads it to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = truncate.StringWithTail(s, uint(width), "…")
	return padding.String(s, uint(width))
}
