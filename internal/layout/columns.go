package layout

import (
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/items"
	"github.com/mattn/go-runewidth"
)

// Layout constants
const (
	TitleMinWidth    = 20
	TitleMaxWidth    = 60
	DefaultTermWidth = 120
	columnGap        = 2 // spaces between columns
	markerWidth      = 2 // row marker ("* ") in front of every row
)

// DefaultColumns is the column set used when none is configured.
var DefaultColumns = []string{"number", "title", "status", "assignees", "labels"}

// Column describes one table column and its width bounds.
type Column struct {
	Field  string
	Header string
	Min    int
	Max    int
}

// IsTitle reports whether the column absorbs the remaining terminal width.
func (c Column) IsTitle() bool {
	return items.Canonical(c.Field) == items.FieldTitle
}

var builtinBounds = map[string][2]int{
	items.FieldNumber:    {3, 7},
	items.FieldStatus:    {6, 16},
	items.FieldType:      {4, 12},
	items.FieldAssignees: {9, 20},
	items.FieldLabels:    {6, 30},
	items.FieldRepo:      {4, 24},
	items.FieldProject:   {7, 20},
	items.FieldState:     {5, 8},
}

// NewColumn builds a column for a built-in or custom field.
// Custom fields are bounded to [6, 24].
func NewColumn(field string) Column {
	field = strings.TrimSpace(field)
	col := Column{Field: field, Header: items.HeaderName(field), Min: 6, Max: 24}
	key := items.Canonical(field)
	if key == items.FieldTitle {
		col.Min, col.Max = TitleMinWidth, TitleMaxWidth
	}
	if b, ok := builtinBounds[key]; ok {
		col.Min, col.Max = b[0], b[1]
	}
	return col
}

// Columns builds columns for the given field names, skipping blanks and duplicates.
func Columns(fields []string) []Column {
	seen := make(map[string]bool)
	cols := make([]Column, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		key := items.Canonical(f)
		if key == "" {
			key = strings.ToLower(f)
		}
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		cols = append(cols, NewColumn(f))
	}
	return cols
}

// CellText is the plain text of a table cell. Absent values render empty,
// drafts render "draft" in the number column.
func CellText(item domain.Item, field string) string {
	if items.Canonical(field) == items.FieldNumber {
		if item.Number == 0 {
			return "draft"
		}
		return items.Display(item, field)
	}
	vals, ok := items.Values(item, field)
	if !ok {
		return ""
	}
	return strings.Join(vals, ", ")
}

// Widths maps a column field to its rendered width.
type Widths map[string]int

// ComputeWidths measures every column over the full item set so that tables
// of different groups line up. Each column is max(header, widest value)
// clamped to its bounds; the title column takes what is left of termWidth
// after the other columns and gutters, clamped to [TitleMinWidth, TitleMaxWidth].
func ComputeWidths(list []domain.Item, cols []Column, termWidth int) Widths {
	if termWidth <= 0 {
		termWidth = DefaultTermWidth
	}

	widths := make(Widths, len(cols))
	used := markerWidth
	hasTitle := false

	for _, col := range cols {
		if col.IsTitle() {
			hasTitle = true
			continue
		}
		w := runewidth.StringWidth(col.Header)
		for _, item := range list {
			if cw := runewidth.StringWidth(CellText(item, col.Field)); cw > w {
				w = cw
			}
		}
		w = clamp(w, col.Min, col.Max)
		widths[col.Field] = w
		used += w
	}

	if len(cols) > 1 {
		used += columnGap * (len(cols) - 1)
	}

	if hasTitle {
		for _, col := range cols {
			if col.IsTitle() {
				widths[col.Field] = clamp(termWidth-used, TitleMinWidth, TitleMaxWidth)
			}
		}
	}

	return widths
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
