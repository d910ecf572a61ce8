// Package layout groups items for display, computes column widths shared by
// every group, and renders the result as a table, JSON or YAML.
package layout

import (
	"cmp"
	"slices"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/items"
)

// Group is a labelled run of items sharing one display value.
type Group struct {
	Label string        `json:"group" yaml:"group"`
	Items []domain.Item `json:"items" yaml:"items"`
}

// GroupBy partitions list by the display value of field, keeping item order
// within each group. Status groups follow the project's board order; other
// groups are ordered alphabetically. Placeholder groups ("No Priority",
// "Unassigned") always come last.
func GroupBy(list []domain.Item, field string) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, item := range list {
		label := items.Display(item, field)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	byStatus := items.Canonical(field) == items.FieldStatus
	collator := items.NewCollator()

	slices.SortStableFunc(groups, func(a, b Group) int {
		pa, pb := items.IsPlaceholder(a.Label), items.IsPlaceholder(b.Label)
		switch {
		case pa && !pb:
			return 1
		case !pa && pb:
			return -1
		case pa && pb:
			return 0
		}
		if byStatus {
			return cmp.Compare(a.Items[0].StatusIndex, b.Items[0].StatusIndex)
		}
		return collator.CompareString(a.Label, b.Label)
	})

	return groups
}

// Ungrouped wraps list in a single unlabelled group.
func Ungrouped(list []domain.Item) []Group {
	return []Group{{Items: list}}
}

// Flatten returns every item across groups in display order.
func Flatten(groups []Group) []domain.Item {
	var out []domain.Item
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}
