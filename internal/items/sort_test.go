package items

import (
	"testing"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/stretchr/testify/assert"
)

func statusItem(title string, idx int) domain.Item {
	return domain.Item{Title: title, Status: "S" + title, StatusIndex: idx}
}

func statusIndexes(items []domain.Item) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.StatusIndex
	}
	return out
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []SortKey{
		{Field: "status"},
		{Field: "number", Ascending: true},
		{Field: "Priority"},
	}, ParseSort(" status , -number,,Priority"))
	assert.Empty(t, ParseSort(""))
	assert.Empty(t, ParseSort("-"))
}

// No prefix means descending and "-" means ascending. This is intentional.
func TestSort_DirectionConvention(t *testing.T) {
	items := []domain.Item{statusItem("a", 2), statusItem("b", 0), statusItem("c", 1)}

	assert.Equal(t, []int{2, 1, 0}, statusIndexes(Sort(items, ParseSort("status"))))
	assert.Equal(t, []int{0, 1, 2}, statusIndexes(Sort(items, ParseSort("-status"))))
	assert.Equal(t, []int{2, 0, 1}, statusIndexes(items), "input order must be untouched")
}

func TestSort_StableOnEqualKey(t *testing.T) {
	items := []domain.Item{
		{Title: "first", Repo: "acme/web"},
		{Title: "second", Repo: "acme/web"},
		{Title: "third", Repo: "acme/web"},
	}

	assert.Equal(t, []string{"first", "second", "third"}, titles(Sort(items, ParseSort("repo"))))
	assert.Equal(t, []string{"first", "second", "third"}, titles(Sort(items, ParseSort("-repo"))))
}

func TestSort_NullsLastInBothDirections(t *testing.T) {
	items := []domain.Item{
		{Title: "none"},
		{Title: "low", Fields: map[string]domain.FieldValue{"Priority": domain.SelectValue("Low")}},
		{Title: "none2", StatusIndex: -1},
		{Title: "high", Fields: map[string]domain.FieldValue{"Priority": domain.SelectValue("High")}},
	}

	for _, spec := range []string{"priority", "-priority"} {
		sorted := Sort(items, ParseSort(spec))
		seenNull := false
		for _, item := range sorted {
			present := SortValue(item, "priority").Present
			if !present {
				seenNull = true
				continue
			}
			assert.False(t, seenNull, "%s: non-null item after a null one", spec)
		}
	}

	assert.Equal(t, []string{"high", "low", "none", "none2"}, titles(Sort(items, ParseSort("-priority"))))
	assert.Equal(t, []string{"low", "high", "none", "none2"}, titles(Sort(items, ParseSort("priority"))))
}

func TestSort_MultiKey(t *testing.T) {
	items := []domain.Item{
		{Title: "b", Number: 3, Status: "Todo", StatusIndex: 0},
		{Title: "a", Number: 1, Status: "Done", StatusIndex: 2},
		{Title: "c", Number: 2, Status: "Todo", StatusIndex: 0},
	}

	sorted := Sort(items, ParseSort("-status,-number"))
	assert.Equal(t, []string{"c", "b", "a"}, titles(sorted))
}

func TestSort_NumericCustomField(t *testing.T) {
	items := []domain.Item{
		{Title: "ten", Fields: map[string]domain.FieldValue{"Estimate": domain.NumberValue(10)}},
		{Title: "two", Fields: map[string]domain.FieldValue{"Estimate": domain.NumberValue(2)}},
	}
	assert.Equal(t, []string{"two", "ten"}, titles(Sort(items, ParseSort("-estimate"))))
}

func TestSort_CollatedTitles(t *testing.T) {
	items := []domain.Item{{Title: "banana"}, {Title: "Apple"}, {Title: "cherry"}}
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(Sort(items, ParseSort("-title"))))
}

func TestUnresolvedKeys(t *testing.T) {
	items := createTestItems()
	keys := ParseSort("status,-priority,sprint")
	assert.Equal(t, []SortKey{{Field: "sprint"}}, UnresolvedKeys(items, keys))
}
