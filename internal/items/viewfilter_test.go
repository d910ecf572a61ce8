package items

import (
	"testing"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/stretchr/testify/assert"
)

func labeled(title string, names ...string) domain.Item {
	item := domain.Item{Title: title}
	for _, n := range names {
		item.Labels = append(item.Labels, domain.Label{Name: n})
	}
	return item
}

func TestParseViewFilter(t *testing.T) {
	tokens := ParseViewFilter(`status:Todo,"In Progress" -label:bug assignee:@me login`)

	assert.Equal(t, []Token{
		{Field: "status", Values: []string{"Todo", "In Progress"}},
		{Negate: true, Field: "label", Values: []string{"bug"}},
		{Field: "assignee", Values: []string{"@me"}},
		{Values: []string{"login"}},
	}, tokens)
}

func TestParseViewFilter_QuotedCommas(t *testing.T) {
	tokens := ParseViewFilter(`label:"needs review, urgent"`)
	assert.Equal(t, []Token{{Field: "label", Values: []string{"needs review, urgent"}}}, tokens)
}

func TestViewFilter_Negation(t *testing.T) {
	items := []domain.Item{
		labeled("bug only", "bug"),
		labeled("feature only", "feature"),
		labeled("both", "bug", "feature"),
	}

	pred := ViewFilter(ParseViewFilter("label:bug -label:feature"), "")
	assert.Equal(t, []string{"bug only"}, titles(Apply(items, pred)))
}

func TestViewFilter_MultipleValuesOr(t *testing.T) {
	items := createTestItems()
	pred := ViewFilter(ParseViewFilter(`status:todo,done`), "")
	assert.Equal(t, []string{"Fix login bug", "Ship release"}, titles(Apply(items, pred)))
}

func TestViewFilter_AtMe(t *testing.T) {
	items := createTestItems()
	tokens := ParseViewFilter("assignee:@me")

	pred := ViewFilter(tokens, "carol")
	assert.Equal(t, []string{"Ship release"}, titles(Apply(items, pred)))
	assert.Equal(t, "@me", tokens[0].Values[0], "expansion must not modify parsed tokens")
}

func TestViewFilter_UnknownField(t *testing.T) {
	items := createTestItems()

	positive := ViewFilter(ParseViewFilter("sprint:12"), "")
	assert.Empty(t, Apply(items, positive), "a positive token on a field no item has matches nothing")

	negated := ViewFilter(ParseViewFilter("-sprint:12"), "")
	assert.Equal(t, titles(items), titles(Apply(items, negated)), "a negated token on a field no item has matches everything")
}

func TestViewFilter_Qualifiers(t *testing.T) {
	items := createTestItems()

	tests := []struct {
		expr string
		want []string
	}{
		{"is:open", []string{"Fix login bug", "Add feature flag"}},
		{"is:closed", []string{"Ship release"}},
		{"is:pr", []string{"Add feature flag"}},
		{"is:draft", []string{"Draft idea"}},
		{"no:assignee", []string{"Draft idea"}},
		{"has:priority", []string{"Fix login bug", "Add feature flag"}},
		{"-no:status", []string{"Fix login bug", "Add feature flag", "Ship release"}},
		{"LOGIN", []string{"Fix login bug"}},
		{`title:"feature flag"`, []string{"Add feature flag"}},
		{"priority:high repo:acme/web", []string{"Fix login bug"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred := ViewFilter(ParseViewFilter(tt.expr), "")
			assert.Equal(t, tt.want, titles(Apply(items, pred)))
		})
	}
}

func TestViewFilter_Empty(t *testing.T) {
	items := createTestItems()
	pred := ViewFilter(ParseViewFilter("   "), "")
	assert.Len(t, Apply(items, pred), len(items))
}
