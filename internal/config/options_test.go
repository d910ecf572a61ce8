package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOptions(t *testing.T) {
	base := ViewOptions{
		Slices:   []string{"label=bug"},
		Sort:     "number",
		GroupBy:  "status",
		Columns:  []string{"number", "title"},
		HideDone: Bool(true),
	}
	shortcut := ViewOptions{
		Slices:   []string{"repo=api", "label=bug"},
		GroupBy:  "assignees",
		Mine:     Bool(true),
		Statuses: []string{"Todo"},
	}
	flags := ViewOptions{
		Sort:     "-title",
		HideDone: Bool(false),
		Statuses: []string{"Todo", "In Progress"},
		Columns:  []string{"title", "labels"},
	}

	got := MergeOptions(base, shortcut, flags)

	assert.Equal(t, []string{"label=bug", "repo=api"}, got.Slices)
	assert.Equal(t, []string{"Todo", "In Progress"}, got.Statuses)
	assert.Equal(t, "-title", got.Sort)
	assert.Equal(t, "assignees", got.GroupBy)
	assert.Equal(t, []string{"title", "labels"}, got.Columns)
	require.NotNil(t, got.HideDone)
	assert.False(t, *got.HideDone, "an explicit false overrides an earlier true")
	assert.True(t, Flag(got.Mine))
	assert.Nil(t, got.Unassigned)
}

func TestMergeOptions_DoesNotAliasInputs(t *testing.T) {
	base := ViewOptions{Slices: []string{"a=1"}, Mine: Bool(true)}

	got := MergeOptions(base)
	got.Slices[0] = "changed"
	*got.Mine = false

	assert.Equal(t, "a=1", base.Slices[0])
	assert.True(t, *base.Mine)
}

func TestMergeOptions_Empty(t *testing.T) {
	assert.Equal(t, ViewOptions{}, MergeOptions())
}

func TestShortcut_Unknown(t *testing.T) {
	cfg := Config{Shortcuts: map[string]ViewOptions{"bugs": {}, "mine": {}}}

	_, err := cfg.Shortcut("triage")
	assert.ErrorIs(t, err, ErrUnknownShortcut)
	assert.Contains(t, err.Error(), "bugs, mine")

	_, err = Config{}.Shortcut("triage")
	assert.ErrorIs(t, err, ErrUnknownShortcut)
}

func TestWorkPreset(t *testing.T) {
	p := WorkPreset()
	assert.True(t, Flag(p.Mine))
	assert.True(t, Flag(p.HideDone))
	assert.Equal(t, "status", p.GroupBy)
}
