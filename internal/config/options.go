package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrUnknownShortcut indicates a shortcut name missing from the configuration.
var ErrUnknownShortcut = errors.New("unknown shortcut")

// ViewOptions is one layer of board view options. Zero values mean "not set"
// so that layers can be merged.
type ViewOptions struct {
	Projects   []int    `mapstructure:"projects"`
	Statuses   []string `mapstructure:"status"`
	Slices     []string `mapstructure:"slices"`
	View       string   `mapstructure:"view"`
	Filter     string   `mapstructure:"filter"`
	Sort       string   `mapstructure:"sort"`
	GroupBy    string   `mapstructure:"group_by"`
	Columns    []string `mapstructure:"columns"`
	Format     string   `mapstructure:"format"`
	Limit      int      `mapstructure:"limit"`
	Mine       *bool    `mapstructure:"mine"`
	Unassigned *bool    `mapstructure:"unassigned"`
	HideDone   *bool    `mapstructure:"hide_done"`
}

// MergeOptions merges layers left to right. Later scalars and non-nil flags
// win; Projects, Statuses and Slices accumulate without duplicates; a later
// non-empty Columns list replaces the earlier one since it is an ordering.
// The inputs are not modified.
func MergeOptions(layers ...ViewOptions) ViewOptions {
	var out ViewOptions
	for _, l := range layers {
		out.Projects = appendUnique(out.Projects, l.Projects)
		out.Statuses = appendUnique(out.Statuses, l.Statuses)
		out.Slices = appendUnique(out.Slices, l.Slices)

		if len(l.Columns) > 0 {
			out.Columns = append([]string(nil), l.Columns...)
		}
		if l.View != "" {
			out.View = l.View
		}
		if l.Filter != "" {
			out.Filter = l.Filter
		}
		if l.Sort != "" {
			out.Sort = l.Sort
		}
		if l.GroupBy != "" {
			out.GroupBy = l.GroupBy
		}
		if l.Format != "" {
			out.Format = l.Format
		}
		if l.Limit != 0 {
			out.Limit = l.Limit
		}
		if l.Mine != nil {
			out.Mine = boolPtr(*l.Mine)
		}
		if l.Unassigned != nil {
			out.Unassigned = boolPtr(*l.Unassigned)
		}
		if l.HideDone != nil {
			out.HideDone = boolPtr(*l.HideDone)
		}
	}
	return out
}

// Flag returns the value of an optional flag, false when unset.
func Flag(b *bool) bool {
	return b != nil && *b
}

func boolPtr(b bool) *bool { return &b }

// Bool returns a pointer to b for building option layers.
func Bool(b bool) *bool { return boolPtr(b) }

// Shortcut returns the named view options (case-insensitive).
func (c Config) Shortcut(name string) (ViewOptions, error) {
	for k, opts := range c.Shortcuts {
		if strings.EqualFold(k, name) {
			return opts, nil
		}
	}

	names := make([]string, 0, len(c.Shortcuts))
	for k := range c.Shortcuts {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ViewOptions{}, fmt.Errorf("%w %q (no shortcuts configured)", ErrUnknownShortcut, name)
	}
	return ViewOptions{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownShortcut, name, strings.Join(names, ", "))
}

// WorkPreset is the option layer of the work command: my unfinished items
// by status.
func WorkPreset() ViewOptions {
	return ViewOptions{
		Mine:     Bool(true),
		HideDone: Bool(true),
		GroupBy:  "status",
		Sort:     "-status,-number",
	}
}

func appendUnique[T comparable](dst, src []T) []T {
	for _, v := range src {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
