// Package items implements the item pipeline used by the board views:
// field resolution, filtering, view-filter expressions and sorting.
package items

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/h0rv/ghpm/internal/domain"
)

// Built-in field keys. Aliases are folded onto these by Canonical.
const (
	FieldNumber    = "number"
	FieldTitle     = "title"
	FieldStatus    = "status"
	FieldType      = "type"
	FieldAssignees = "assignees"
	FieldLabels    = "labels"
	FieldRepo      = "repo"
	FieldProject   = "project"
	FieldState     = "state"
)

// UnassignedLabel is the display placeholder for items without assignees.
const UnassignedLabel = "Unassigned"

var aliases = map[string]string{
	"number":     FieldNumber,
	"title":      FieldTitle,
	"status":     FieldStatus,
	"type":       FieldType,
	"issuetype":  FieldType,
	"issue-type": FieldType,
	"assignee":   FieldAssignees,
	"assignees":  FieldAssignees,
	"user":       FieldAssignees,
	"label":      FieldLabels,
	"labels":     FieldLabels,
	"repo":       FieldRepo,
	"repository": FieldRepo,
	"project":    FieldProject,
	"state":      FieldState,
}

var displayNames = map[string]string{
	FieldNumber:  "Number",
	FieldTitle:   "Title",
	FieldStatus:  "Status",
	FieldType:    "Type",
	FieldLabels:  "Labels",
	FieldRepo:    "Repository",
	FieldProject: "Project",
	FieldState:   "State",
}

// Canonical maps a field name to its built-in key, or "" for custom fields.
// Matching is case-insensitive.
func Canonical(name string) string {
	return aliases[strings.ToLower(strings.TrimSpace(name))]
}

// LookupField finds a custom field on the item: exact key first, then a
// case-insensitive key match. The matched key is returned alongside the value.
func LookupField(item domain.Item, name string) (domain.FieldValue, string, bool) {
	if v, ok := item.Fields[name]; ok {
		return v, name, true
	}
	for key, v := range item.Fields {
		if strings.EqualFold(key, name) {
			return v, key, true
		}
	}
	return domain.FieldValue{}, "", false
}

// Value is a resolved sort key. Absent values carry Present=false and are
// never turned into a placeholder string.
type Value struct {
	Present bool
	Numeric bool
	Num     float64
	Str     string
}

func absent() Value       { return Value{} }
func str(s string) Value  { return Value{Present: true, Str: s} }
func num(n float64) Value { return Value{Present: true, Numeric: true, Num: n} }

func strOrAbsent(s string) Value {
	if s == "" {
		return absent()
	}
	return str(s)
}

// SortValue resolves a field for comparison. Status resolves to its ordinal
// index, assignees to the first assignee (empty string when unassigned).
func SortValue(item domain.Item, field string) Value {
	switch Canonical(field) {
	case FieldNumber:
		if item.Number == 0 {
			return absent()
		}
		return num(float64(item.Number))
	case FieldTitle:
		return str(item.Title)
	case FieldStatus:
		if item.Status == "" || item.StatusIndex < 0 {
			return absent()
		}
		return num(float64(item.StatusIndex))
	case FieldType:
		return strOrAbsent(item.IssueType)
	case FieldAssignees:
		if len(item.Assignees) == 0 {
			return str("")
		}
		return str(item.Assignees[0])
	case FieldLabels:
		if len(item.Labels) == 0 {
			return absent()
		}
		return str(item.Labels[0].Name)
	case FieldRepo:
		return strOrAbsent(item.Repo)
	case FieldProject:
		return strOrAbsent(item.ProjectTitle)
	case FieldState:
		return strOrAbsent(item.State)
	}

	v, _, ok := LookupField(item, field)
	if !ok {
		return absent()
	}
	if v.Kind == domain.FieldTypeNumber {
		return num(v.Number)
	}
	// ISO dates order correctly as strings.
	return strOrAbsent(v.String())
}

// Values resolves a field for filtering. Multi-valued fields (assignees,
// labels) return every value. The boolean is false when the item has no value.
func Values(item domain.Item, field string) ([]string, bool) {
	switch Canonical(field) {
	case FieldNumber:
		if item.Number == 0 {
			return nil, false
		}
		return []string{strconv.Itoa(item.Number)}, true
	case FieldTitle:
		return []string{item.Title}, true
	case FieldStatus:
		return single(item.Status)
	case FieldType:
		return single(item.IssueType)
	case FieldAssignees:
		if len(item.Assignees) == 0 {
			return nil, false
		}
		return item.Assignees, true
	case FieldLabels:
		if len(item.Labels) == 0 {
			return nil, false
		}
		names := make([]string, len(item.Labels))
		for i, l := range item.Labels {
			names[i] = l.Name
		}
		return names, true
	case FieldRepo:
		return single(item.Repo)
	case FieldProject:
		return single(item.ProjectTitle)
	case FieldState:
		return single(item.State)
	}

	v, _, ok := LookupField(item, field)
	if !ok {
		return nil, false
	}
	return single(v.String())
}

func single(s string) ([]string, bool) {
	if s == "" {
		return nil, false
	}
	return []string{s}, true
}

// Display resolves a field for grouping and rendering, substituting a
// "No <Field>" or "Unassigned" placeholder when the value is absent.
func Display(item domain.Item, field string) string {
	key := Canonical(field)
	switch key {
	case FieldNumber:
		if item.Number == 0 {
			return Placeholder(field)
		}
		return "#" + strconv.Itoa(item.Number)
	case FieldAssignees, FieldLabels:
		vals, ok := Values(item, field)
		if !ok {
			return Placeholder(field)
		}
		return strings.Join(vals, ", ")
	case "":
		v, _, ok := LookupField(item, field)
		if !ok || v.String() == "" {
			return Placeholder(field)
		}
		return v.String()
	}

	vals, ok := Values(item, field)
	if !ok {
		return Placeholder(field)
	}
	return vals[0]
}

// Placeholder returns the display label used when an item lacks a field.
func Placeholder(field string) string {
	key := Canonical(field)
	if key == FieldAssignees {
		return UnassignedLabel
	}
	if name, ok := displayNames[key]; ok {
		return "No " + name
	}
	return "No " + upperFirst(strings.TrimSpace(field))
}

// IsPlaceholder reports whether a display label is an absence placeholder.
func IsPlaceholder(label string) bool {
	return strings.HasPrefix(label, "No ") || label == UnassignedLabel
}

// HeaderName returns the column header for a field.
func HeaderName(field string) string {
	key := Canonical(field)
	switch key {
	case FieldNumber:
		return "#"
	case FieldAssignees:
		return "Assignees"
	case "":
		return upperFirst(field)
	}
	return displayNames[key]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
