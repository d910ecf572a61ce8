package items

import (
	"errors"
	"fmt"
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
)

// ErrMalformedSlice indicates a slice that is not of the form field=value.
var ErrMalformedSlice = errors.New("malformed slice")

// DefaultDoneStatuses are the status names hidden by HideDone unless the
// caller configures its own.
var DefaultDoneStatuses = []string{"Done", "Closed", "Completed"}

// Predicate reports whether an item is kept.
type Predicate func(domain.Item) bool

// Filter is a set of predicates combined with logical AND.
type Filter struct {
	Slices       []string // field=value terms
	ViewFilter   string   // project view-filter expression
	Mine         bool
	Unassigned   bool
	HideDone     bool
	DoneStatuses []string // defaults to DefaultDoneStatuses
	Statuses     []string // keep items whose status equals any of these
}

// Compile turns the filter into a single predicate. Slices that cannot be
// parsed are skipped and returned as warnings; they never fail the filter.
// me is the current user's login, used by Mine and @me.
func (f Filter) Compile(me string) (Predicate, []error) {
	var preds []Predicate
	var warnings []error

	if strings.TrimSpace(f.ViewFilter) != "" {
		tokens := ParseViewFilter(f.ViewFilter)
		preds = append(preds, ViewFilter(tokens, me))
	}

	for _, raw := range f.Slices {
		s, err := ParseSlice(raw)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		preds = append(preds, MatchSlice(s))
	}

	if f.Mine {
		preds = append(preds, AssignedTo(me))
	}
	if f.Unassigned {
		preds = append(preds, Unassigned())
	}
	if f.HideDone {
		done := f.DoneStatuses
		if len(done) == 0 {
			done = DefaultDoneStatuses
		}
		preds = append(preds, Not(StatusIn(done...)))
	}
	if len(f.Statuses) > 0 {
		preds = append(preds, StatusIn(f.Statuses...))
	}

	return All(preds...), warnings
}

// Apply returns the items matching pred, preserving their order.
func Apply(items []domain.Item, pred Predicate) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// All combines predicates with logical AND. No predicates matches everything.
func All(preds ...Predicate) Predicate {
	return func(item domain.Item) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(item domain.Item) bool { return !p(item) }
}

// Slice is a single field=value filter term.
type Slice struct {
	Field string
	Value string
}

// ParseSlice parses "field=value". Both sides must be non-empty.
func ParseSlice(s string) (Slice, error) {
	field, value, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	if !ok || field == "" || value == "" {
		return Slice{}, fmt.Errorf("%w: %q (expected field=value)", ErrMalformedSlice, s)
	}
	return Slice{Field: field, Value: value}, nil
}

// enumFields match by case-insensitive equality; everything else by
// case-insensitive substring containment.
var enumFields = map[string]bool{
	FieldStatus: true,
	FieldType:   true,
	FieldState:  true,
	FieldNumber: true,
}

// MatchSlice builds the predicate for a slice.
func MatchSlice(s Slice) Predicate {
	exact := enumFields[Canonical(s.Field)]
	want := strings.ToLower(s.Value)
	return func(item domain.Item) bool {
		vals, ok := Values(item, s.Field)
		if !ok {
			return false
		}
		for _, v := range vals {
			v = strings.ToLower(v)
			if exact && v == want {
				return true
			}
			if !exact && strings.Contains(v, want) {
				return true
			}
		}
		return false
	}
}

// AssignedTo keeps items assigned to login. An empty login matches nothing.
func AssignedTo(login string) Predicate {
	return func(item domain.Item) bool {
		if login == "" {
			return false
		}
		for _, a := range item.Assignees {
			if strings.EqualFold(a, login) {
				return true
			}
		}
		return false
	}
}

// Unassigned keeps items without assignees.
func Unassigned() Predicate {
	return func(item domain.Item) bool { return len(item.Assignees) == 0 }
}

// StatusIn keeps items whose status equals any of names, ignoring case.
func StatusIn(names ...string) Predicate {
	return func(item domain.Item) bool {
		for _, n := range names {
			if item.Status != "" && strings.EqualFold(item.Status, strings.TrimSpace(n)) {
				return true
			}
		}
		return false
	}
}
