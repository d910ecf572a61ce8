package items

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey is one key of a sort specification.
type SortKey struct {
	Field     string
	Ascending bool
}

// ParseSort parses a comma-separated sort specification.
//
// NOTE: a key without prefix sorts DESCENDING; a leading "-" sorts ASCENDING.
// This is the inverse of the usual convention and is relied on by existing
// shortcuts and configs, so "status" puts the last board column first and
// "-status" follows board order.
func ParseSort(spec string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{Field: part}
		if strings.HasPrefix(part, "-") {
			key.Ascending = true
			key.Field = strings.TrimSpace(part[1:])
		}
		if key.Field != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func (k SortKey) String() string {
	if k.Ascending {
		return "-" + k.Field
	}
	return k.Field
}

// Sort returns a new slice ordered by keys. The sort is stable, so items
// equal on every key keep their input order. Absent values always sort last,
// whatever the direction.
func Sort(items []domain.Item, keys []SortKey) []domain.Item {
	out := slices.Clone(items)
	if len(keys) == 0 {
		return out
	}
	c := NewCollator()
	slices.SortStableFunc(out, func(a, b domain.Item) int {
		return compareItems(c, a, b, keys)
	})
	return out
}

// NewCollator returns the collator used for locale-aware string ordering.
// Collators are not safe for concurrent use.
func NewCollator() *collate.Collator {
	return collate.New(language.English)
}

func compareItems(c *collate.Collator, a, b domain.Item, keys []SortKey) int {
	for _, k := range keys {
		va, vb := SortValue(a, k.Field), SortValue(b, k.Field)
		switch {
		case !va.Present && !vb.Present:
			continue
		case !va.Present:
			return 1
		case !vb.Present:
			return -1
		}

		r := compareValues(c, va, vb)
		if r == 0 {
			continue
		}
		if !k.Ascending {
			r = -r
		}
		return r
	}
	return 0
}

func compareValues(c *collate.Collator, a, b Value) int {
	if a.Numeric && b.Numeric {
		return cmp.Compare(a.Num, b.Num)
	}
	return c.CompareString(a.text(), b.text())
}

func (v Value) text() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// UnresolvedKeys returns the keys that name a custom field no item carries.
// Such keys have no effect on the order.
func UnresolvedKeys(items []domain.Item, keys []SortKey) []SortKey {
	var out []SortKey
	for _, k := range keys {
		if Canonical(k.Field) != "" {
			continue
		}
		found := false
		for _, item := range items {
			if _, _, ok := LookupField(item, k.Field); ok {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	return out
}
