package items

import (
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
)

// Token is one term of a view-filter expression: [-]field:v1,v2 or a bare word.
type Token struct {
	Negate bool
	Field  string // empty for a bare word
	Values []string
}

// ParseViewFilter splits a project view-filter expression into tokens.
// Whitespace separates tokens except inside double quotes; commas separate
// values except inside double quotes. An unterminated quote runs to the end.
func ParseViewFilter(expr string) []Token {
	var tokens []Token
	for _, raw := range splitOutsideQuotes(expr, isSpace) {
		tok := Token{}
		if strings.HasPrefix(raw, "-") && len(raw) > 1 {
			tok.Negate = true
			raw = raw[1:]
		}

		field, rest, ok := strings.Cut(raw, ":")
		if !ok || field == "" || strings.HasPrefix(field, `"`) {
			tok.Values = []string{unquote(raw)}
			tokens = append(tokens, tok)
			continue
		}

		tok.Field = field
		for _, v := range splitOutsideQuotes(rest, func(r rune) bool { return r == ',' }) {
			if v = strings.TrimSpace(unquote(v)); v != "" {
				tok.Values = append(tok.Values, v)
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ViewFilter builds a predicate from parsed tokens. Values within a token are
// OR'd, tokens are AND'd, and @me expands to the current user's login.
func ViewFilter(tokens []Token, me string) Predicate {
	preds := make([]Predicate, 0, len(tokens))
	for _, tok := range tokens {
		vals := make([]string, len(tok.Values))
		for i, v := range tok.Values {
			if strings.EqualFold(v, "@me") && me != "" {
				v = me
			}
			vals[i] = v
		}
		tok.Values = vals
		p := tok.predicate()
		if tok.Negate {
			p = Not(p)
		}
		preds = append(preds, p)
	}
	return All(preds...)
}

// Match reports whether the item satisfies the token, ignoring negation.
// A field the item does not have never matches, so a negated token on an
// unknown field matches every item.
func (t Token) Match(item domain.Item) bool {
	return t.predicate()(item)
}

func (t Token) predicate() Predicate {
	switch strings.ToLower(t.Field) {
	case "":
		return anyValue(t.Values, func(item domain.Item, v string) bool {
			return strings.Contains(strings.ToLower(item.Title), strings.ToLower(v))
		})
	case "is":
		return anyValue(t.Values, matchIs)
	case "no":
		return anyValue(t.Values, func(item domain.Item, field string) bool {
			_, ok := Values(item, field)
			return !ok
		})
	case "has":
		return anyValue(t.Values, func(item domain.Item, field string) bool {
			_, ok := Values(item, field)
			return ok
		})
	}

	if Canonical(t.Field) == FieldTitle {
		return anyValue(t.Values, func(item domain.Item, v string) bool {
			return strings.Contains(strings.ToLower(item.Title), strings.ToLower(v))
		})
	}

	field := t.Field
	return anyValue(t.Values, func(item domain.Item, want string) bool {
		vals, ok := Values(item, field)
		if !ok {
			return false
		}
		for _, v := range vals {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	})
}

func anyValue(values []string, match func(domain.Item, string) bool) Predicate {
	return func(item domain.Item) bool {
		for _, v := range values {
			if match(item, v) {
				return true
			}
		}
		return false
	}
}

func matchIs(item domain.Item, v string) bool {
	switch strings.ToLower(v) {
	case "open":
		return strings.EqualFold(item.State, "OPEN")
	case "closed":
		return strings.EqualFold(item.State, "CLOSED") || strings.EqualFold(item.State, "MERGED")
	case "merged":
		return strings.EqualFold(item.State, "MERGED")
	case "issue":
		return item.ContentType == domain.ContentTypeIssue
	case "pr", "pull_request", "pullrequest":
		return item.ContentType == domain.ContentTypePullRequest
	case "draft":
		return item.ContentType == domain.ContentTypeDraftIssue
	}
	return false
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

func splitOutsideQuotes(s string, sep func(rune) bool) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && sep(r):
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
