package git

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Relevance weights for RankBranches.
const (
	numberScore = 100
	wordScore   = 10
	maxSlugLen  = 40
)

// RankBranches orders branches by how likely they belong to the given issue,
// most relevant first. A branch containing the issue number gets numberScore,
// plus wordScore for each title word (longer than two characters) it contains.
// Equal scores keep their input order.
func RankBranches(branches []string, number int, title string) []string {
	num := strconv.Itoa(number)
	words := titleWords(title)

	scores := make(map[string]int, len(branches))
	for _, b := range branches {
		lower := strings.ToLower(b)
		score := 0
		if number > 0 && strings.Contains(lower, num) {
			score += numberScore
		}
		for _, w := range words {
			if strings.Contains(lower, w) {
				score += wordScore
			}
		}
		scores[b] = score
	}

	ranked := slices.Clone(branches)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return scores[b] - scores[a]
	})
	return ranked
}

// titleWords lowercases title, strips non-alphanumerics from each word and
// drops words of two characters or fewer.
func titleWords(title string) []string {
	var words []string
	for _, f := range strings.Fields(strings.ToLower(title)) {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// BranchName returns "<number>-<slug>" for a new issue branch.
func BranchName(number int, title string) string {
	slug := Slug(title)
	if slug == "" {
		return strconv.Itoa(number)
	}
	return strconv.Itoa(number) + "-" + slug
}

// Slug turns a title into a lowercase, hyphen-separated ASCII slug of at
// most maxSlugLen characters, cut at a word boundary when possible.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")

	if len(slug) > maxSlugLen {
		cut := slug[:maxSlugLen]
		if slug[maxSlugLen] != '-' {
			if i := strings.LastIndexByte(cut, '-'); i > 0 {
				cut = cut[:i]
			}
		}
		slug = cut
	}
	return strings.Trim(slug, "-")
}
