package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIssueRef indicates an issue argument that is not "N", "#N" or "owner/repo#N".
var ErrInvalidIssueRef = errors.New("invalid issue reference")

// ParseIssueRef parses an issue argument, filling in defaultRepo when the
// argument does not name a repository.
func ParseIssueRef(s, defaultRepo string) (IssueRef, error) {
	s = strings.TrimSpace(s)
	repo := defaultRepo
	num := s

	if idx := strings.LastIndex(s, "#"); idx > 0 {
		repo = s[:idx]
		num = s[idx+1:]
	} else {
		num = strings.TrimPrefix(s, "#")
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return IssueRef{}, fmt.Errorf("%w: %q", ErrInvalidIssueRef, s)
	}
	if !ValidRepo(repo) {
		return IssueRef{}, fmt.Errorf("%w: %q has no owner/repo (use --repo)", ErrInvalidIssueRef, s)
	}

	return IssueRef{Repo: repo, Number: n}, nil
}

// ValidRepo reports whether s looks like "owner/name".
func ValidRepo(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(s string) (owner, name string) {
	owner, name, _ = strings.Cut(s, "/")
	return owner, name
}

// SameRepo reports whether a and b name the same repository. GitHub treats
// owner and repository names case-insensitively.
func SameRepo(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Equal reports whether r and o are the same issue.
func (r IssueRef) Equal(o IssueRef) bool {
	return r.Number == o.Number && SameRepo(r.Repo, o.Repo)
}
