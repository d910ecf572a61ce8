// Package links persists the association between local branches and tracked issues.
// Links are scoped per repository: within one repository a branch maps to at most
// one issue and an issue maps to at most one branch.
package links

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/h0rv/ghpm/internal/domain"
	"go.uber.org/zap"
)

// ErrNoLink indicates that no branch is linked to the requested issue.
var ErrNoLink = errors.New("no linked branch")

// DefaultFile is the file name used under the user config directory.
const DefaultFile = "branch-links.json"

// Store is a JSON-file backed link store. Every call re-reads the file and
// every mutation rewrites it, so a Store holds no state between calls.
// Concurrent writers from separate processes are not coordinated.
type Store struct {
	path string
	now  func() time.Time
	log  *zap.SugaredLogger
}

// New returns a store persisting to path.
func New(path string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{path: path, now: time.Now, log: log}
}

// DefaultPath returns <user config dir>/ghpm/branch-links.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "ghpm", DefaultFile), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Link records that branch tracks issue in repo. Any existing link in the
// same repository sharing the branch or the issue is replaced.
func (s *Store) Link(repo string, issue int, branch, title, itemID string) error {
	all := s.load()

	kept := all[:0]
	for _, l := range all {
		if domain.SameRepo(l.Repo, repo) && (l.Branch == branch || l.Issue == issue) {
			s.log.Debugw("superseding branch link", "repo", repo, "branch", l.Branch, "issue", l.Issue)
			continue
		}
		kept = append(kept, l)
	}

	kept = append(kept, domain.BranchLink{
		Branch:    branch,
		Issue:     issue,
		Title:     title,
		ItemID:    itemID,
		Repo:      repo,
		CreatedAt: s.now().UTC(),
	})

	return s.save(kept)
}

// Unlink removes the link for issue in repo and reports whether one existed.
func (s *Store) Unlink(repo string, issue int) (bool, error) {
	all := s.load()

	kept := all[:0]
	removed := false
	for _, l := range all {
		if domain.SameRepo(l.Repo, repo) && l.Issue == issue {
			removed = true
			continue
		}
		kept = append(kept, l)
	}

	if !removed {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// BranchFor returns the branch linked to issue, or ErrNoLink.
func (s *Store) BranchFor(repo string, issue int) (string, error) {
	for _, l := range s.load() {
		if domain.SameRepo(l.Repo, repo) && l.Issue == issue {
			return l.Branch, nil
		}
	}
	return "", fmt.Errorf("%w for %s#%d", ErrNoLink, repo, issue)
}

// IssueFor returns the link for branch, or nil when the branch is not linked.
func (s *Store) IssueFor(repo, branch string) *domain.BranchLink {
	for _, l := range s.load() {
		if domain.SameRepo(l.Repo, repo) && l.Branch == branch {
			link := l
			return &link
		}
	}
	return nil
}

// AllFor returns every link in repo, oldest first.
func (s *Store) AllFor(repo string) []domain.BranchLink {
	var out []domain.BranchLink
	for _, l := range s.load() {
		if domain.SameRepo(l.Repo, repo) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// load reads the link file. A missing or unreadable file yields no links.
func (s *Store) load() []domain.BranchLink {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debugw("branch link store unreadable", "path", s.path, "error", err)
		}
		return nil
	}

	var all []domain.BranchLink
	if err := json.Unmarshal(data, &all); err != nil {
		s.log.Debugw("branch link store corrupt, starting empty", "path", s.path, "error", err)
		return nil
	}
	return all
}

// save writes the link file through a temp file and rename.
func (s *Store) save(all []domain.BranchLink) error {
	if all == nil {
		all = []domain.BranchLink{}
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode branch links: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".branch-links-*.json")
	if err != nil {
		return fmt.Errorf("failed to write branch links: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write branch links: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write branch links: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
