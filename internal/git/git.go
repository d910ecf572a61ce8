// Package git wraps the git executable for branch management in the current
// working tree.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository indicates the working directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// Repo runs git commands in one working directory.
type Repo struct {
	dir string
}

// Open returns a Repo for dir ("" means the process working directory).
// It fails with ErrNotRepository when dir is not inside a work tree.
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	if _, err := r.run(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return r, nil
}

// Root returns the top-level directory of the work tree.
func (r *Repo) Root(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--show-toplevel")
}

// CurrentBranch returns the checked-out branch, or "" on a detached HEAD.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}
	return out, nil
}

// Branches lists local branch names in git's order.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, scanner.Err()
}

// HasBranch reports whether a local branch exists.
func (r *Repo) HasBranch(ctx context.Context, name string) bool {
	_, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	if _, err := r.run(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// CreateBranch creates branch from HEAD and checks it out.
func (r *Repo) CreateBranch(ctx context.Context, branch string) error {
	if _, err := r.run(ctx, "checkout", "-b", branch); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", remote, err)
	}
	return out, nil
}

// RemoteRepo returns the "owner/name" of the origin remote on github.com.
func (r *Repo) RemoteRepo(ctx context.Context) (string, error) {
	url, err := r.RemoteURL(ctx, "origin")
	if err != nil {
		return "", err
	}
	repo, ok := ParseRemoteURL(url)
	if !ok {
		return "", fmt.Errorf("origin %q is not a GitHub repository", url)
	}
	return repo, nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %s", args[0], msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}
