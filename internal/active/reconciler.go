// Package active keeps the per-user "active work" label on exactly one issue
// within a repository or across all repositories feeding a project.
package active

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrUnknownScope indicates a scope other than "repo" or "project".
	ErrUnknownScope = errors.New("unknown active label scope")
	// ErrNoProject indicates a project-scoped transfer without a project ID.
	ErrNoProject = errors.New("project scope requires a project")
)

// Scope is the breadth over which the single-holder rule applies.
type Scope string

const (
	ScopeRepo    Scope = "repo"
	ScopeProject Scope = "project"
)

// DefaultColor is used when the label has to be created.
const DefaultColor = "1d76db"

// ParseScope converts a config value to a Scope. Empty means ScopeRepo.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeRepo:
		return ScopeRepo, nil
	case ScopeProject:
		return ScopeProject, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// LabelName returns the conventional active label for a user.
func LabelName(user string) string {
	return "@" + user + ":active"
}

// LabelService is the subset of the GitHub API the reconciler needs.
type LabelService interface {
	EnsureLabel(ctx context.Context, repo, name, color string) error
	AddLabel(ctx context.Context, repo string, issue int, name string) error
	RemoveLabel(ctx context.Context, repo string, issue int, name string) error
	IssuesWithLabel(ctx context.Context, repo, name string) ([]int, error)
	ProjectIssuesWithLabel(ctx context.Context, projectID, name string) ([]domain.IssueRef, error)
}

// Request describes one transfer of the active label.
type Request struct {
	Target    domain.IssueRef
	Scope     Scope
	Label     string
	Color     string // used only when the label is created
	ProjectID string // required for ScopeProject
}

// Failure is a holder the label could not be removed from.
type Failure struct {
	Ref domain.IssueRef
	Err error
}

// Result reports what a transfer changed.
type Result struct {
	RemovedFrom []domain.IssueRef
	Failed      []Failure
	Added       bool
}

// Partial reports whether some previous holders still carry the label.
func (r Result) Partial() bool {
	return len(r.Failed) > 0
}

// Reconciler moves the active label to a target issue.
type Reconciler struct {
	labels LabelService
	log    *zap.SugaredLogger
}

// New creates a Reconciler.
func New(labels LabelService, log *zap.SugaredLogger) *Reconciler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{labels: labels, log: log}
}

// Transfer makes req.Target the only holder of req.Label within req.Scope.
// Removals are best-effort and reported in Result.Failed; the target is
// labeled even when some removals fail. The returned error is non-nil only
// when the holders could not be determined or the target could not be labeled.
func (r *Reconciler) Transfer(ctx context.Context, req Request) (Result, error) {
	var res Result

	if req.Scope == "" {
		req.Scope = ScopeRepo
	}
	if req.Scope != ScopeRepo && req.Scope != ScopeProject {
		return res, fmt.Errorf("%w: %q", ErrUnknownScope, req.Scope)
	}
	if req.Scope == ScopeProject && req.ProjectID == "" {
		return res, ErrNoProject
	}
	if req.Color == "" {
		req.Color = DefaultColor
	}

	if err := r.labels.EnsureLabel(ctx, req.Target.Repo, req.Label, req.Color); err != nil {
		r.log.Warnw("failed to ensure active label", "repo", req.Target.Repo, "label", req.Label, "error", err)
	}

	holders, holdersErr := r.holders(ctx, req)
	if holdersErr != nil {
		// Without the holder list the target is still labeled; stale holders stay.
		if err := r.labels.AddLabel(ctx, req.Target.Repo, req.Target.Number, req.Label); err != nil {
			return res, fmt.Errorf("failed to add %s to %s: %w", req.Label, req.Target, err)
		}
		res.Added = true
		return res, fmt.Errorf("failed to list holders of %s: %w", req.Label, holdersErr)
	}

	needsAdd := true
	for _, h := range holders {
		if h.Equal(req.Target) {
			needsAdd = false
			continue
		}
		if err := r.labels.RemoveLabel(ctx, h.Repo, h.Number, req.Label); err != nil {
			r.log.Warnw("failed to remove active label", "issue", h.String(), "label", req.Label, "error", err)
			res.Failed = append(res.Failed, Failure{Ref: h, Err: err})
			continue
		}
		r.log.Debugw("removed active label", "issue", h.String(), "label", req.Label)
		res.RemovedFrom = append(res.RemovedFrom, h)
	}

	if needsAdd {
		if err := r.labels.AddLabel(ctx, req.Target.Repo, req.Target.Number, req.Label); err != nil {
			return res, fmt.Errorf("failed to add %s to %s: %w", req.Label, req.Target, err)
		}
		res.Added = true
	}

	return res, nil
}

// holders returns the current label holders in scope, de-duplicated.
func (r *Reconciler) holders(ctx context.Context, req Request) ([]domain.IssueRef, error) {
	var refs []domain.IssueRef

	switch req.Scope {
	case ScopeProject:
		found, err := r.labels.ProjectIssuesWithLabel(ctx, req.ProjectID, req.Label)
		if err != nil {
			return nil, err
		}
		refs = found
	default:
		numbers, err := r.labels.IssuesWithLabel(ctx, req.Target.Repo, req.Label)
		if err != nil {
			return nil, err
		}
		for _, n := range numbers {
			refs = append(refs, domain.IssueRef{Repo: req.Target.Repo, Number: n})
		}
	}

	seen := make(map[domain.IssueRef]bool, len(refs))
	out := make([]domain.IssueRef, 0, len(refs))
	for _, ref := range refs {
		key := domain.IssueRef{Repo: strings.ToLower(ref.Repo), Number: ref.Number}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out, nil
}
