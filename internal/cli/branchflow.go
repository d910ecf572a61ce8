package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/git"
	"github.com/h0rv/ghpm/internal/layout"
	"github.com/h0rv/ghpm/internal/links"
	"github.com/h0rv/ghpm/internal/session"
	"github.com/h0rv/ghpm/internal/tui"
	"go.uber.org/zap"
)

// checkout is the part of a git work tree the branch commands drive.
type checkout interface {
	CurrentBranch(ctx context.Context) (string, error)
	Branches(ctx context.Context) ([]string, error)
	HasBranch(ctx context.Context, name string) bool
	Checkout(ctx context.Context, branch string) error
	CreateBranch(ctx context.Context, branch string) error
}

// linkStore is the part of the branch link store the branch commands use.
type linkStore interface {
	Link(repo string, issue int, branch, title, itemID string) error
	BranchFor(repo string, issue int) (string, error)
	IssueFor(repo, branch string) *domain.BranchLink
	AllFor(repo string) []domain.BranchLink
}

var (
	_ checkout  = (*git.Repo)(nil)
	_ linkStore = (*links.Store)(nil)
)

// branchFlow runs start, switch, sync and link-branch against its collaborators.
type branchFlow struct {
	git   checkout
	links linkStore
	log   *zap.SugaredLogger
	out   io.Writer

	// reconcile moves the active label; nil when the label is disabled.
	reconcile func(ctx context.Context, ref domain.IssueRef) error
	// setStatus moves the issue's project item and returns its ID.
	setStatus func(ctx context.Context, ref domain.IssueRef, status string) (string, error)
	// pick asks the user to choose; nil takes the first choice.
	pick func(title string, choices []tui.Choice) (tui.Choice, error)
}

// newBranchFlow wires the branch commands to the session.
func newBranchFlow(ctx context.Context, s *session.Session, out io.Writer) (*branchFlow, error) {
	repo, err := s.RequireGit()
	if err != nil {
		return nil, err
	}

	f := &branchFlow{
		git:   repo,
		links: s.Links,
		log:   s.Log,
		out:   out,
		setStatus: func(ctx context.Context, ref domain.IssueRef, status string) (string, error) {
			return setStatus(ctx, s, ref, status)
		},
	}
	if s.Config.ActiveLabel.Enabled {
		f.reconcile = func(ctx context.Context, ref domain.IssueRef) error {
			return reconcileActive(ctx, s, ref, out)
		}
	}
	if layout.IsTerminal(os.Stdin) && layout.IsTerminal(os.Stderr) {
		f.pick = tui.Pick
	}
	return f, nil
}

// startOptions are the flags of start.
type startOptions struct {
	Existing bool   // choose among existing local branches
	Branch   string // explicit branch, created when missing
	Status   string // project status to move to, "" leaves it
}

// start checks out the issue's branch, records the link, moves the item
// and then the active label. The link is recorded even when the status
// change fails.
func (f *branchFlow) start(ctx context.Context, ref domain.IssueRef, title string, opts startOptions) error {
	branch, err := f.startBranch(ctx, ref, title, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(f.out, "On branch %s for %s %s\n", branch, ref, title)

	var itemID string
	var statusErr error
	if opts.Status != "" {
		itemID, statusErr = f.setStatus(ctx, ref, opts.Status)
	}

	if link := f.links.IssueFor(ref.Repo, branch); link == nil || link.Issue != ref.Number || (itemID != "" && link.ItemID != itemID) {
		if err := f.links.Link(ref.Repo, ref.Number, branch, title, itemID); err != nil {
			return err
		}
	}
	if statusErr != nil {
		return fmt.Errorf("failed to move %s to %q: %w", ref, opts.Status, statusErr)
	}
	if opts.Status != "" {
		fmt.Fprintf(f.out, "Moved %s to %s\n", ref, opts.Status)
	}

	return f.reconcileIfEnabled(ctx, ref)
}

// startBranch checks out the branch for ref and returns its name: the linked
// branch, else --branch, else a ranked existing branch, else a new one.
func (f *branchFlow) startBranch(ctx context.Context, ref domain.IssueRef, title string, opts startOptions) (string, error) {
	branch := opts.Branch
	if branch == "" {
		if linked, err := f.links.BranchFor(ref.Repo, ref.Number); err == nil {
			if f.git.HasBranch(ctx, linked) {
				return linked, f.checkout(ctx, linked)
			}
			f.log.Warnw("linked branch no longer exists", "branch", linked, "issue", ref.String())
		}
	}

	if branch == "" && opts.Existing {
		picked, err := f.pickBranch(ctx, ref, title)
		if err != nil {
			return "", err
		}
		branch = picked
	}
	if branch == "" {
		branch = git.BranchName(ref.Number, title)
	}

	if f.git.HasBranch(ctx, branch) {
		return branch, f.checkout(ctx, branch)
	}
	return branch, f.git.CreateBranch(ctx, branch)
}

// checkout switches to branch unless it is already checked out.
func (f *branchFlow) checkout(ctx context.Context, branch string) error {
	current, err := f.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}
	return f.git.Checkout(ctx, branch)
}

// pickBranch ranks local branches against the issue and lets the user choose.
func (f *branchFlow) pickBranch(ctx context.Context, ref domain.IssueRef, title string) (string, error) {
	branches, err := f.git.Branches(ctx)
	if err != nil {
		return "", err
	}
	if len(branches) == 0 {
		return "", errors.New("no local branches")
	}
	ranked := git.RankBranches(branches, ref.Number, title)

	if f.pick == nil {
		f.log.Infow("picked best matching branch", "branch", ranked[0])
		return ranked[0], nil
	}

	current, _ := f.git.CurrentBranch(ctx)
	choice, err := f.pick(
		fmt.Sprintf("Link a branch to %s", ref),
		tui.BranchChoices(ranked, current, linkedBranches(f.links.AllFor(ref.Repo))),
	)
	if err != nil {
		return "", err
	}
	return choice.Value, nil
}

// switchTo checks out the linked branch of ref and moves the active label.
func (f *branchFlow) switchTo(ctx context.Context, ref domain.IssueRef) error {
	branch, err := f.links.BranchFor(ref.Repo, ref.Number)
	if err != nil {
		return fmt.Errorf("%s: %w (use ghpm start or ghpm link-branch)", ref, err)
	}
	if err := f.git.Checkout(ctx, branch); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "Switched to %s for %s\n", branch, ref)

	return f.reconcileIfEnabled(ctx, ref)
}

// sync moves the active label to the issue linked to the current branch.
func (f *branchFlow) sync(ctx context.Context, repo string) error {
	branch, err := f.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	link := f.links.IssueFor(repo, branch)
	if link == nil {
		return fmt.Errorf("branch %q: %w", branch, links.ErrNoLink)
	}
	ref := domain.IssueRef{Repo: link.Repo, Number: link.Issue}
	fmt.Fprintf(f.out, "Branch %s is linked to %s %s\n", branch, ref, link.Title)

	if f.reconcile == nil {
		fmt.Fprintln(f.out, "Active label is disabled")
		return nil
	}
	return f.reconcile(ctx, ref)
}

// linkBranch links branch ("" for the current one) to ref. The active label
// moves only when the linked branch is checked out.
func (f *branchFlow) linkBranch(ctx context.Context, ref domain.IssueRef, branch, title string) error {
	current, err := f.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if branch == "" {
		branch = current
	}
	if branch == "" {
		return errors.New("HEAD is detached, name a branch")
	}
	if !f.git.HasBranch(ctx, branch) {
		return fmt.Errorf("no local branch %q", branch)
	}

	if err := f.links.Link(ref.Repo, ref.Number, branch, title, ""); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "Linked %s to %s\n", branch, ref)

	if branch != current {
		return nil
	}
	return f.reconcileIfEnabled(ctx, ref)
}

func (f *branchFlow) reconcileIfEnabled(ctx context.Context, ref domain.IssueRef) error {
	if f.reconcile == nil {
		return nil
	}
	return f.reconcile(ctx, ref)
}
