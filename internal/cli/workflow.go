package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/h0rv/ghpm/internal/config"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/items"
	"github.com/h0rv/ghpm/internal/layout"
	"github.com/h0rv/ghpm/internal/session"
	"github.com/h0rv/ghpm/internal/tui"
	"github.com/spf13/cobra"
)

func newStartCmd(a *app) *cobra.Command {
	var (
		opts     startOptions
		noStatus bool
	)

	cmd := &cobra.Command{
		Use:   "start [ISSUE]",
		Short: "Start work on an issue: branch, link, move to in progress",
		Long: `Check out the branch linked to ISSUE, or link an existing branch
(--existing, --branch), or create "<number>-<title-slug>" from HEAD.
The issue is then moved to the in-progress status and receives the
active label.

Without ISSUE on a terminal, pick one of your open items.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			flow, err := newBranchFlow(ctx, s, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var ref domain.IssueRef
			if len(args) == 1 {
				ref, err = s.IssueRef(ctx, args[0])
			} else {
				ref, err = pickMyIssue(ctx, s)
			}
			if err != nil {
				return err
			}

			client, err := s.Client()
			if err != nil {
				return err
			}
			issue, err := client.GetIssue(ctx, ref)
			if err != nil {
				return err
			}

			if !noStatus {
				opts.Status = s.Config.Statuses.InProgress
			}
			return flow.start(ctx, ref, issue.Title, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Existing, "existing", "e", false, "link an existing local branch, ranked by relevance")
	cmd.Flags().StringVarP(&opts.Branch, "branch", "b", "", "branch to use, created when missing")
	cmd.Flags().BoolVar(&noStatus, "no-status", false, "do not change the project status")
	return cmd
}

// linkedBranches maps each linked branch to its issue number.
func linkedBranches(all []domain.BranchLink) map[string]int {
	out := make(map[string]int, len(all))
	for _, l := range all {
		out[l.Branch] = l.Issue
	}
	return out
}

// pickMyIssue offers the user's open items across the configured projects.
func pickMyIssue(ctx context.Context, s *session.Session) (domain.IssueRef, error) {
	if !layout.IsTerminal(os.Stdin) || !layout.IsTerminal(os.Stderr) {
		return domain.IssueRef{}, errors.New("an issue is required when not running on a terminal")
	}
	refs, err := selectProjects(s.Config, nil)
	if err != nil {
		return domain.IssueRef{}, err
	}
	client, err := s.Client()
	if err != nil {
		return domain.IssueRef{}, err
	}
	me, err := s.Username(ctx)
	if err != nil {
		return domain.IssueRef{}, err
	}
	boards, err := fetchBoards(ctx, client, refs, DefaultLimit, false)
	if err != nil {
		return domain.IssueRef{}, err
	}

	preset := config.WorkPreset()
	groups, err := buildView(boards, viewInput{Options: preset, DoneStatuses: s.Config.Statuses.Done, Me: me}, s.Log)
	if err != nil {
		return domain.IssueRef{}, err
	}
	choices := tui.ItemChoices(layout.Flatten(groups))
	choice, err := tui.Pick("Start work on", choices)
	if err != nil {
		return domain.IssueRef{}, err
	}
	return domain.ParseIssueRef(choice.Value, "")
}

func newSwitchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch ISSUE",
		Short: "Check out the branch linked to an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			flow, err := newBranchFlow(ctx, s, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ref, err := s.IssueRef(ctx, args[0])
			if err != nil {
				return err
			}
			return flow.switchTo(ctx, ref)
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Move the active label to the issue linked to the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			flow, err := newBranchFlow(ctx, s, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			repo, err := s.Repo(ctx)
			if err != nil {
				return err
			}
			return flow.sync(ctx, repo)
		},
	}
}

func newLinkBranchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "link-branch ISSUE [BRANCH]",
		Short: "Link a local branch (default: current) to an issue",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			flow, err := newBranchFlow(ctx, s, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ref, err := s.IssueRef(ctx, args[0])
			if err != nil {
				return err
			}
			var branch string
			if len(args) == 2 {
				branch = args[1]
			}

			var title string
			if client, err := s.Client(); err == nil {
				if issue, err := client.GetIssue(ctx, ref); err == nil {
					title = issue.Title
				} else {
					s.Log.Warnw("could not fetch issue title", "issue", ref.String(), "error", err)
				}
			}
			return flow.linkBranch(ctx, ref, branch, title)
		},
	}
}

func newUnlinkBranchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink-branch ISSUE",
		Short: "Remove the branch link of an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			ref, err := s.IssueRef(ctx, args[0])
			if err != nil {
				return err
			}

			removed, err := s.Links.Unlink(ref.Repo, ref.Number)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s\n", ref)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no linked branch\n", ref)
			}
			return nil
		},
	}
}

func newLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "links",
		Short: "List branch links of the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			repo, err := s.Repo(ctx)
			if err != nil {
				return err
			}

			all := s.Links.AllFor(repo)
			if len(all) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No branch links in %s\n", repo)
				return nil
			}
			return writeLinks(cmd.OutOrStdout(), all, time.Now(), layout.TerminalWidth(os.Stdout))
		},
	}
}

// linkItems presents links as items so they render with the board table.
func linkItems(all []domain.BranchLink, now time.Time) []domain.Item {
	out := make([]domain.Item, len(all))
	for i, l := range all {
		out[i] = domain.Item{
			ID:     l.Branch,
			Number: l.Issue,
			Title:  l.Title,
			Repo:   l.Repo,
			Fields: map[string]domain.FieldValue{
				"Branch": domain.TextValue(l.Branch),
				"Age":    domain.TextValue(age(now.Sub(l.CreatedAt))),
			},
		}
	}
	return out
}

func writeLinks(w io.Writer, all []domain.BranchLink, now time.Time, width int) error {
	list := linkItems(all, now)
	cols := layout.Columns([]string{"Branch", items.FieldNumber, items.FieldTitle, "Age"})
	widths := layout.ComputeWidths(list, cols, width)
	return layout.RenderTable(w, layout.Ungrouped(list), cols, widths, layout.TableOptions{Headers: true})
}

// age renders a duration in its largest whole unit.
func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
