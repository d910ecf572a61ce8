package cli

import (
	"context"
	"os"

	"github.com/h0rv/ghpm/internal/config"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/layout"
	"github.com/h0rv/ghpm/internal/session"
	"github.com/spf13/cobra"
)

// viewFlags binds the board view flags to an options layer.
type viewFlags struct {
	opts       config.ViewOptions
	shortcut   string
	mine       bool
	unassigned bool
	hideDone   bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntSliceVarP(&f.opts.Projects, "project", "p", nil, "project number (repeatable, default: all configured)")
	fl.StringSliceVarP(&f.opts.Statuses, "status", "s", nil, "only items with this status (repeatable)")
	fl.StringArrayVar(&f.opts.Slices, "slice", nil, "field=value filter, case-insensitive substring (repeatable)")
	fl.StringVar(&f.opts.View, "view", "", "apply the filter of a saved project view")
	fl.StringVarP(&f.opts.Filter, "filter", "f", "", `view filter expression, e.g. "label:bug -assignee:@me"`)
	fl.StringVar(&f.opts.Sort, "sort", "", `comma-separated sort keys; no prefix sorts descending, "-" ascending`)
	fl.StringVarP(&f.opts.GroupBy, "group-by", "g", "", `field to group by ("none" for a flat list)`)
	fl.StringSliceVarP(&f.opts.Columns, "columns", "c", nil, "columns to show, in order")
	fl.StringVarP(&f.opts.Format, "format", "o", "", "output format: table, json or yaml")
	fl.IntVar(&f.opts.Limit, "limit", 0, "maximum items fetched per project")
	fl.BoolVar(&f.mine, "mine", false, "only items assigned to me")
	fl.BoolVar(&f.unassigned, "unassigned", false, "only items without assignees")
	fl.BoolVar(&f.hideDone, "hide-done", false, "hide items in a done status")
	fl.StringVar(&f.shortcut, "shortcut", "", "apply a named shortcut from the config")
}

// layer returns the flag layer. Boolean flags only count when given.
func (f *viewFlags) layer(cmd *cobra.Command) config.ViewOptions {
	opts := f.opts
	if cmd.Flags().Changed("mine") {
		opts.Mine = config.Bool(f.mine)
	}
	if cmd.Flags().Changed("unassigned") {
		opts.Unassigned = config.Bool(f.unassigned)
	}
	if cmd.Flags().Changed("hide-done") {
		opts.HideDone = config.Bool(f.hideDone)
	}
	return opts
}

func newPlanCmd(a *app) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show project items as grouped tables",
		Long: `Show the items of the configured projects, filtered, sorted and grouped.

Options are layered: config "view" < --shortcut < flags.`,
		Example: `  ghpm plan --status Todo --group-by priority
  ghpm plan --view "Current sprint" --sort -status,-number
  ghpm plan --slice priority=high --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBoard(cmd, nil, &flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newWorkCmd(a *app) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "work",
		Short: "Show my open items in board order",
		Long: `Show the items assigned to me, hiding done items, grouped by status.
The item linked to the checked-out branch is marked with "*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preset := config.WorkPreset()
			return a.runBoard(cmd, &preset, &flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

// runBoard merges the option layers, fetches the boards and renders them.
func (a *app) runBoard(cmd *cobra.Command, preset *config.ViewOptions, flags *viewFlags, markLinked bool) error {
	ctx := cmd.Context()
	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	layers := []config.ViewOptions{s.Config.View}
	if preset != nil {
		layers = append(layers, *preset)
	}
	if flags.shortcut != "" {
		sc, err := s.Config.Shortcut(flags.shortcut)
		if err != nil {
			return err
		}
		layers = append(layers, sc)
	}
	layers = append(layers, flags.layer(cmd))
	opts := config.MergeOptions(layers...)

	refs, err := selectProjects(s.Config, opts.Projects)
	if err != nil {
		return err
	}
	client, err := s.Client()
	if err != nil {
		return err
	}

	me, err := s.Username(ctx)
	if err != nil {
		if config.Flag(opts.Mine) {
			return err
		}
		s.Log.Warnw("could not determine the current user", "error", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	boards, err := fetchBoards(ctx, client, refs, limit, opts.View != "")
	if err != nil {
		return err
	}

	groups, err := buildView(boards, viewInput{Options: opts, DoneStatuses: s.Config.Statuses.Done, Me: me}, s.Log)
	if err != nil {
		return err
	}

	columns := opts.Columns
	if len(columns) == 0 {
		columns = layout.DefaultColumns
	}
	cols := layout.Columns(columns)
	widths := layout.ComputeWidths(layout.Flatten(groups), cols, layout.TerminalWidth(os.Stdout))

	table := layout.TableOptions{Headers: len(groups) == 1}
	if markLinked {
		if linked, ok := a.linkedIssue(ctx, s); ok {
			table.Marked = linkedMarker(linked)
		}
	}

	return layout.Write(cmd.OutOrStdout(), opts.Format, groups, cols, widths, table)
}

// linkedMarker marks the item of the linked issue.
func linkedMarker(linked domain.IssueRef) func(domain.Item) bool {
	return func(item domain.Item) bool {
		ref, ok := item.Ref()
		return ok && ref.Equal(linked)
	}
}

// linkedIssue returns the issue linked to the checked-out branch.
func (a *app) linkedIssue(ctx context.Context, s *session.Session) (domain.IssueRef, bool) {
	if s.Git == nil {
		return domain.IssueRef{}, false
	}
	repo, err := s.Repo(ctx)
	if err != nil {
		return domain.IssueRef{}, false
	}
	branch, err := s.Git.CurrentBranch(ctx)
	if err != nil || branch == "" {
		return domain.IssueRef{}, false
	}
	link := s.Links.IssueFor(repo, branch)
	if link == nil {
		return domain.IssueRef{}, false
	}
	return domain.IssueRef{Repo: link.Repo, Number: link.Issue}, true
}
