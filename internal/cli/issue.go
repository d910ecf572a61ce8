package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/gh"
	"github.com/h0rv/ghpm/internal/layout"
	"github.com/h0rv/ghpm/internal/links"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move ISSUE STATUS",
		Short: "Set the project status of an issue",
		Example: `  ghpm move 42 "In Review"
  ghpm move acme/api#7 done`,
		Args: cobra.ExactArgs(2),
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
			if _, err := setStatus(ctx, s, ref, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", ref, args[1])
			return nil
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		in       gh.NewIssue
		edit     bool
		assignMe bool
		status   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue and add it to the first configured project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}

			if edit || in.Title == "" {
				if !layout.IsTerminal(os.Stdin) {
					return errors.New("--title is required when not running on a terminal")
				}
				text, err := editText(ctx, editorTemplate(in.Title, in.Body))
				if err != nil {
					return err
				}
				if in.Title, in.Body, err = parseEdited(text); err != nil {
					return err
				}
			}

			if in.Repo, err = s.Repo(ctx); err != nil {
				return err
			}
			if assignMe {
				me, err := s.Username(ctx)
				if err != nil {
					return err
				}
				in.Assignees = append(in.Assignees, me)
			}

			client, err := s.Client()
			if err != nil {
				return err
			}
			created, err := client.CreateIssue(ctx, in)
			if err != nil {
				return err
			}
			ref := domain.IssueRef{Repo: in.Repo, Number: created.Number}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", ref, created.URL)

			if len(s.Config.Projects) == 0 {
				return nil
			}
			pref := s.Config.Projects[0]
			ps, err := loadProjectStatus(ctx, client, pref.Owner, pref.Number)
			if err != nil {
				return err
			}
			itemID, err := client.AddItemToProject(ctx, ps.Project.ID, created.NodeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added to %s\n", ps.Project.Title)

			if status == "" {
				return nil
			}
			if err := updateStatus(ctx, client, ps, itemID, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", ref, status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "issue title")
	cmd.Flags().StringVar(&in.Body, "body", "", "issue body (markdown)")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "write title and body in $VISUAL or $EDITOR")
	cmd.Flags().StringArrayVarP(&in.Labels, "label", "l", nil, "label to add, created when missing (repeatable)")
	cmd.Flags().BoolVar(&assignMe, "assign-me", false, "assign the issue to me")
	cmd.Flags().StringVarP(&status, "status", "s", "", "initial project status")
	return cmd
}

// issueURL is the web URL of an issue. GitHub redirects it for pull requests.
func issueURL(ref domain.IssueRef) string {
	return fmt.Sprintf("https://github.com/%s/issues/%d", ref.Repo, ref.Number)
}

func newOpenCmd(a *app) *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "open ISSUE",
		Short: "Open an issue in the browser",
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
			return openOrCopy(cmd.OutOrStdout(), issueURL(ref), copyURL)
		},
	}
	cmd.Flags().BoolVar(&copyURL, "copy", false, "copy the URL to the clipboard instead")
	return cmd
}

func openOrCopy(w io.Writer, target string, copyURL bool) error {
	if copyURL {
		if err := clipboard.WriteAll(target); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		fmt.Fprintf(w, "Copied %s\n", target)
		return nil
	}
	fmt.Fprintf(w, "Opening %s\n", target)
	return browser.OpenURL(target)
}

// compareURL is the pull request page for branch, prefilled from its link.
func compareURL(repo, branch string, link *domain.BranchLink) string {
	u := url.URL{
		Scheme: "https",
		Host:   "github.com",
		Path:   fmt.Sprintf("/%s/compare/%s", repo, branch),
	}
	q := url.Values{}
	q.Set("expand", "1")
	if link != nil {
		if link.Title != "" {
			q.Set("title", link.Title)
		}
		q.Set("body", fmt.Sprintf("Closes #%d", link.Issue))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func newPRCmd(a *app) *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Open a pull request for the current branch",
		Long: `Open the compare page for the current branch. When the branch is
linked to an issue, the title and "Closes #N" are prefilled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			repo, err := s.RequireGit()
			if err != nil {
				return err
			}
			name, err := s.Repo(ctx)
			if err != nil {
				return err
			}
			branch, err := repo.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			if branch == "" {
				return errors.New("HEAD is detached")
			}

			link := s.Links.IssueFor(name, branch)
			if link == nil {
				s.Log.Warnw("branch has no linked issue", "branch", branch, "error", links.ErrNoLink)
			}
			return openOrCopy(cmd.OutOrStdout(), compareURL(name, branch, link), copyURL)
		},
	}
	cmd.Flags().BoolVar(&copyURL, "copy", false, "copy the URL to the clipboard instead")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var comments bool

	cmd := &cobra.Command{
		Use:   "show ISSUE",
		Short: "Show an issue with its rendered body",
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
			client, err := s.Client()
			if err != nil {
				return err
			}
			issue, err := client.GetIssue(ctx, ref)
			if err != nil {
				return err
			}

			var list []domain.Comment
			if comments {
				if list, err = client.GetComments(ctx, ref); err != nil {
					return err
				}
			}
			return writeIssue(cmd.OutOrStdout(), issue, list, layout.TerminalWidth(os.Stdout))
		},
	}
	cmd.Flags().BoolVar(&comments, "comments", false, "also show comments")
	return cmd
}

// writeIssue prints the issue header, its markdown body and comments.
func writeIssue(w io.Writer, issue *gh.Issue, comments []domain.Comment, width int) error {
	ref := domain.IssueRef{Repo: issue.Repo, Number: issue.Number}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s %s", ref, issue.Title)))
	meta := []string{strings.ToLower(issue.State), "by " + issue.Author}
	if len(issue.Assignees) > 0 {
		meta = append(meta, "assigned to "+strings.Join(issue.Assignees, ", "))
	}
	if len(issue.Labels) > 0 {
		names := make([]string, len(issue.Labels))
		for i, l := range issue.Labels {
			names[i] = l.Name
		}
		meta = append(meta, "labels: "+strings.Join(names, ", "))
	}
	fmt.Fprintln(w, metaStyle.Render(strings.Join(meta, " · ")))
	fmt.Fprintln(w, metaStyle.Render(issue.URL))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width, 100)),
	)
	if err != nil {
		return err
	}

	body := issue.Body
	if strings.TrimSpace(body) == "" {
		body = "_No description provided._"
	}
	out, err := r.Render(body)
	if err != nil {
		return err
	}
	fmt.Fprint(w, out)

	for _, c := range comments {
		author := c.Author
		if author == "" {
			author = "ghost"
		}
		fmt.Fprintln(w, titleStyle.Render(author)+" "+metaStyle.Render(c.CreatedAt))
		out, err := r.Render(c.Body)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
	}
	return nil
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment ISSUE [BODY]",
		Short: "Comment on an issue, in the editor when BODY is omitted",
		Args:  cobra.RangeArgs(1, 2),
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

			var body string
			if len(args) == 2 {
				body = args[1]
			} else {
				if body, err = editComment(ctx); err != nil {
					return err
				}
			}
			if strings.TrimSpace(body) == "" {
				return errors.New("empty comment, aborting")
			}

			client, err := s.Client()
			if err != nil {
				return err
			}
			if err := client.AddComment(ctx, ref, body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented on %s\n", ref)
			return nil
		},
	}
}

func editComment(ctx context.Context) (string, error) {
	if !layout.IsTerminal(os.Stdin) {
		return "", errors.New("a comment body is required when not running on a terminal")
	}
	text, err := editText(ctx, "\n"+editorHint+"\n")
	if err != nil {
		return "", err
	}
	return stripComments(text), nil
}

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects [OWNER]",
		Short: "List open projects of an owner, or of me and my organizations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			client, err := s.Client()
			if err != nil {
				return err
			}

			var owners []gh.Owner
			if len(args) == 1 {
				owner, err := client.ResolveOwner(ctx, args[0])
				if err != nil {
					return err
				}
				owners = []gh.Owner{owner}
			} else if owners, err = client.GetViewerAndOrgs(ctx); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, owner := range owners {
				projects, err := client.ListProjects(ctx, owner)
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					continue
				}
				fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s)", owner.Login, strings.ToLower(string(owner.Type)))))
				for _, p := range projects {
					fmt.Fprintf(w, "  %s %s\n", metaStyle.Render(fmt.Sprintf("%4d", p.Number)), p.Title)
				}
			}
			return nil
		},
	}
}
