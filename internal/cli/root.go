// Package cli implements the ghpm command tree.
package cli

import (
	"context"
	"io"

	"github.com/h0rv/ghpm/internal/session"
	"github.com/spf13/cobra"
)

// app carries the global flags and the per-invocation session.
type app struct {
	opts session.Options
	sess *session.Session
}

// session creates the invocation session on first use.
func (a *app) session(ctx context.Context) (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	s, err := session.New(ctx, a.opts)
	if err != nil {
		return nil, err
	}
	a.sess = s
	return s, nil
}

// NewRootCmd builds the ghpm command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ghpm",
		Short: "Plan and track work on GitHub Projects v2 from the terminal",
		Long: `ghpm shows GitHub Projects v2 boards as grouped tables and ties
issues to local git branches.

Authentication:
  1. token in the config file
  2. GHPM_TOKEN, GH_TOKEN or GITHUB_TOKEN (also read from .env)
  3. GitHub CLI: run 'gh auth login'

Configuration is read from ~/.config/ghpm/config.json, then .ghpm.json at
the repository root, then --config, then GHPM_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.opts.Repo, "repo", "", "repository as owner/name (default: config repo, then the origin remote)")
	rootCmd.PersistentFlags().StringVar(&a.opts.ConfigFile, "config", "", "additional config file")
	rootCmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(
		newPlanCmd(a),
		newWorkCmd(a),
		newStartCmd(a),
		newSwitchCmd(a),
		newSyncCmd(a),
		newLinkBranchCmd(a),
		newUnlinkBranchCmd(a),
		newLinksCmd(a),
		newMoveCmd(a),
		newCreateCmd(a),
		newOpenCmd(a),
		newShowCmd(a),
		newCommentCmd(a),
		newPRCmd(a),
		newProjectsCmd(a),
	)

	return rootCmd
}

// Execute runs the command tree with ctx and returns the first error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}
