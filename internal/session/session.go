// Package session bundles the per-invocation collaborators of a command:
// configuration, logger, GitHub client, git checkout and link store.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/h0rv/ghpm/internal/active"
	"github.com/h0rv/ghpm/internal/auth"
	"github.com/h0rv/ghpm/internal/config"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/gh"
	"github.com/h0rv/ghpm/internal/git"
	"github.com/h0rv/ghpm/internal/links"
	"github.com/h0rv/ghpm/internal/logging"
	"go.uber.org/zap"
)

// Options are the global command-line settings.
type Options struct {
	ConfigFile string
	Repo       string
	Verbose    bool
}

// Session is created once per command invocation.
type Session struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	Git    *git.Repo // nil outside a git checkout
	Links  *links.Store

	repoFlag string

	clientOnce sync.Once
	client     *gh.Client
	clientErr  error

	userOnce sync.Once
	user     string
	userErr  error
}

// New loads configuration and builds the logger. The GitHub client is created
// lazily so that offline commands work without a token.
func New(ctx context.Context, opts Options) (*Session, error) {
	repo, err := git.Open(ctx, "")
	if err != nil && !errors.Is(err, git.ErrNotRepository) {
		return nil, err
	}

	workspace := ""
	if repo != nil {
		if root, err := repo.Root(ctx); err == nil {
			workspace = root
		}
	}

	cfg, err := config.Load(config.LoadOptions{WorkspaceDir: workspace, ConfigFile: opts.ConfigFile})
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log, err := logging.New(level, os.Stderr)
	if err != nil {
		return nil, err
	}

	linkPath := cfg.Links.Path
	if linkPath == "" {
		if linkPath, err = links.DefaultPath(); err != nil {
			return nil, err
		}
	}

	log.Debugw("session ready", "workspace", workspace, "links", linkPath)
	return &Session{
		Config:   cfg,
		Log:      log,
		Git:      repo,
		Links:    links.New(linkPath, log),
		repoFlag: opts.Repo,
	}, nil
}

// Client returns the authenticated GitHub client, creating it on first use.
func (s *Session) Client() (*gh.Client, error) {
	s.clientOnce.Do(func() {
		token, err := auth.GetToken(s.Config.Token)
		if err != nil {
			s.clientErr = err
			return
		}
		s.client, s.clientErr = gh.New(gh.Options{
			Token:     token,
			RateLimit: s.Config.API.RateLimit,
			Timeout:   s.Config.API.Timeout,
		}, s.Log)
	})
	return s.client, s.clientErr
}

// Username returns the authenticated user's login, fetched once.
func (s *Session) Username(ctx context.Context) (string, error) {
	s.userOnce.Do(func() {
		client, err := s.Client()
		if err != nil {
			s.userErr = err
			return
		}
		s.user, _, s.userErr = client.Viewer(ctx)
	})
	return s.user, s.userErr
}

// Repo returns the repository commands operate on: the --repo flag, the
// configured repo, else the origin remote of the checkout.
func (s *Session) Repo(ctx context.Context) (string, error) {
	if s.repoFlag != "" {
		return s.repoFlag, nil
	}
	if s.Config.Repo != "" {
		return s.Config.Repo, nil
	}
	if s.Git == nil {
		return "", fmt.Errorf("no repository: use --repo or run inside a git checkout")
	}
	return s.Git.RemoteRepo(ctx)
}

// RequireGit returns the git checkout or git.ErrNotRepository.
func (s *Session) RequireGit() (*git.Repo, error) {
	if s.Git == nil {
		return nil, git.ErrNotRepository
	}
	return s.Git, nil
}

// IssueRef parses an issue argument against the session repository.
func (s *Session) IssueRef(ctx context.Context, arg string) (domain.IssueRef, error) {
	repo, _ := s.Repo(ctx)
	return domain.ParseIssueRef(arg, repo)
}

// Reconciler returns an active-label reconciler backed by the GitHub client.
func (s *Session) Reconciler() (*active.Reconciler, error) {
	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	return active.New(client, s.Log), nil
}
