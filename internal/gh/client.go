// Package gh is the GitHub API client: project items, views and fields over
// GraphQL, issue and project mutations, and label operations over REST.
// All three transports share one authenticated HTTP client and rate limiter.
package gh

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/machinebox/graphql"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var (
	// ErrProjectNotFound indicates the owner has no project with the given number.
	ErrProjectNotFound = errors.New("project not found")
	// ErrViewNotFound indicates the project has no saved view with the given name.
	ErrViewNotFound = errors.New("view not found")
	// ErrStatusNotFound indicates a status name that matches no Status option.
	ErrStatusNotFound = errors.New("status not found")
	// ErrNoStatusField indicates the project has no single-select Status field.
	ErrNoStatusField = errors.New("project has no Status field")
	// ErrIssueNotFound indicates an issue number that does not exist in the repository.
	ErrIssueNotFound = errors.New("issue not found")
)

// Default API settings.
const (
	DefaultGraphQLURL = "https://api.github.com/graphql"
	DefaultRateLimit  = 5000 // requests per hour
	DefaultTimeout    = 30 * time.Second
	rateBurst         = 10
	pageSize          = 100
)

// Options configures a Client. Zero values use the defaults above.
type Options struct {
	Token      string
	RateLimit  int // requests per hour
	Timeout    time.Duration
	GraphQLURL string // override for GitHub Enterprise and tests
	RESTURL    string // override for GitHub Enterprise and tests, must end in "/"
}

// Client is a GitHub API client for Projects v2 work tracking.
type Client struct {
	gql     *graphql.Client  // read queries
	v4      *githubv4.Client // mutations
	rest    *github.Client   // labels, issues, users
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// New creates a Client authenticated with opts.Token.
func New(opts Options, log *zap.SugaredLogger) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("a GitHub token is required")
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.GraphQLURL == "" {
		opts.GraphQLURL = DefaultGraphQLURL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = opts.Timeout

	rest := github.NewClient(httpClient)
	if opts.RESTURL != "" {
		base, err := url.Parse(opts.RESTURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST URL: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		rest.BaseURL = base
	}

	return &Client{
		gql:     graphql.NewClient(opts.GraphQLURL, graphql.WithHTTPClient(httpClient)),
		v4:      githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient),
		rest:    rest,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RateLimit)/3600), rateBurst),
		log:     log,
	}, nil
}

// wait blocks until the rate limiter admits one more request.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// makeRequest executes a GraphQL read query.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	err := c.gql.Run(ctx, req, resp)
	c.log.Debugw("graphql query", "duration_ms", time.Since(start).Milliseconds(), "error", err)
	return err
}

// isStatus reports whether err is a REST error with the given HTTP status.
func isStatus(err error, code int) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == code
}

// splitRepo returns the owner and name of "owner/name".
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q (want owner/name)", repo)
	}
	return owner, name, nil
}
