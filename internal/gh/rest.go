package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"github.com/h0rv/ghpm/internal/domain"
)

// Issue is a repository issue or pull request as returned by the REST API.
type Issue struct {
	NodeID      string
	Repo        string
	Number      int
	Title       string
	Body        string
	State       string
	URL         string
	Author      string
	Assignees   []string
	Labels      []domain.Label
	PullRequest bool
}

// Viewer returns the login and node ID of the authenticated user.
func (c *Client) Viewer(ctx context.Context) (login, nodeID string, err error) {
	if err := c.wait(ctx); err != nil {
		return "", "", err
	}
	user, _, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		return "", "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), user.GetNodeID(), nil
}

// userNodeID returns the node ID of a login.
func (c *Client) userNodeID(ctx context.Context, login string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	user, _, err := c.rest.Users.Get(ctx, login)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", login, err)
	}
	return user.GetNodeID(), nil
}

// GetIssue fetches an issue or pull request.
func (c *Client) GetIssue(ctx context.Context, ref domain.IssueRef) (*Issue, error) {
	owner, name, err := splitRepo(ref.Repo)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	gi, _, err := c.rest.Issues.Get(ctx, owner, name, ref.Number)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}

	issue := &Issue{
		NodeID:      gi.GetNodeID(),
		Repo:        ref.Repo,
		Number:      gi.GetNumber(),
		Title:       gi.GetTitle(),
		Body:        gi.GetBody(),
		State:       gi.GetState(),
		URL:         gi.GetHTMLURL(),
		Author:      gi.GetUser().GetLogin(),
		PullRequest: gi.IsPullRequest(),
	}
	for _, a := range gi.Assignees {
		issue.Assignees = append(issue.Assignees, a.GetLogin())
	}
	for _, l := range gi.Labels {
		issue.Labels = append(issue.Labels, domain.Label{Name: l.GetName(), Color: l.GetColor()})
	}
	return issue, nil
}

// EnsureLabel creates the label in repo. A label that already exists is not an error.
func (c *Client) EnsureLabel(ctx context.Context, repo, name, color string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, _, err = c.rest.Issues.CreateLabel(ctx, owner, repoName, &github.Label{
		Name:  github.String(name),
		Color: github.String(color),
	})
	if err == nil {
		c.log.Infow("created label", "repo", repo, "label", name)
		return nil
	}
	if alreadyExists(err) {
		return nil
	}
	return fmt.Errorf("failed to create label %s in %s: %w", name, repo, err)
}

// alreadyExists reports whether a REST error is GitHub's 422 "already_exists".
func alreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil || ghErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, e := range ghErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}

// labelNodeID returns the node ID of a label, creating the label when missing.
func (c *Client) labelNodeID(ctx context.Context, repo, name string) (string, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	label, _, err := c.rest.Issues.GetLabel(ctx, owner, repoName, name)
	if err == nil {
		return label.GetNodeID(), nil
	}
	if !isStatus(err, http.StatusNotFound) {
		return "", fmt.Errorf("failed to look up label %s: %w", name, err)
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	label, _, err = c.rest.Issues.CreateLabel(ctx, owner, repoName, &github.Label{Name: github.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to create label %s: %w", name, err)
	}
	return label.GetNodeID(), nil
}

// AddLabel adds a label to an issue.
func (c *Client) AddLabel(ctx context.Context, repo string, issue int, name string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if _, _, err := c.rest.Issues.AddLabelsToIssue(ctx, owner, repoName, issue, []string{name}); err != nil {
		return fmt.Errorf("failed to add label %s to %s#%d: %w", name, repo, issue, err)
	}
	return nil
}

// RemoveLabel removes a label from an issue. A label that is not present is not an error.
func (c *Client) RemoveLabel(ctx context.Context, repo string, issue int, name string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err = c.rest.Issues.RemoveLabelForIssue(ctx, owner, repoName, issue, name)
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("failed to remove label %s from %s#%d: %w", name, repo, issue, err)
	}
	return nil
}

// IssuesWithLabel returns the numbers of open issues in repo carrying label.
// Pull requests are skipped.
func (c *Client) IssuesWithLabel(ctx context.Context, repo, name string) ([]int, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      []string{name},
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	var numbers []int
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.rest.Issues.ListByRepo(ctx, owner, repoName, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues labeled %s in %s: %w", name, repo, err)
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			numbers = append(numbers, issue.GetNumber())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return numbers, nil
}
