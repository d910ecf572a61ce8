package gh

import (
	"context"
	"fmt"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/shurcooL/githubv4"
)

// CreatedIssue is the result of CreateIssue.
type CreatedIssue struct {
	NodeID string
	Number int
	URL    string
}

// NewIssue describes an issue to create.
type NewIssue struct {
	Repo      string
	Title     string
	Body      string
	Labels    []string // names, created when missing
	Assignees []string // logins
}

// RepositoryID returns the GraphQL node ID of a repository.
func (c *Client) RepositoryID(ctx context.Context, repo string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	var q struct {
		Repository struct {
			ID githubv4.ID
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	if err := c.v4.Query(ctx, &q, vars); err != nil {
		return "", fmt.Errorf("failed to look up repository %s: %w", repo, err)
	}
	return fmt.Sprint(q.Repository.ID), nil
}

// CreateIssue creates an issue, resolving label names and assignee logins to node IDs.
func (c *Client) CreateIssue(ctx context.Context, in NewIssue) (*CreatedIssue, error) {
	repoID, err := c.RepositoryID(ctx, in.Repo)
	if err != nil {
		return nil, err
	}

	input := githubv4.CreateIssueInput{
		RepositoryID: githubv4.ID(repoID),
		Title:        githubv4.String(in.Title),
	}
	if in.Body != "" {
		body := githubv4.String(in.Body)
		input.Body = &body
	}

	if len(in.Labels) > 0 {
		ids := make([]githubv4.ID, 0, len(in.Labels))
		for _, name := range in.Labels {
			id, err := c.labelNodeID(ctx, in.Repo, name)
			if err != nil {
				return nil, err
			}
			ids = append(ids, githubv4.ID(id))
		}
		input.LabelIDs = &ids
	}

	if len(in.Assignees) > 0 {
		ids := make([]githubv4.ID, 0, len(in.Assignees))
		for _, login := range in.Assignees {
			id, err := c.userNodeID(ctx, login)
			if err != nil {
				return nil, err
			}
			ids = append(ids, githubv4.ID(id))
		}
		input.AssigneeIDs = &ids
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var m struct {
		CreateIssue struct {
			Issue struct {
				ID     githubv4.ID
				Number githubv4.Int
				URL    githubv4.URI
			}
		} `graphql:"createIssue(input: $input)"`
	}
	if err := c.v4.Mutate(ctx, &m, input, nil); err != nil {
		return nil, fmt.Errorf("failed to create issue in %s: %w", in.Repo, err)
	}

	c.log.Infow("created issue", "repo", in.Repo, "number", int(m.CreateIssue.Issue.Number))
	return &CreatedIssue{
		NodeID: fmt.Sprint(m.CreateIssue.Issue.ID),
		Number: int(m.CreateIssue.Issue.Number),
		URL:    m.CreateIssue.Issue.URL.String(),
	}, nil
}

// AddItemToProject adds an issue or pull request to a project and returns the item ID.
func (c *Client) AddItemToProject(ctx context.Context, projectID, contentID string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID githubv4.ID
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(contentID),
	}
	if err := c.v4.Mutate(ctx, &m, input, nil); err != nil {
		return "", fmt.Errorf("failed to add item to project: %w", err)
	}
	return fmt.Sprint(m.AddProjectV2ItemByID.Item.ID), nil
}

// UpdateItemStatus sets a project item's single-select status option.
func (c *Client) UpdateItemStatus(ctx context.Context, projectID, itemID string, status domain.StatusField, option domain.Option) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var m struct {
		UpdateProjectV2ItemFieldValue struct {
			ProjectV2Item struct {
				ID githubv4.ID
			}
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}
	optionID := githubv4.String(option.ID)
	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(projectID),
		ItemID:    githubv4.ID(itemID),
		FieldID:   githubv4.ID(status.FieldID),
		Value:     githubv4.ProjectV2FieldValue{SingleSelectOptionID: &optionID},
	}
	if err := c.v4.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}

	c.log.Debugw("updated item status", "item", itemID, "status", option.Name)
	return nil
}

// AddComment adds a comment to an issue or pull request.
func (c *Client) AddComment(ctx context.Context, ref domain.IssueRef, body string) error {
	issue, err := c.GetIssue(ctx, ref)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	var m struct {
		AddComment struct {
			CommentEdge struct {
				Node struct {
					ID githubv4.ID
				}
			}
		} `graphql:"addComment(input: $input)"`
	}
	input := githubv4.AddCommentInput{
		SubjectID: githubv4.ID(issue.NodeID),
		Body:      githubv4.String(body),
	}
	if err := c.v4.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}
