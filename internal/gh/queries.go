package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/machinebox/graphql"
)

// OwnerType represents whether an owner is an organization or user.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "Organization"
	OwnerTypeUser         OwnerType = "User"
)

// Owner represents an owner (user or organization) that can have projects.
type Owner struct {
	Login string
	ID    string
	Type  OwnerType
}

// GetViewerAndOrgs returns the authenticated user followed by their organizations.
func (c *Client) GetViewerAndOrgs(ctx context.Context) ([]Owner, error) {
	req := graphql.NewRequest(`
		query {
			viewer {
				login
				id
				organizations(first: 100) {
					nodes {
						login
						id
					}
				}
			}
		}
	`)

	var resp struct {
		Viewer struct {
			Login         string `json:"login"`
			ID            string `json:"id"`
			Organizations struct {
				Nodes []struct {
					Login string `json:"login"`
					ID    string `json:"id"`
				} `json:"nodes"`
			} `json:"organizations"`
		} `json:"viewer"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get viewer and orgs: %w", err)
	}

	owners := make([]Owner, 0, 1+len(resp.Viewer.Organizations.Nodes))
	owners = append(owners, Owner{Login: resp.Viewer.Login, ID: resp.Viewer.ID, Type: OwnerTypeUser})
	for _, org := range resp.Viewer.Organizations.Nodes {
		owners = append(owners, Owner{Login: org.Login, ID: org.ID, Type: OwnerTypeOrganization})
	}

	return owners, nil
}

// ResolveOwner determines if a login is an organization or user.
func (c *Client) ResolveOwner(ctx context.Context, login string) (Owner, error) {
	req := graphql.NewRequest(`
		query($login: String!) {
			repositoryOwner(login: $login) {
				__typename
				id
				login
			}
		}
	`)
	req.Var("login", login)

	var resp struct {
		RepositoryOwner *struct {
			Typename string `json:"__typename"`
			ID       string `json:"id"`
			Login    string `json:"login"`
		} `json:"repositoryOwner"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Owner{}, fmt.Errorf("failed to resolve owner: %w", err)
	}
	if resp.RepositoryOwner == nil {
		return Owner{}, fmt.Errorf("login '%s' not found (neither organization nor user)", login)
	}

	return Owner{
		Login: resp.RepositoryOwner.Login,
		ID:    resp.RepositoryOwner.ID,
		Type:  OwnerType(resp.RepositoryOwner.Typename),
	}, nil
}

// projectFragment selects the same project fields on either owner type.
const projectFragment = `
	... on Organization { %[1]s }
	... on User { %[1]s }
`

// ListProjects lists the open projects of an owner.
func (c *Client) ListProjects(ctx context.Context, owner Owner) ([]domain.Project, error) {
	req := graphql.NewRequest(`
		query($id: ID!) {
			node(id: $id) {
				` + fmt.Sprintf(projectFragment, `projectsV2(first: 100) { nodes { id number title closed } }`) + `
			}
		}
	`)
	req.Var("id", owner.ID)

	var resp struct {
		Node struct {
			ProjectsV2 struct {
				Nodes []struct {
					ID     string `json:"id"`
					Number int    `json:"number"`
					Title  string `json:"title"`
					Closed bool   `json:"closed"`
				} `json:"nodes"`
			} `json:"projectsV2"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(resp.Node.ProjectsV2.Nodes))
	for _, node := range resp.Node.ProjectsV2.Nodes {
		if node.Closed {
			continue
		}
		projects = append(projects, domain.Project{
			ID:     node.ID,
			Number: node.Number,
			Title:  node.Title,
			Owner:  owner.Login,
		})
	}

	return projects, nil
}

// GetProject looks up a project by owner login and number.
func (c *Client) GetProject(ctx context.Context, login string, number int) (*domain.Project, error) {
	owner, err := c.ResolveOwner(ctx, login)
	if err != nil {
		return nil, err
	}

	req := graphql.NewRequest(`
		query($id: ID!, $number: Int!) {
			node(id: $id) {
				` + fmt.Sprintf(projectFragment, `projectV2(number: $number) { id number title }`) + `
			}
		}
	`)
	req.Var("id", owner.ID)
	req.Var("number", number)

	var resp struct {
		Node struct {
			ProjectV2 *struct {
				ID     string `json:"id"`
				Number int    `json:"number"`
				Title  string `json:"title"`
			} `json:"projectV2"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get project %s/%d: %w", login, number, err)
	}
	if resp.Node.ProjectV2 == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrProjectNotFound, login, number)
	}

	return &domain.Project{
		ID:     resp.Node.ProjectV2.ID,
		Number: resp.Node.ProjectV2.Number,
		Title:  resp.Node.ProjectV2.Title,
		Owner:  owner.Login,
	}, nil
}

// GetProjectFields fetches all fields for a project, including options for SINGLE_SELECT fields.
// Options are returned in their configured order (the order shown in the project UI).
func (c *Client) GetProjectFields(ctx context.Context, projectID string) ([]domain.FieldDef, error) {
	req := graphql.NewRequest(`
		query($projectId: ID!) {
			node(id: $projectId) {
				... on ProjectV2 {
					fields(first: 50) {
						nodes {
							... on ProjectV2Field {
								id
								name
								dataType
							}
							... on ProjectV2SingleSelectField {
								id
								name
								dataType
								options {
									id
									name
									color
								}
							}
							... on ProjectV2IterationField {
								id
								name
								dataType
							}
						}
					}
				}
			}
		}
	`)
	req.Var("projectId", projectID)

	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					DataType string `json:"dataType"`
					Options  []struct {
						ID    string `json:"id"`
						Name  string `json:"name"`
						Color string `json:"color"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get project fields: %w", err)
	}

	fields := make([]domain.FieldDef, 0, len(resp.Node.Fields.Nodes))
	for idx, node := range resp.Node.Fields.Nodes {
		field := domain.FieldDef{
			ID:    node.ID,
			Name:  node.Name,
			Type:  node.DataType,
			Order: idx,
		}
		if node.DataType == domain.FieldTypeSingleSelect {
			field.Options = make([]domain.Option, 0, len(node.Options))
			for optIdx, opt := range node.Options {
				field.Options = append(field.Options, domain.Option{
					ID:    opt.ID,
					Name:  opt.Name,
					Color: opt.Color,
					Order: optIdx,
				})
			}
		}
		fields = append(fields, field)
	}

	return fields, nil
}

// StatusField picks the project's Status field: the single-select field named
// "Status", else the first single-select field.
func StatusField(fields []domain.FieldDef) (domain.StatusField, error) {
	var fallback *domain.FieldDef
	for i := range fields {
		f := &fields[i]
		if f.Type != domain.FieldTypeSingleSelect {
			continue
		}
		if strings.EqualFold(f.Name, "Status") {
			return domain.StatusField{FieldID: f.ID, Name: f.Name, Options: f.Options}, nil
		}
		if fallback == nil {
			fallback = f
		}
	}
	if fallback != nil {
		return domain.StatusField{FieldID: fallback.ID, Name: fallback.Name, Options: fallback.Options}, nil
	}
	return domain.StatusField{}, ErrNoStatusField
}

// StatusOption finds a Status option by case-insensitive name.
func StatusOption(field domain.StatusField, name string) (domain.Option, error) {
	names := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		if strings.EqualFold(opt.Name, strings.TrimSpace(name)) {
			return opt, nil
		}
		names = append(names, opt.Name)
	}
	return domain.Option{}, fmt.Errorf("%w: %q (options: %s)", ErrStatusNotFound, name, strings.Join(names, ", "))
}

// GetViews returns the project's saved views with their filter expressions.
func (c *Client) GetViews(ctx context.Context, projectID string) ([]domain.View, error) {
	req := graphql.NewRequest(`
		query($projectId: ID!) {
			node(id: $projectId) {
				... on ProjectV2 {
					views(first: 50) {
						nodes {
							name
							filter
						}
					}
				}
			}
		}
	`)
	req.Var("projectId", projectID)

	var resp struct {
		Node struct {
			Views struct {
				Nodes []struct {
					Name   string `json:"name"`
					Filter string `json:"filter"`
				} `json:"nodes"`
			} `json:"views"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get views: %w", err)
	}

	views := make([]domain.View, 0, len(resp.Node.Views.Nodes))
	for _, node := range resp.Node.Views.Nodes {
		views = append(views, domain.View{Name: node.Name, Filter: node.Filter})
	}
	return views, nil
}

// FindView returns the view with the given case-insensitive name.
func FindView(views []domain.View, name string) (domain.View, error) {
	for _, v := range views {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return domain.View{}, fmt.Errorf("%w: %q", ErrViewNotFound, name)
}

// FindProjectItem returns the item ID of an issue in a project.
func (c *Client) FindProjectItem(ctx context.Context, ref domain.IssueRef, projectID string) (string, error) {
	owner, name, err := splitRepo(ref.Repo)
	if err != nil {
		return "", err
	}

	req := graphql.NewRequest(`
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issueOrPullRequest(number: $number) {
					... on Issue {
						projectItems(first: 50) { nodes { id project { id } } }
					}
					... on PullRequest {
						projectItems(first: 50) { nodes { id project { id } } }
					}
				}
			}
		}
	`)
	req.Var("owner", owner)
	req.Var("repo", name)
	req.Var("number", ref.Number)

	var resp struct {
		Repository struct {
			IssueOrPullRequest *struct {
				ProjectItems struct {
					Nodes []struct {
						ID      string `json:"id"`
						Project struct {
							ID string `json:"id"`
						} `json:"project"`
					} `json:"nodes"`
				} `json:"projectItems"`
			} `json:"issueOrPullRequest"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return "", fmt.Errorf("failed to look up project item for %s: %w", ref, err)
	}
	if resp.Repository.IssueOrPullRequest == nil {
		return "", fmt.Errorf("%w: %s", ErrIssueNotFound, ref)
	}
	for _, node := range resp.Repository.IssueOrPullRequest.ProjectItems.Nodes {
		if node.Project.ID == projectID {
			return node.ID, nil
		}
	}
	return "", nil
}

// GetComments fetches comments for an issue or pull request.
func (c *Client) GetComments(ctx context.Context, ref domain.IssueRef) ([]domain.Comment, error) {
	owner, name, err := splitRepo(ref.Repo)
	if err != nil {
		return nil, err
	}

	req := graphql.NewRequest(`
		query($owner: String!, $repo: String!, $number: Int!) {
			repository(owner: $owner, name: $repo) {
				issueOrPullRequest(number: $number) {
					... on Issue {
						comments(first: 100) {
							nodes { author { login } body createdAt }
						}
					}
					... on PullRequest {
						comments(first: 100) {
							nodes { author { login } body createdAt }
						}
					}
				}
			}
		}
	`)
	req.Var("owner", owner)
	req.Var("repo", name)
	req.Var("number", ref.Number)

	var resp struct {
		Repository struct {
			IssueOrPullRequest struct {
				Comments struct {
					Nodes []struct {
						Author *struct {
							Login string `json:"login"`
						} `json:"author"`
						Body      string `json:"body"`
						CreatedAt string `json:"createdAt"`
					} `json:"nodes"`
				} `json:"comments"`
			} `json:"issueOrPullRequest"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	comments := make([]domain.Comment, 0, len(resp.Repository.IssueOrPullRequest.Comments.Nodes))
	for _, node := range resp.Repository.IssueOrPullRequest.Comments.Nodes {
		comment := domain.Comment{Body: node.Body, CreatedAt: node.CreatedAt}
		// Deleted users have no author
		if node.Author != nil {
			comment.Author = node.Author.Login
		}
		comments = append(comments, comment)
	}

	return comments, nil
}
