package gh

import (
	"context"
	"fmt"
	"time"

	"github.com/h0rv/ghpm/internal/domain"
	"github.com/machinebox/graphql"
)

const itemsQuery = `
	query($projectId: ID!, $first: Int!, $after: String) {
		node(id: $projectId) {
			... on ProjectV2 {
				items(first: $first, after: $after) {
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {
						id
						fieldValues(first: 50) {
							nodes {
								__typename
								... on ProjectV2ItemFieldTextValue {
									text
									field { ... on ProjectV2FieldCommon { name } }
								}
								... on ProjectV2ItemFieldNumberValue {
									number
									field { ... on ProjectV2FieldCommon { name } }
								}
								... on ProjectV2ItemFieldDateValue {
									date
									field { ... on ProjectV2FieldCommon { name } }
								}
								... on ProjectV2ItemFieldSingleSelectValue {
									name
									optionId
									field { ... on ProjectV2FieldCommon { name } }
								}
								... on ProjectV2ItemFieldIterationValue {
									title
									field { ... on ProjectV2FieldCommon { name } }
								}
							}
						}
						content {
							__typename
							... on Issue {
								title
								body
								url
								number
								state
								issueType { name }
								repository { nameWithOwner }
								assignees(first: 10) { nodes { login } }
								labels(first: 20) { nodes { name color } }
							}
							... on PullRequest {
								title
								body
								url
								number
								state
								repository { nameWithOwner }
								assignees(first: 10) { nodes { login } }
								labels(first: 20) { nodes { name color } }
							}
							... on DraftIssue {
								title
								body
								assignees(first: 10) { nodes { login } }
							}
						}
					}
				}
			}
		}
	}
`

type itemsPage struct {
	Node struct {
		Items struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []itemNode `json:"nodes"`
		} `json:"items"`
	} `json:"node"`
}

type itemNode struct {
	ID          string `json:"id"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
	Content *contentNode `json:"content"`
}

type fieldValueNode struct {
	Typename string   `json:"__typename"`
	Text     string   `json:"text"`
	Number   *float64 `json:"number"`
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	OptionID string   `json:"optionId"`
	Title    string   `json:"title"`
	Field    struct {
		Name string `json:"name"`
	} `json:"field"`
}

type contentNode struct {
	Typename  string `json:"__typename"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Number    int    `json:"number"`
	State     string `json:"state"`
	IssueType *struct {
		Name string `json:"name"`
	} `json:"issueType"`
	Repository *struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	Assignees *struct {
		Nodes []struct {
			Login string `json:"login"`
		} `json:"nodes"`
	} `json:"assignees"`
	Labels *struct {
		Nodes []struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		} `json:"nodes"`
	} `json:"labels"`
}

// GetItems fetches every item of a project, following pagination until limit
// items were read (limit <= 0 reads all). Status ordinals come from status.
func (c *Client) GetItems(ctx context.Context, project domain.Project, status domain.StatusField, limit int) ([]domain.Item, error) {
	var items []domain.Item
	cursor := ""

	for {
		first := pageSize
		if limit > 0 && limit-len(items) < first {
			first = limit - len(items)
		}

		req := graphql.NewRequest(itemsQuery)
		req.Var("projectId", project.ID)
		req.Var("first", first)
		if cursor != "" {
			req.Var("after", cursor)
		} else {
			req.Var("after", nil)
		}

		var resp itemsPage
		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to get items of %q: %w", project.Title, err)
		}

		for _, node := range resp.Node.Items.Nodes {
			items = append(items, normalizeItem(node, project, status))
		}

		page := resp.Node.Items.PageInfo
		if !page.HasNextPage || page.EndCursor == "" || (limit > 0 && len(items) >= limit) {
			break
		}
		cursor = page.EndCursor
	}

	c.log.Debugw("fetched project items", "project", project.Title, "count", len(items))
	return items, nil
}

// ProjectIssuesWithLabel returns every issue in the project carrying label,
// across all repositories that feed the project.
func (c *Client) ProjectIssuesWithLabel(ctx context.Context, projectID, label string) ([]domain.IssueRef, error) {
	items, err := c.GetItems(ctx, domain.Project{ID: projectID}, domain.StatusField{}, 0)
	if err != nil {
		return nil, err
	}

	var refs []domain.IssueRef
	for _, item := range items {
		if item.ContentType != domain.ContentTypeIssue || !item.HasLabel(label) {
			continue
		}
		if ref, ok := item.Ref(); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// builtinFields are project fields already represented on Item itself.
var builtinFields = map[string]bool{
	"Title":      true,
	"Assignees":  true,
	"Labels":     true,
	"Repository": true,
}

// normalizeItem converts one GraphQL item node into a domain.Item. Custom
// field values keep their kind; the status field becomes Status/StatusIndex.
func normalizeItem(node itemNode, project domain.Project, status domain.StatusField) domain.Item {
	item := domain.Item{
		ID:           node.ID,
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		StatusIndex:  -1,
	}

	for _, fv := range node.FieldValues.Nodes {
		name := fv.Field.Name
		if name == "" || builtinFields[name] {
			continue
		}

		switch fv.Typename {
		case "ProjectV2ItemFieldSingleSelectValue":
			if status.Name != "" && name == status.Name {
				item.Status = fv.Name
				item.StatusIndex = statusIndex(status, fv)
				continue
			}
			setField(&item, name, domain.SelectValue(fv.Name))
		case "ProjectV2ItemFieldTextValue":
			setField(&item, name, domain.TextValue(fv.Text))
		case "ProjectV2ItemFieldNumberValue":
			if fv.Number != nil {
				setField(&item, name, domain.NumberValue(*fv.Number))
			}
		case "ProjectV2ItemFieldDateValue":
			if d, err := time.Parse("2006-01-02", fv.Date); err == nil {
				setField(&item, name, domain.DateValue(d))
			}
		case "ProjectV2ItemFieldIterationValue":
			setField(&item, name, domain.IterationValue(fv.Title))
		}
	}

	content := node.Content
	if content == nil {
		// Items from repositories the viewer cannot see
		item.ContentType = domain.ContentTypePrivate
		item.Title = "(private item)"
		return item
	}

	item.Title = content.Title
	item.Body = content.Body
	item.URL = content.URL
	if content.Assignees != nil {
		item.Assignees = make([]string, 0, len(content.Assignees.Nodes))
		for _, a := range content.Assignees.Nodes {
			item.Assignees = append(item.Assignees, a.Login)
		}
	}

	switch content.Typename {
	case "Issue", "PullRequest":
		item.ContentType = domain.ContentTypeIssue
		if content.Typename == "PullRequest" {
			item.ContentType = domain.ContentTypePullRequest
		}
		item.Number = content.Number
		item.State = content.State
		if content.IssueType != nil {
			item.IssueType = content.IssueType.Name
		}
		if content.Repository != nil {
			item.Repo = content.Repository.NameWithOwner
		}
		if content.Labels != nil {
			item.Labels = make([]domain.Label, 0, len(content.Labels.Nodes))
			for _, l := range content.Labels.Nodes {
				item.Labels = append(item.Labels, domain.Label{Name: l.Name, Color: l.Color})
			}
		}
	case "DraftIssue":
		item.ContentType = domain.ContentTypeDraftIssue
	default:
		item.ContentType = domain.ContentTypePrivate
		item.Title = "(unknown item type)"
	}

	return item
}

func statusIndex(status domain.StatusField, fv fieldValueNode) int {
	for i, opt := range status.Options {
		if opt.ID == fv.OptionID {
			return i
		}
	}
	return status.Index(fv.Name)
}

func setField(item *domain.Item, name string, v domain.FieldValue) {
	if item.Fields == nil {
		item.Fields = make(map[string]domain.FieldValue)
	}
	item.Fields[name] = v
}
