package gh

import (
	"context"
	"errors"

	"github.com/h0rv/ghpm/internal/domain"
)

// Board is one project with its Status field and items.
type Board struct {
	Project domain.Project
	Fields  []domain.FieldDef
	Status  domain.StatusField // zero when the project has no Status field
	Items   []domain.Item
}

// LoadBoard fetches a project's metadata, Status field and up to limit items.
func (c *Client) LoadBoard(ctx context.Context, owner string, number, limit int) (*Board, error) {
	project, err := c.GetProject(ctx, owner, number)
	if err != nil {
		return nil, err
	}

	fields, err := c.GetProjectFields(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	status, err := StatusField(fields)
	if err != nil && !errors.Is(err, ErrNoStatusField) {
		return nil, err
	}
	if err != nil {
		c.log.Warnw("project has no Status field", "project", project.Title)
	}

	items, err := c.GetItems(ctx, *project, status, limit)
	if err != nil {
		return nil, err
	}

	return &Board{Project: *project, Fields: fields, Status: status, Items: items}, nil
}
