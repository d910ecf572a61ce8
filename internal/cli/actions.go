package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/h0rv/ghpm/internal/active"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/gh"
	"github.com/h0rv/ghpm/internal/session"
)

// projectStatus is a project with its Status field.
type projectStatus struct {
	Project domain.Project
	Status  domain.StatusField
}

func loadProjectStatus(ctx context.Context, client *gh.Client, owner string, number int) (projectStatus, error) {
	project, err := client.GetProject(ctx, owner, number)
	if err != nil {
		return projectStatus{}, err
	}
	fields, err := client.GetProjectFields(ctx, project.ID)
	if err != nil {
		return projectStatus{}, err
	}
	status, err := gh.StatusField(fields)
	if err != nil {
		return projectStatus{}, fmt.Errorf("project %s: %w", project.Title, err)
	}
	return projectStatus{Project: *project, Status: status}, nil
}

// setStatus moves the issue's item to the named status in the first
// configured project that contains it. An issue on no configured project is
// added to the first one. It returns the project item ID.
func setStatus(ctx context.Context, s *session.Session, ref domain.IssueRef, status string) (string, error) {
	if len(s.Config.Projects) == 0 {
		return "", ErrNoProjects
	}
	client, err := s.Client()
	if err != nil {
		return "", err
	}

	var first *projectStatus
	for _, pref := range s.Config.Projects {
		ps, err := loadProjectStatus(ctx, client, pref.Owner, pref.Number)
		if errors.Is(err, gh.ErrNoStatusField) {
			s.Log.Debugw("skipping project without Status field", "project", pref.String())
			continue
		}
		if err != nil {
			return "", err
		}
		if first == nil {
			first = &ps
		}

		itemID, err := client.FindProjectItem(ctx, ref, ps.Project.ID)
		if err != nil {
			return "", err
		}
		if itemID == "" {
			continue
		}
		return itemID, updateStatus(ctx, client, ps, itemID, status)
	}

	if first == nil {
		return "", gh.ErrNoStatusField
	}

	issue, err := client.GetIssue(ctx, ref)
	if err != nil {
		return "", err
	}
	itemID, err := client.AddItemToProject(ctx, first.Project.ID, issue.NodeID)
	if err != nil {
		return "", err
	}
	s.Log.Infow("added issue to project", "issue", ref.String(), "project", first.Project.Title)
	return itemID, updateStatus(ctx, client, *first, itemID, status)
}

func updateStatus(ctx context.Context, client *gh.Client, ps projectStatus, itemID, status string) error {
	option, err := gh.StatusOption(ps.Status, status)
	if err != nil {
		return err
	}
	return client.UpdateItemStatus(ctx, ps.Project.ID, itemID, ps.Status, option)
}

// reconcileActive makes ref the only holder of the user's active label when
// the feature is enabled, and reports what changed to w.
func reconcileActive(ctx context.Context, s *session.Session, ref domain.IssueRef, w io.Writer) error {
	cfg := s.Config.ActiveLabel
	if !cfg.Enabled {
		return nil
	}

	scope, err := active.ParseScope(cfg.Scope)
	if err != nil {
		return err
	}
	user, err := s.Username(ctx)
	if err != nil {
		return err
	}

	req := active.Request{
		Target: ref,
		Scope:  scope,
		Label:  active.LabelName(user),
		Color:  cfg.Color,
	}
	if scope == active.ScopeProject && len(s.Config.Projects) > 0 {
		client, err := s.Client()
		if err != nil {
			return err
		}
		pref := s.Config.Projects[0]
		project, err := client.GetProject(ctx, pref.Owner, pref.Number)
		if err != nil {
			return err
		}
		req.ProjectID = project.ID
	}

	rec, err := s.Reconciler()
	if err != nil {
		return err
	}
	res, err := rec.Transfer(ctx, req)

	for _, r := range res.RemovedFrom {
		fmt.Fprintf(w, "Removed %s from %s\n", req.Label, r)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "Could not remove %s from %s: %v\n", req.Label, f.Ref, f.Err)
	}
	if res.Added {
		fmt.Fprintf(w, "Labeled %s with %s\n", ref, req.Label)
	}
	if err != nil {
		return fmt.Errorf("active label: %w", err)
	}
	return nil
}
