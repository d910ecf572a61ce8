package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/h0rv/ghpm/internal/config"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/h0rv/ghpm/internal/gh"
	"github.com/h0rv/ghpm/internal/items"
	"github.com/h0rv/ghpm/internal/layout"
	"go.uber.org/zap"
)

// ErrNoProjects indicates a board command ran without any configured project.
var ErrNoProjects = errors.New("no projects configured (add projects to .ghpm.json)")

// DefaultLimit caps the items fetched per project.
const DefaultLimit = 500

// boardSource is the part of the GitHub client the board view reads from.
type boardSource interface {
	LoadBoard(ctx context.Context, owner string, number, limit int) (*gh.Board, error)
	GetViews(ctx context.Context, projectID string) ([]domain.View, error)
}

// boardData is one fetched project and, when requested, its saved views.
type boardData struct {
	Board *gh.Board
	Views []domain.View
}

// selectProjects returns the configured projects named by numbers, or all
// configured projects when numbers is empty.
func selectProjects(cfg *config.Config, numbers []int) ([]config.ProjectRef, error) {
	if len(cfg.Projects) == 0 {
		return nil, ErrNoProjects
	}
	if len(numbers) == 0 {
		return cfg.Projects, nil
	}
	refs := make([]config.ProjectRef, 0, len(numbers))
	for _, n := range numbers {
		p, ok := cfg.Project(n)
		if !ok {
			return nil, fmt.Errorf("%w: project %d is not configured", gh.ErrProjectNotFound, n)
		}
		refs = append(refs, p)
	}
	return refs, nil
}

// fetchBoards loads every project concurrently. Results keep the order of
// refs; the first failure is returned.
func fetchBoards(ctx context.Context, src boardSource, refs []config.ProjectRef, limit int, withViews bool) ([]boardData, error) {
	out := make([]boardData, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref config.ProjectRef) {
			defer wg.Done()
			board, err := src.LoadBoard(ctx, ref.Owner, ref.Number, limit)
			if err != nil {
				errs[i] = fmt.Errorf("project %s: %w", ref, err)
				return
			}
			out[i].Board = board
			if !withViews {
				return
			}
			views, err := src.GetViews(ctx, board.Project.ID)
			if err != nil {
				errs[i] = fmt.Errorf("project %s views: %w", ref, err)
				return
			}
			out[i].Views = views
		}(i, ref)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// viewInput is everything the board pipeline needs besides the items.
type viewInput struct {
	Options      config.ViewOptions
	DoneStatuses []string
	Me           string
}

// buildView runs the board pipeline: saved view filter, the remaining
// filters, sort, then grouping. It returns the groups in display order.
func buildView(boards []boardData, in viewInput, log *zap.SugaredLogger) ([]layout.Group, error) {
	opts := in.Options

	var list []domain.Item
	if opts.View != "" {
		board, view, err := findView(boards, opts.View)
		if err != nil {
			return nil, err
		}
		pred := items.ViewFilter(items.ParseViewFilter(view.Filter), in.Me)
		list = items.Apply(board.Items, pred)
		log.Debugw("applied saved view", "view", view.Name, "project", board.Project.Title, "filter", view.Filter, "items", len(list))
	} else {
		for _, b := range boards {
			list = append(list, b.Board.Items...)
		}
	}

	filter := items.Filter{
		Slices:       opts.Slices,
		ViewFilter:   opts.Filter,
		Mine:         config.Flag(opts.Mine),
		Unassigned:   config.Flag(opts.Unassigned),
		HideDone:     config.Flag(opts.HideDone),
		DoneStatuses: in.DoneStatuses,
		Statuses:     opts.Statuses,
	}
	if (filter.Mine || strings.Contains(filter.ViewFilter, "@me")) && in.Me == "" {
		log.Warnw("current user unknown, filters on the current user match nothing")
	}
	pred, warnings := filter.Compile(in.Me)
	for _, w := range warnings {
		log.Warnw("ignoring filter", "error", w)
	}
	list = items.Apply(list, pred)

	keys := items.ParseSort(opts.Sort)
	for _, k := range items.UnresolvedKeys(list, keys) {
		log.Warnw("ignoring sort key, no item has this field", "key", k.String())
	}
	list = items.Sort(list, keys)

	switch strings.ToLower(opts.GroupBy) {
	case "", "none":
		return layout.Ungrouped(list), nil
	default:
		return layout.GroupBy(list, opts.GroupBy), nil
	}
}

// findView returns the first board, in project order, with a saved view
// named name (case-insensitive).
func findView(boards []boardData, name string) (*gh.Board, domain.View, error) {
	for _, b := range boards {
		if v, err := gh.FindView(b.Views, name); err == nil {
			return b.Board, v, nil
		}
	}
	return nil, domain.View{}, fmt.Errorf("%w: %q", gh.ErrViewNotFound, name)
}
