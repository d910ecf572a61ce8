package tui

import (
	"fmt"
	"strings"

	"github.com/h0rv/ghpm/internal/domain"
)

// BranchChoices builds picker rows for ranked branch names. linked maps a
// branch to the issue it is already linked to.
func BranchChoices(ranked []string, current string, linked map[string]int) []Choice {
	choices := make([]Choice, 0, len(ranked))
	for _, b := range ranked {
		var notes []string
		if b == current {
			notes = append(notes, "checked out")
		}
		if n, ok := linked[b]; ok {
			notes = append(notes, fmt.Sprintf("linked to #%d", n))
		}
		desc := strings.Join(notes, ", ")
		if desc == "" {
			desc = "local branch"
		}
		choices = append(choices, Choice{Label: b, Description: desc, Value: b})
	}
	return choices
}

// ItemChoices builds picker rows for issues. Drafts are skipped since they
// cannot be linked to a branch.
func ItemChoices(items []domain.Item) []Choice {
	choices := make([]Choice, 0, len(items))
	for _, item := range items {
		ref, ok := item.Ref()
		if !ok {
			continue
		}
		status := item.Status
		if status == "" {
			status = "No Status"
		}
		choices = append(choices, Choice{
			Label:       fmt.Sprintf("#%d %s", item.Number, item.Title),
			Description: fmt.Sprintf("%s · %s · %s", ref.Repo, status, item.ProjectTitle),
			Value:       ref.String(),
		})
	}
	return choices
}
