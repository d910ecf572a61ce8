package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/ghpm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestChoices() []Choice {
	return BranchChoices(
		[]string{"feature/42-login", "bugfix/login-flow", "main"},
		"main",
		map[string]int{"bugfix/login-flow": 17},
	)
}

// send feeds msg to the model and then the message produced by the returned command.
func send(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	m = model.(PickerModel)
	if cmd == nil {
		return m, nil
	}
	follow := cmd()
	if _, ok := follow.(ChoiceSelectedMsg); ok {
		model, cmd = m.Update(follow)
		return model.(PickerModel), cmd
	}
	if _, ok := follow.(QuitMsg); ok {
		model, cmd = m.Update(follow)
		return model.(PickerModel), cmd
	}
	return m, cmd
}

func TestBranchChoices(t *testing.T) {
	choices := createTestChoices()

	require.Len(t, choices, 3)
	assert.Equal(t, "local branch", choices[0].Description)
	assert.Equal(t, "linked to #17", choices[1].Description)
	assert.Equal(t, "checked out", choices[2].Description)
	assert.Equal(t, "feature/42-login", choices[0].Value)
}

func TestItemChoices_SkipsDrafts(t *testing.T) {
	items := []domain.Item{
		{Number: 42, Title: "Fix login", Repo: "acme/api", Status: "Todo", ProjectTitle: "Roadmap"},
		{Title: "Draft idea"},
	}

	choices := ItemChoices(items)
	require.Len(t, choices, 1)
	assert.Equal(t, "#42 Fix login", choices[0].Label)
	assert.Equal(t, "acme/api#42", choices[0].Value)
}

func TestPickerModel_SelectAfterNavigation(t *testing.T) {
	m := NewPickerModel("Link a branch", createTestChoices())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	c, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "bugfix/login-flow", c.Value)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPickerModel_Cancel(t *testing.T) {
	m := NewPickerModel("Link a branch", createTestChoices())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.True(t, m.cancelled)
}

func TestPickerModel_View(t *testing.T) {
	m := NewPickerModel("Link a branch", createTestChoices())
	view := m.View()

	assert.Contains(t, view, "Link a branch")
	assert.Contains(t, view, "feature/42-login")
	assert.Contains(t, view, "enter")
}
