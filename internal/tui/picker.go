package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled indicates the user left the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Choice is one selectable row.
type Choice struct {
	Label       string
	Description string
	Value       string
}

// FilterValue implements list.Item.
func (c Choice) FilterValue() string { return c.Label }

// choiceDelegate renders a choice as a numbered label with a dim description line.
type choiceDelegate struct{}

func (d choiceDelegate) Height() int                             { return 2 }
func (d choiceDelegate) Spacing() int                            { return 1 }
func (d choiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(Choice)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, c.Label)
	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
	}
	fmt.Fprint(w, "\n  "+DescriptionStyle.Render(c.Description))
}

// PickerModel lets the user choose one of a list of choices.
type PickerModel struct {
	list      list.Model
	keys      KeyMap
	help      HelpModel
	width     int
	chosen    *Choice
	cancelled bool
	err       error
}

// NewPickerModel creates a picker with the first choice highlighted.
func NewPickerModel(title string, choices []Choice) PickerModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = c
	}

	l := list.New(items, choiceDelegate{}, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	keys := DefaultKeyMap()
	return PickerModel{list: l, keys: keys, help: NewHelpModel(keys), width: 80}
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while the user is typing a filter
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, func() tea.Msg { return QuitMsg{} }
		case key.Matches(msg, m.keys.Help):
			m.help.Toggle()
			return m, nil
		case key.Matches(msg, m.keys.Select):
			if c, ok := m.list.SelectedItem().(Choice); ok {
				return m, func() tea.Msg { return ChoiceSelectedMsg{Choice: c} }
			}
		}

	case ChoiceSelectedMsg:
		c := msg.Choice
		m.chosen = &c
		return m, tea.Quit

	case QuitMsg:
		m.cancelled = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m PickerModel) View() string {
	view := m.list.View() + "\n" + m.help.View(m.width)
	if m.err != nil {
		view += ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
	}
	return view
}

// Selected returns the chosen choice once the user confirmed one.
func (m PickerModel) Selected() (Choice, bool) {
	if m.chosen == nil {
		return Choice{}, false
	}
	return *m.chosen, true
}

// Pick runs a full-screen picker on the terminal and returns the chosen value.
func Pick(title string, choices []Choice) (Choice, error) {
	if len(choices) == 0 {
		return Choice{}, errors.New("nothing to choose from")
	}

	p := tea.NewProgram(NewPickerModel(title, choices), tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return Choice{}, fmt.Errorf("picker: %w", err)
	}

	c, ok := final.(PickerModel).Selected()
	if !ok {
		return Choice{}, ErrCancelled
	}
	return c, nil
}
