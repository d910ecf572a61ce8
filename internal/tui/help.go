package tui

import "github.com/charmbracelet/bubbles/help"

// HelpModel wraps the bubbles help component for a KeyMap.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates a help footer showing the short bindings.
func NewHelpModel(keymap KeyMap) HelpModel {
	return HelpModel{help: help.New(), keymap: keymap}
}

// Toggle switches between the short and full help.
func (m *HelpModel) Toggle() {
	m.help.ShowAll = !m.help.ShowAll
}

// View renders the help footer.
func (m HelpModel) View(width int) string {
	m.help.Width = width
	return HelpStyle.Render(m.help.View(m.keymap))
}
