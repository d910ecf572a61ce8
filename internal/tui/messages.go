// Package tui provides Bubble Tea models for interactive selection.
package tui

// ChoiceSelectedMsg is emitted when the user selects a choice.
type ChoiceSelectedMsg struct {
	Choice Choice
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user cancels the picker.
type QuitMsg struct{}
