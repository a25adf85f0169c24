// Package tui is the interactive terminal front end: the profile post tabs and a
// post's comment thread with its composers.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func prepareTerminal() {
	applyColorProfilePreference()
	applyThemePreference()
}

// RunProfile opens the profile tabs; enter on a post opens its thread.
func RunProfile(deps Deps) error {
	prepareTerminal()
	_, err := tea.NewProgram(newProfileApp(deps), tea.WithAltScreen()).Run()
	return err
}

// RunThread opens a single post's thread.
func RunThread(deps Deps, postID string) error {
	prepareTerminal()
	_, err := tea.NewProgram(newThreadApp(deps, postID, ""), tea.WithAltScreen()).Run()
	return err
}
