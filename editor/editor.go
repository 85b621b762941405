package editor

import (
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

type Editor struct {
	Editing   bool   // Is the editor open
	EditorCmd string // Command to open the editor on shell
}

// EditingFinished is sent once the editor process exits.
type EditingFinished struct {
	Path string
	Err  error
}

// this opens up an external editor.
func openEditor(filepath, app string, args ...string) tea.Cmd {
	return tea.ExecProcess(exec.Command(app, args...), func(err error) tea.Msg {
		return EditingFinished{Path: filepath, Err: err}
	})
}

func (m *Editor) Init() tea.Cmd {
	return nil
}

// EditFile opens filepath in the configured editor. It is a no-op while
// another edit is in progress.
func (m *Editor) EditFile(filepath string) tea.Cmd {
	if m.Editing {
		return nil
	}
	m.Editing = true
	return openEditor(filepath, m.EditorCmd, filepath)
}

func (m Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg.(type) {
	case EditingFinished:
		m.Editing = false
	}

	return m, nil
}

// Doesnt render anything
func (m Editor) View() string {
	return ""
}
