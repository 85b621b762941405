package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/smart_search/editor"
	"github.com/noelzubin/smart_search/search"
	"github.com/noelzubin/smart_search/search/session"
	"github.com/noelzubin/smart_search/utils"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// pane is the view currently shown below the search box.
type pane int

const (
	paneResults pane = iota
	paneHistory
	panePreview
)

func (p pane) String() string {
	switch p {
	case paneResults:
		return "results"
	case paneHistory:
		return "history"
	case panePreview:
		return "preview"
	}
	return fmt.Sprintf("pane(%d)", int(p))
}

// Main app model for bubbletea
type Model struct {
	width       int              // width of terminal
	height      int              // height of terminal
	pane        pane             // which pane is shown
	list        list.Model       // the result list widget
	history     list.Model       // the search history widget
	preview     viewport.Model   // full text of the active result
	textInput   textinput.Model  // the input search widget model
	filterFocus search.Category  // category toggled by ctrl+f
	session     *session.Session // search state
	editor      editor.Editor    // for opening up external editor.
	config      *utils.Config    // application config
	logger      *zap.Logger      // debug logger
	status      string           // last status message
}

// Create a new model for the app
func New(s *session.Session, config *utils.Config, logger *zap.Logger) *Model {
	return &Model{
		list:      create_list_model(),
		history:   create_list_model(),
		preview:   viewport.New(0, 0),
		textInput: create_text_input(),
		session:   s,
		editor:    editor.Editor{Editing: false, EditorCmd: config.Editor},
		config:    config,
		logger:    logger,
	}
}

// This is emitted when the workspace file has been (re)loaded.
type sourcesMsg struct {
	sources search.Sources
	err     error
}

// This is emitted when a semantic pass finishes.
type semanticMsg struct {
	applied bool
}

// This is emitted once a highlight may have expired.
type highlightTickMsg struct{}

func loadSources(path string) tea.Cmd {
	return func() tea.Msg {
		sources, err := search.ReadSources(path)
		return sourcesMsg{sources, err}
	}
}

// runJob runs a semantic pass off the UI loop.
func runJob(job *session.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	return func() tea.Msg {
		return semanticMsg{applied: job.Run()}
	}
}

func (m *Model) highlightTick() tea.Cmd {
	d := m.config.HighlightDuration
	if d <= 0 {
		d = session.DefaultHighlightDuration
	}
	return tea.Tick(d+50*time.Millisecond, func(time.Time) tea.Msg {
		return highlightTickMsg{}
	})
}

func (m *Model) updateSize(width, height int) {
	m.height = height
	m.width = width

	// input, filters and status take the remaining rows
	contentHeight := height - 4
	if contentHeight < 0 {
		contentHeight = 0
	}
	m.list.SetSize(width, contentHeight)
	m.history.SetSize(width, contentHeight)
	m.preview.Width = width
	m.preview.Height = contentHeight
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, loadSources(m.config.Workspace))
}

// refreshResults copies the session results into the list widget.
func (m *Model) refreshResults() {
	query := m.session.Query()
	highlight := m.session.Highlight()
	m.list.SetItems(lo.Map(m.session.Results(), func(r search.MatchResult, _ int) list.Item {
		return Result{
			result:      r,
			snippet:     renderSnippet(r, query),
			highlighted: isHighlighted(highlight, r.Target),
		}
	}))
	m.list.Select(m.session.ActiveIndex())
}

func (m *Model) refreshHistory() {
	m.history.SetItems(lo.Map(m.session.History().Entries(), func(q string, _ int) list.Item {
		return HistoryEntry(q)
	}))
}

func isHighlighted(h session.Highlight, t search.Target) bool {
	switch t.Kind {
	case search.TargetMessage:
		return h.MessageIndex == t.MessageIndex
	case search.TargetNotes:
		return h.Notes
	case search.TargetWrite:
		return h.Write
	case search.TargetTodo:
		return h.TodoID != "" && h.TodoPanel == t.Panel && h.TodoID == t.TodoID
	}
	return false
}

func (m *Model) showPreview() {
	results := m.session.Results()
	if len(results) == 0 {
		return
	}
	r := results[m.session.ActiveIndex()]
	m.preview.SetContent(highlightMatches(r.Text, r.MatchIndices, len([]rune(m.session.Query())), 0))
	m.preview.GotoTop()
	m.pane = panePreview
}

// handleKey applies keybindings. It reports whether the key was consumed,
// in which case it is not forwarded to the text input.
//
// Keybindings:
// Tab - next result (wraps) / next history entry
// Shift+Tab - previous result (wraps) / previous history entry
// Enter - submit the query / run the selected history entry
// Ctrl+A - jump to and highlight the active result
// Ctrl+P - preview the active result
// Ctrl+Y - show search history
// Ctrl+X - clear search history
// Ctrl+S - toggle semantic search
// Ctrl+T - move the filter focus, Ctrl+F - toggle the focused filter
// Ctrl+K / Ctrl+J - scroll the preview
// Ctrl+O - open the workspace in the editor
// Esc - back to results, or clear the search
// Ctrl+C - quit the application
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+o":
		return m.editor.EditFile(m.config.Workspace), true
	case "ctrl+y":
		m.refreshHistory()
		m.pane = paneHistory
		return nil, true
	case "ctrl+x":
		m.session.History().Clear()
		m.refreshHistory()
		m.status = "history cleared"
		return nil, true
	case "ctrl+s":
		m.session.SetSemantic(!m.session.SemanticEnabled())
		job := m.session.Refresh()
		m.refreshResults()
		return runJob(job), true
	case "ctrl+t":
		m.filterFocus = (m.filterFocus + 1) % search.Category(len(search.Categories()))
		return nil, true
	case "ctrl+f":
		m.session.ToggleFilter(m.filterFocus)
		job := m.session.Refresh()
		m.refreshResults()
		return runJob(job), true
	case "esc":
		if m.pane != paneResults {
			m.pane = paneResults
			return nil, true
		}
		m.session.Clear()
		m.textInput.SetValue("")
		m.refreshResults()
		return nil, true
	}

	switch m.pane {
	case paneResults:
		switch msg.String() {
		case "tab":
			m.session.Next()
			m.list.Select(m.session.ActiveIndex())
			return nil, true
		case "shift+tab":
			m.session.Prev()
			m.list.Select(m.session.ActiveIndex())
			return nil, true
		case "enter":
			job := m.session.Submit(m.textInput.Value())
			m.refreshResults()
			return runJob(job), true
		case "ctrl+a":
			if !m.session.ActivateActive() {
				return nil, true
			}
			m.refreshResults()
			return m.highlightTick(), true
		case "ctrl+p":
			m.showPreview()
			return nil, true
		}
	case paneHistory:
		switch msg.String() {
		case "tab":
			m.history.CursorDown()
		case "shift+tab":
			m.history.CursorUp()
		case "enter":
			entry, ok := m.history.SelectedItem().(HistoryEntry)
			if !ok {
				return nil, true
			}
			m.textInput.SetValue(string(entry))
			m.pane = paneResults
			job := m.session.Submit(string(entry))
			m.refreshResults()
			return runJob(job), true
		}
		// the history pane doesn't edit the query
		return nil, true
	case panePreview:
		switch msg.String() {
		case "ctrl+k":
			m.preview.LineUp(5)
		case "ctrl+j":
			m.preview.LineDown(5)
		}
		return nil, true
	}

	return nil, false
}

// The update fn for the bubbletea model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case sourcesMsg:
		if msg.err != nil {
			m.logger.Warn("Failed to load workspace", zap.String("path", m.config.Workspace), zap.Error(msg.err))
			m.status = "workspace not loaded"
		} else {
			m.session.SetSources(msg.sources)
			m.status = fmt.Sprintf("loaded %s", m.config.Workspace)
		}
		cmds = append(cmds, runJob(m.session.Refresh()))
		m.refreshResults()
	case semanticMsg:
		if msg.applied {
			m.refreshResults()
		}
	case highlightTickMsg:
		m.refreshResults()
	case editor.EditingFinished:
		if msg.Err != nil {
			m.logger.Warn("Editor exited with error", zap.Error(msg.Err))
		}
		cmds = append(cmds, loadSources(msg.Path))
	case tea.WindowSizeMsg:
		m.updateSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		var handled bool
		cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}
	}

	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)

	if m.pane == panePreview {
		m.preview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
	}

	// save to compare if changed
	oldValue := m.textInput.Value()

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	// If input has changed, search for the new value
	newValue := m.textInput.Value()
	if oldValue != newValue {
		cmds = append(cmds, runJob(m.session.Update(newValue)))
		m.refreshResults()
	}

	return m, tea.Batch(cmds...)
}

func (m Model) statusLine() string {
	s := fmt.Sprintf("%d results", len(m.session.Results()))
	if n := len(m.session.Results()); n > 0 {
		s = fmt.Sprintf("%d/%d results", m.session.ActiveIndex()+1, n)
	}
	if m.session.SemanticLoading() {
		s += " · semantic search running"
	}
	if m.status != "" {
		s += " · " + m.status
	}
	return StatusStyle.Render(s)
}

// View fn for bubbletea model
func (m Model) View() string {
	var content string
	switch m.pane {
	case paneResults:
		content = ListStyle.Render(m.list.View())
	case paneHistory:
		content = ListStyle.Render(m.history.View())
	case panePreview:
		content = ListStyle.Render(m.preview.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.textInput.View(), // render the text input
		renderFilters(m.session.Filters(), m.filterFocus),
		content, // render the main content
		m.statusLine(),
	)
}
