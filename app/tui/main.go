package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/smart_search/search"
	"github.com/noelzubin/smart_search/search/bleve_indexer"
	"github.com/noelzubin/smart_search/search/history"
	"github.com/noelzubin/smart_search/search/kvstore"
	"github.com/noelzubin/smart_search/search/session"
	"github.com/noelzubin/smart_search/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes structured logs to path.
func newLogger(path, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	return config.Build()
}

func run() error {
	configPath := utils.DefaultConfigPath()
	if p := os.Getenv("SMART_SEARCH_CONFIG"); p != "" {
		configPath = p
	}

	// read application config
	config, err := utils.NewConfig(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(config.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// Setup logging.
	f, err := tea.LogToFile(config.LogPath(), "debug")
	if err != nil {
		return err
	}
	defer f.Close()

	logger, err := newLogger(config.LogPath(), config.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	store, err := kvstore.Open(config.HistoryPath())
	if err != nil {
		return err
	}

	// create the semantic indexer.
	indexer, err := bleve_indexer.NewBleveIndexer(logger)
	if err != nil {
		return err
	}
	defer indexer.Close()

	s := session.New(
		session.WithHistory(history.Load(store, logger)),
		session.WithSemantic(indexer),
		session.WithFilters(config.SearchFilters()),
		session.WithHighlightDuration(config.HighlightDuration),
		session.WithLogger(logger),
	)
	defer s.Close()

	// Create a new bubbletea Model
	m := New(s, config, logger)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Result implements list.Item interface
type Result struct {
	result      search.MatchResult
	snippet     string
	highlighted bool
}

func (r Result) Title() string {
	title := fmt.Sprintf("%s · %s", r.result.Type, r.result.Location)
	if r.highlighted {
		return "» " + title
	}
	return title
}
func (r Result) Description() string { return r.snippet }
func (r Result) FilterValue() string { return "" }

// HistoryEntry implements list.Item interface
type HistoryEntry string

func (h HistoryEntry) Title() string       { return string(h) }
func (h HistoryEntry) Description() string { return "" }
func (h HistoryEntry) FilterValue() string { return "" }

// Create the list model
func create_list_model() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.Styles.NoItems = l.Styles.NoItems.Copy().PaddingLeft(2)
	return l
}

// Create the text input model
func create_text_input() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "query"
	ti.Prompt = "Search:"
	ti.PromptStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		MarginRight(1).
		MarginLeft(2).
		Padding(0, 1)
	ti.Focus()
	return ti
}
