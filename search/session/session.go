// Package session holds the state of an interactive search: the current
// query, filters, results, the active result and highlight state.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/noelzubin/smart_search/search"
	"github.com/noelzubin/smart_search/search/history"
	"go.uber.org/zap"
)

// DefaultHighlightDuration is how long an activated item stays highlighted.
const DefaultHighlightDuration = 2 * time.Second

// Highlight marks the item to emphasize after a result is activated.
type Highlight struct {
	MessageIndex int // -1 when no message is highlighted
	Notes        bool
	Write        bool
	TodoPanel    search.Panel
	TodoID       string
	Query        string
}

func noHighlight() Highlight {
	return Highlight{MessageIndex: -1}
}

// Active reports whether anything is highlighted.
func (h Highlight) Active() bool {
	return h.MessageIndex >= 0 || h.Notes || h.Write || h.TodoID != ""
}

type stopper interface {
	Stop() bool
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	sources search.Sources
	query   string
	filters search.Filters
	results []search.MatchResult
	active  int

	// gen is bumped on every evaluation; semantic jobs from older
	// generations are discarded.
	gen             uint64
	cancel          context.CancelFunc
	semanticLoading bool

	highlight         Highlight
	highlightSeq      uint64
	highlightTimer    stopper
	highlightDuration time.Duration
	afterFunc         func(time.Duration, func()) stopper

	history  *history.History
	semantic search.SemanticSearcher
	logger   *zap.Logger
}

type Option func(*Session)

func WithHistory(h *history.History) Option {
	return func(s *Session) { s.history = h }
}

// WithSemantic sets the backend used when semantic search is enabled.
func WithSemantic(backend search.SemanticSearcher) Option {
	return func(s *Session) { s.semantic = backend }
}

func WithHighlightDuration(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.highlightDuration = d
		}
	}
}

func WithFilters(f search.Filters) Option {
	return func(s *Session) { s.filters = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an idle session with no sources.
func New(opts ...Option) *Session {
	s := &Session{
		filters:           search.DefaultFilters(),
		results:           []search.MatchResult{},
		highlight:         noHighlight(),
		highlightDuration: DefaultHighlightDuration,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = history.Load(nil, s.logger)
	}
	return s
}

// Close cancels in-flight semantic work and pending highlight timers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
		s.highlightTimer = nil
	}
}

// SetSources replaces the content searched by later evaluations and
// re-indexes the semantic backend.
func (s *Session) SetSources(sources search.Sources) {
	s.mu.Lock()
	s.sources = sources
	backend := s.semantic
	s.mu.Unlock()

	if backend == nil {
		return
	}
	if err := backend.IndexSources(sources); err != nil {
		s.logger.Warn("Failed to index sources for semantic search", zap.Error(err))
	}
}

// Update re-evaluates query without recording it in the history.
// The returned job is nil unless a semantic pass should follow.
func (s *Session) Update(query string) *Job {
	return s.evaluate(query, false)
}

// Submit evaluates query and records it in the history.
func (s *Session) Submit(query string) *Job {
	return s.evaluate(query, true)
}

// Refresh re-evaluates the current query, e.g. after a filter change.
func (s *Session) Refresh() *Job {
	s.mu.Lock()
	query := s.query
	s.mu.Unlock()
	return s.evaluate(query, false)
}

func (s *Session) evaluate(query string, submit bool) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.semanticLoading = false
	s.query = query
	s.active = 0

	if strings.TrimSpace(query) == "" {
		s.results = []search.MatchResult{}
		return nil
	}

	if submit {
		s.history.Add(query)
	}

	results := search.Search(query, s.sources, s.filters)
	for i := range results {
		s.bind(&results[i], query)
	}
	s.results = results
	s.logger.Debug("Search evaluated", zap.String("query", query), zap.Int("results", len(results)))

	if s.semantic == nil || !s.filters.Enabled(search.Semantic) {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.semanticLoading = true
	return &Job{s: s, gen: s.gen, query: query, ctx: ctx}
}

// bind sets the activation callback of r.
func (s *Session) bind(r *search.MatchResult, query string) {
	target := r.Target
	r.Activate = func() { s.setHighlight(target, query) }
}

// Job is a pending semantic pass for one evaluation.
type Job struct {
	s     *Session
	gen   uint64
	query string
	ctx   context.Context
}

// Run queries the semantic backend and appends its results, provided no
// newer evaluation happened meanwhile. It reports whether results were
// applied. Run blocks and is meant to be called off the UI loop.
func (j *Job) Run() bool {
	s := j.s
	hits, err := s.semantic.Search(j.ctx, j.query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if j.gen != s.gen {
		s.logger.Debug("Discarding stale semantic results", zap.String("query", j.query))
		return false
	}
	s.semanticLoading = false
	s.cancel = nil

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("Semantic search failed", zap.String("query", j.query), zap.Error(err))
		}
		return false
	}

	for _, hit := range hits {
		if !s.filters.Enabled(hit.Category) {
			continue
		}
		hit.Semantic = true
		s.bind(&hit, j.query)
		s.results = append(s.results, hit)
	}
	return true
}

// Next moves the active result forward, wrapping at the end.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.results); n > 0 {
		s.active = (s.active + 1) % n
	}
}

// Prev moves the active result back, wrapping at the start.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.results); n > 0 {
		s.active = (s.active - 1 + n) % n
	}
}

// SetActive selects result i, clamped to the result range.
func (s *Session) SetActive(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = clamp(i, len(s.results))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Activate selects result i and runs its activation callback.
func (s *Session) Activate(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.results) {
		s.mu.Unlock()
		return false
	}
	s.active = i
	activate := s.results[i].Activate
	s.mu.Unlock()

	if activate != nil {
		activate()
	}
	return true
}

// ActivateActive activates the currently selected result.
func (s *Session) ActivateActive() bool {
	return s.Activate(s.ActiveIndex())
}

func (s *Session) setHighlight(target search.Target, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := noHighlight()
	h.Query = query
	switch target.Kind {
	case search.TargetMessage:
		h.MessageIndex = target.MessageIndex
	case search.TargetNotes:
		h.Notes = true
	case search.TargetWrite:
		h.Write = true
	case search.TargetTodo:
		h.TodoPanel = target.Panel
		h.TodoID = target.TodoID
	}
	s.highlight = h

	s.highlightSeq++
	seq := s.highlightSeq
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
	}
	s.highlightTimer = s.afterFunc(s.highlightDuration, func() { s.expireHighlight(seq) })
}

func (s *Session) expireHighlight(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.highlightSeq {
		return
	}
	s.highlight = noHighlight()
	s.highlightTimer = nil
}

// Clear resets the query, results, selection and highlight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.semanticLoading = false
	s.query = ""
	s.results = []search.MatchResult{}
	s.active = 0

	s.highlightSeq++
	s.highlight = noHighlight()
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
		s.highlightTimer = nil
	}
}

// SetFilter enables or disables a category. Call Refresh to re-evaluate.
func (s *Session) SetFilter(c search.Category, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Set(c, on)
}

func (s *Session) ToggleFilter(c search.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Toggle(c)
}

// SetSemantic turns the semantic pass on or off.
func (s *Session) SetSemantic(on bool) {
	s.SetFilter(search.Semantic, on)
}

func (s *Session) SemanticEnabled() bool {
	return s.Filters().Enabled(search.Semantic)
}

func (s *Session) Filters() search.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results returns a copy of the current result list.
func (s *Session) Results() []search.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]search.MatchResult, len(s.results))
	copy(out, s.results)
	return out
}

func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Highlight() Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight
}

// SemanticLoading reports whether a semantic job for the current query is
// still outstanding.
func (s *Session) SemanticLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.semanticLoading
}

func (s *Session) History() *history.History {
	return s.history
}
