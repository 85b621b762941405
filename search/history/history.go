// Package history keeps the list of recently submitted search queries.
package history

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// Key under which the history is persisted.
	Key = "eden-search-history"

	// MaxEntries is the number of queries kept.
	MaxEntries = 10
)

// Store is the key-value storage the history is persisted to.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// History is a most-recent-first list of unique queries.
type History struct {
	mu      sync.Mutex
	store   Store
	logger  *zap.Logger
	entries []string
}

// Load reads the persisted history. A missing or malformed entry yields an
// empty history; the latter is logged.
func Load(store Store, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &History{store: store, logger: logger, entries: []string{}}
	if store == nil {
		return h
	}

	raw, ok := store.Get(Key)
	if !ok {
		return h
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("Failed to load search history", zap.Error(err))
		return h
	}

	h.entries = normalize(entries)
	return h
}

// normalize enforces the invariants on data read back from storage.
func normalize(entries []string) []string {
	entries = lo.Uniq(lo.Filter(entries, func(e string, _ int) bool {
		return strings.TrimSpace(e) != ""
	}))
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// Add moves query to the front of the history and persists it.
// Whitespace-only queries are ignored.
func (h *History) Add(query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries := append([]string{query}, lo.Without(h.entries, query)...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	h.entries = entries
	h.save()
}

// Clear removes every entry along with the persisted copy.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = []string{}
	if h.store == nil {
		return
	}
	if err := h.store.Delete(Key); err != nil {
		h.logger.Warn("Failed to clear search history", zap.Error(err))
	}
}

// Entries returns a copy of the history, most recent first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) save() {
	if h.store == nil {
		return
	}

	data, err := json.Marshal(h.entries)
	if err != nil {
		h.logger.Warn("Failed to encode search history", zap.Error(err))
		return
	}
	if err := h.store.Set(Key, string(data)); err != nil {
		h.logger.Warn("Failed to save search history", zap.Error(err))
	}
}
