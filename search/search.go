package search

import (
	"context"
	"fmt"
)

// Category is a group of content sources that can be filtered on or off.
type Category int

const (
	User Category = iota
	AI
	Notes
	Write
	Todos
	Semantic

	numCategories
)

var categoryNames = [numCategories]string{"user", "ai", "notes", "write", "todos", "semantic"}

// Categories lists every known category in iteration order.
func Categories() []Category {
	cats := make([]Category, numCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// Filters holds one enabled flag per category.
type Filters [numCategories]bool

// DefaultFilters enables every category except semantic search.
func DefaultFilters() Filters {
	var f Filters
	for i := range f {
		f[i] = true
	}
	f[Semantic] = false
	return f
}

// FiltersFromMap applies name -> enabled pairs on top of the defaults.
// Unknown names are ignored.
func FiltersFromMap(m map[string]bool) Filters {
	f := DefaultFilters()
	for name, on := range m {
		if c, ok := ParseCategory(name); ok {
			f[c] = on
		}
	}
	return f
}

func (f Filters) Enabled(c Category) bool {
	if c < 0 || c >= numCategories {
		return false
	}
	return f[c]
}

func (f *Filters) Set(c Category, on bool) {
	if c < 0 || c >= numCategories {
		return
	}
	f[c] = on
}

func (f *Filters) Toggle(c Category) {
	f.Set(c, !f.Enabled(c))
}

// Role of a chat message author.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Todo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Sources is the bag of content a query is evaluated against.
// It is only read by the search code, never modified.
type Sources struct {
	Messages   []Message `json:"messages"`
	Notes      string    `json:"notes"`
	Write      string    `json:"write"`
	NotesTodos []Todo    `json:"notes_todos"`
	WriteTodos []Todo    `json:"write_todos"`
}

// Panel owning a to-do list.
type Panel string

const (
	PanelNotes Panel = "notes"
	PanelWrite Panel = "write"
)

// TargetKind identifies what a result points at.
type TargetKind int

const (
	TargetMessage TargetKind = iota
	TargetNotes
	TargetWrite
	TargetTodo
)

// Target is the underlying item a result jumps to when activated.
type Target struct {
	Kind         TargetKind
	MessageIndex int    // TargetMessage only
	Panel        Panel  // TargetTodo only
	TodoID       string // TargetTodo only
}

// MatchResult describes a single hit.
type MatchResult struct {
	Category     Category
	Type         string // category label, e.g. "User Message"
	Location     string // where the hit lives, e.g. "Message #3"
	Snippet      string // truncated source text
	MatchIndices []int  // rune offsets of exact occurrences in the full source text
	Semantic     bool
	Target       Target
	Text         string // full source text

	// Activate is set by the owner of the result list and jumps to Target.
	Activate func() `json:"-"`
}

// SemanticSearcher is an optional asynchronous search backend.
type SemanticSearcher interface {
	IndexSources(sources Sources) error                            // Replace indexed content
	Search(ctx context.Context, query string) ([]MatchResult, error) // Query the index
}
