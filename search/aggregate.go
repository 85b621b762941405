package search

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Result type labels.
const (
	TypeUserMessage = "User Message"
	TypeAIMessage   = "AI Message"
	TypeNote        = "Note"
	TypeWrite       = "Write"
	TypeTodo        = "To-Do"

	semanticSuffix = " (Semantic)"
)

// SemanticType returns the label used for a semantic hit of the given type.
func SemanticType(t string) string {
	return t + semanticSuffix
}

// Search evaluates query against every enabled category of sources.
//
// Results follow category order (messages, notes, write, notes to-dos,
// write to-dos) and then source order within a category. An empty or
// whitespace query yields an empty list.
func Search(query string, sources Sources, filters Filters) []MatchResult {
	if strings.TrimSpace(query) == "" {
		return []MatchResult{}
	}

	q := strings.ToLower(query)
	return lo.FilterMap(Items(sources), func(item MatchResult, _ int) (MatchResult, bool) {
		if !filters.Enabled(item.Category) || !FuzzyMatch(item.Text, q) {
			return item, false
		}
		// Offsets come from the exact matcher, inclusion from the fuzzy one.
		item.MatchIndices = MatchIndices(item.Text, query)
		return item, true
	})
}

// Items lists every searchable item of sources as a result without match
// offsets, in search order. Empty panels and messages with an unknown role
// are skipped.
func Items(sources Sources) []MatchResult {
	items := []MatchResult{}
	add := func(cat Category, typ, location, text string, target Target) {
		items = append(items, MatchResult{
			Category:     cat,
			Type:         typ,
			Location:     location,
			Snippet:      Snippet(text),
			MatchIndices: []int{},
			Target:       target,
			Text:         text,
		})
	}

	for idx, msg := range sources.Messages {
		cat, typ, ok := messageType(msg.Role)
		if !ok {
			continue
		}
		add(cat, typ, MessageLocation(idx), msg.Content, Target{Kind: TargetMessage, MessageIndex: idx})
	}

	if sources.Notes != "" {
		add(Notes, TypeNote, "Notes Panel", sources.Notes, Target{Kind: TargetNotes})
	}
	if sources.Write != "" {
		add(Write, TypeWrite, "Write Panel", sources.Write, Target{Kind: TargetWrite})
	}

	for _, todo := range sources.NotesTodos {
		add(Todos, TypeTodo, "Notes", todo.Text, Target{Kind: TargetTodo, Panel: PanelNotes, TodoID: todo.ID})
	}
	for _, todo := range sources.WriteTodos {
		add(Todos, TypeTodo, "Write", todo.Text, Target{Kind: TargetTodo, Panel: PanelWrite, TodoID: todo.ID})
	}

	return items
}

// MessageLocation is the 1-based location label of a chat message.
func MessageLocation(idx int) string {
	return fmt.Sprintf("Message #%d", idx+1)
}

func messageType(role Role) (Category, string, bool) {
	switch role {
	case RoleUser:
		return User, TypeUserMessage, true
	case RoleAI:
		return AI, TypeAIMessage, true
	}
	return 0, "", false
}
