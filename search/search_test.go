package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"substring", "I need help with golang", "golang", true},
		{"case insensitive", "Hello World", "WORLD", true},
		{"query contains text", "go", "golang", true},
		{"empty text", "", "abc", false},
		{"empty query", "abc", "", false},
		{"short query no match", "hello", "xy", false},
		{"one typo short query", "helo", "help", true},
		{"two typos short query", "hxxp", "help", false},
		{"two typos long query", "searching", "seerchinf", true},
		{"three typos long query", "searching", "seerxhinf", false},
		{"skip longer text", "abxcd", "abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatch(tt.a, tt.b))
		})
	}
}

func TestFuzzyMatch_SymmetricOnContainment(t *testing.T) {
	pairs := [][2]string{
		{"abcabc", "abc"},
		{"Notes Panel", "panel"},
		{"x", "the letter X"},
	}
	for _, p := range pairs {
		assert.True(t, FuzzyMatch(p[0], p[1]))
		assert.Equal(t, FuzzyMatch(p[0], p[1]), FuzzyMatch(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestMatchIndices(t *testing.T) {
	assert.Equal(t, []int{0, 3}, MatchIndices("abcabc", "abc"))
	assert.Equal(t, []int{}, MatchIndices("hello", "xyz"))
	assert.Equal(t, []int{0, 2}, MatchIndices("aaaa", "aa"))
	assert.Equal(t, []int{6}, MatchIndices("hello WORLD", "world"))
	assert.Equal(t, []int{}, MatchIndices("hello", ""))
}

func TestMatchIndices_UsesRuneOffsets(t *testing.T) {
	text := "héllo wörld wörld"
	indices := MatchIndices(text, "WÖRLD")
	require.Equal(t, []int{6, 12}, indices)

	runes := []rune(text)
	for _, idx := range indices {
		assert.Equal(t, "wörld", string(runes[idx:idx+5]))
	}
}

func TestSnippet(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, Snippet(short))

	exact := strings.Repeat("a", SnippetLength)
	assert.Equal(t, exact, Snippet(exact))

	long := strings.Repeat("b", SnippetLength+10)
	got := Snippet(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, SnippetLength+3, len([]rune(got)))
}

func TestFilters(t *testing.T) {
	f := DefaultFilters()
	for _, c := range Categories() {
		assert.Equal(t, c != Semantic, f.Enabled(c), c.String())
	}

	f.Toggle(Notes)
	assert.False(t, f.Enabled(Notes))
	f.Set(Semantic, true)
	assert.True(t, f.Enabled(Semantic))

	assert.False(t, f.Enabled(Category(42)))
	f.Set(Category(42), true)
	assert.Len(t, f, len(Categories()))

	fm := FiltersFromMap(map[string]bool{"ai": false, "semantic": true, "bogus": false})
	assert.False(t, fm.Enabled(AI))
	assert.True(t, fm.Enabled(Semantic))
	assert.True(t, fm.Enabled(User))
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(c.String())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ParseCategory("files")
	assert.False(t, ok)
}

func TestSearch_FiltersByCategory(t *testing.T) {
	sources := Sources{
		Messages: []Message{
			{Role: RoleUser, Content: "I need help with X"},
			{Role: RoleAI, Content: "Here is X"},
		},
	}
	filters := DefaultFilters()
	filters.Set(AI, false)

	results := Search("X", sources, filters)
	require.Len(t, results, 1)
	assert.Equal(t, TypeUserMessage, results[0].Type)
	assert.Equal(t, "Message #1", results[0].Location)
	assert.Equal(t, []int{17}, results[0].MatchIndices)
	assert.Equal(t, Target{Kind: TargetMessage, MessageIndex: 0}, results[0].Target)
}

func TestSearch_EmptyQuery(t *testing.T) {
	sources := Sources{Notes: "anything"}
	assert.Empty(t, Search("", sources, DefaultFilters()))
	assert.Empty(t, Search("   ", sources, DefaultFilters()))
	assert.NotNil(t, Search("", sources, DefaultFilters()))
}

func TestSearch_OrderAndLabels(t *testing.T) {
	sources := Sources{
		Messages: []Message{
			{Role: RoleAI, Content: "deploy the service"},
			{Role: RoleUser, Content: "nothing relevant"},
			{Role: RoleUser, Content: "how do I deploy?"},
		},
		Notes:      "deploy checklist",
		Write:      "Draft: deploy notes",
		NotesTodos: []Todo{{ID: "n1", Text: "deploy on friday"}, {ID: "n2", Text: "buy milk"}},
		WriteTodos: []Todo{{ID: "w1", Text: "review deploy doc"}},
	}

	results := Search("deploy", sources, DefaultFilters())
	require.Len(t, results, 6)

	got := make([][2]string, len(results))
	for i, r := range results {
		got[i] = [2]string{r.Type, r.Location}
	}
	assert.Equal(t, [][2]string{
		{TypeAIMessage, "Message #1"},
		{TypeUserMessage, "Message #3"},
		{TypeNote, "Notes Panel"},
		{TypeWrite, "Write Panel"},
		{TypeTodo, "Notes"},
		{TypeTodo, "Write"},
	}, got)

	assert.Equal(t, Target{Kind: TargetTodo, Panel: PanelNotes, TodoID: "n1"}, results[4].Target)
	assert.Equal(t, Target{Kind: TargetTodo, Panel: PanelWrite, TodoID: "w1"}, results[5].Target)
	assert.Equal(t, []int{7}, results[3].MatchIndices)
}

func TestSearch_DisabledTodosAndPanels(t *testing.T) {
	sources := Sources{
		Notes:      "alpha",
		Write:      "alpha",
		NotesTodos: []Todo{{ID: "1", Text: "alpha"}},
	}
	filters := DefaultFilters()
	filters.Set(Todos, false)
	filters.Set(Write, false)

	results := Search("alpha", sources, filters)
	require.Len(t, results, 1)
	assert.Equal(t, TypeNote, results[0].Type)
}

func TestSearch_SnippetTruncatedOffsetsFromFullText(t *testing.T) {
	text := strings.Repeat("x", 130) + " needle"
	results := Search("needle", Sources{Notes: text}, DefaultFilters())
	require.Len(t, results, 1)
	assert.Equal(t, Snippet(text), results[0].Snippet)
	assert.Equal(t, []int{131}, results[0].MatchIndices)
	assert.Equal(t, text, results[0].Text)
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.json")
	data := `{
		"messages": [{"role": "user", "content": "hi"}],
		"notes": "n",
		"write": "w",
		"notes_todos": [{"id": "1", "text": "t"}],
		"write_todos": []
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	sources, err := ReadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hi"}}, sources.Messages)
	assert.Equal(t, "n", sources.Notes)
	assert.Equal(t, []Todo{{ID: "1", Text: "t"}}, sources.NotesTodos)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err = ReadSources(path)
	assert.Error(t, err)

	_, err = ReadSources(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestItems(t *testing.T) {
	sources := Sources{
		Messages:   []Message{{Role: RoleUser, Content: "a"}, {Role: "system", Content: "b"}, {Role: RoleAI, Content: "c"}},
		Write:      "w",
		WriteTodos: []Todo{{ID: "1", Text: "t"}},
	}

	items := Items(sources)
	require.Len(t, items, 4)
	assert.Equal(t, User, items[0].Category)
	assert.Equal(t, AI, items[1].Category)
	assert.Equal(t, "Message #3", items[1].Location)
	assert.Equal(t, Write, items[2].Category)
	assert.Equal(t, Todos, items[3].Category)
	for _, item := range items {
		assert.Empty(t, item.MatchIndices)
	}
}
