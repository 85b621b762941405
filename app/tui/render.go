package main

import (
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/noelzubin/smart_search/search"
)

var (
	ListStyle   = lipgloss.NewStyle().MarginTop(1)
	MatchStyle  = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
	FilterOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	FilterOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	FilterFocus = lipgloss.NewStyle().Underline(true).Bold(true)
)

var whitespace = regexp.MustCompile(`\s{2,}|\t+`)

// Formats the content of the file
// removes newslines and replaces tabs with single space.
func formatContent(content string) string {
	s := stripansi.Strip(content)
	s = strings.ReplaceAll(s, "\n", " ↵ ")
	return whitespace.ReplaceAllString(s, " ")
}

// highlightMatches renders text with every match emphasized. indices are
// rune offsets into text and queryLen is the match length in runes. When
// limit is positive only the first limit runes are shown, followed by the
// snippet ellipsis. Segments are formatted after splitting so reformatting
// can't shift the offsets.
func highlightMatches(text string, indices []int, queryLen, limit int) string {
	runes := []rune(text)
	truncated := false
	if limit > 0 && len(runes) > limit {
		runes = runes[:limit]
		truncated = true
	}

	var b strings.Builder
	last := 0
	for _, idx := range indices {
		if idx < last || idx >= len(runes) || queryLen <= 0 {
			continue
		}
		end := idx + queryLen
		if end > len(runes) {
			end = len(runes)
		}
		b.WriteString(formatContent(string(runes[last:idx])))
		b.WriteString(MatchStyle.Render(formatContent(string(runes[idx:end]))))
		last = end
	}
	b.WriteString(formatContent(string(runes[last:])))
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}

// renderSnippet highlights the matches of r inside its snippet.
func renderSnippet(r search.MatchResult, query string) string {
	return highlightMatches(r.Text, r.MatchIndices, len([]rune(query)), search.SnippetLength)
}

// renderFilters shows every category with its state; focus is underlined.
func renderFilters(filters search.Filters, focus search.Category) string {
	parts := make([]string, 0, len(search.Categories()))
	for _, c := range search.Categories() {
		style := FilterOff
		if filters.Enabled(c) {
			style = FilterOn
		}
		if c == focus {
			style = style.Copy().Inherit(FilterFocus)
		}
		parts = append(parts, style.Render(c.String()))
	}
	return StatusStyle.Render("Filters: ") + strings.Join(parts, " ")
}
