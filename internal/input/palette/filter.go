package palette

import (
	"sort"
	"strings"
	"unicode"
)

// SearchResult represents a matched command with scoring information.
type SearchResult struct {
	// Command is the matched command.
	Command *Command

	// Score is the match score (higher is better).
	Score int

	// Matches holds the byte indices of matched characters in the title.
	// It is empty when the match came from another field.
	Matches []int
}

// Field weights. A title hit ranks above an ID hit, which ranks above a
// description or category hit.
const (
	titleBonus = 50
	idBonus    = 25
)

// Filter scores commands against a query with subsequence matching.
type Filter struct {
	// MinScore is the minimum score for a match to be included.
	MinScore int
}

// NewFilter creates a new filter with default settings.
func NewFilter() *Filter {
	return &Filter{}
}

// Search returns the commands matching query, best first. An empty query
// matches every command with score 0 in the given order.
func (f *Filter) Search(commands []*Command, query string) []SearchResult {
	results := make([]SearchResult, 0, len(commands))
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		for _, cmd := range commands {
			results = append(results, SearchResult{Command: cmd})
		}
		return results
	}

	for _, cmd := range commands {
		if score, matches := f.matchCommand(query, cmd); score > f.MinScore {
			results = append(results, SearchResult{Command: cmd, Score: score, Matches: matches})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (f *Filter) matchCommand(query string, cmd *Command) (int, []int) {
	if score, matches := fuzzyMatch(query, cmd.Title); score > 0 {
		return score + titleBonus, matches
	}
	if score, _ := fuzzyMatch(query, cmd.ID); score > 0 {
		return score + idBonus, nil
	}
	if score, _ := fuzzyMatch(query, cmd.Description); score > 0 {
		return score, nil
	}
	if score, _ := fuzzyMatch(query, cmd.Category); score > 0 {
		return score, nil
	}
	return 0, nil
}

// fuzzyMatch matches query as a subsequence of text. query must be lowercase.
func fuzzyMatch(query, text string) (int, []int) {
	if text == "" {
		return 0, nil
	}

	lower := strings.ToLower(text)
	matches := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(lower) && qi < len(query); i++ {
		if lower[i] == query[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0, nil
	}
	return score(query, text, lower, matches), matches
}

func score(query, text, lower string, matches []int) int {
	s := 100

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			s += 20
		}
	}
	for _, idx := range matches {
		if isWordBoundary(text, idx) {
			s += 15
		}
	}

	first, last := matches[0], matches[len(matches)-1]
	if first == 0 {
		s += 25
	} else {
		s -= first
	}
	if gap := last - first - len(matches) + 1; gap > 0 {
		s -= gap * 2
	}
	if len(text) < 20 {
		s += 20 - len(text)
	}
	if strings.HasPrefix(lower, query) {
		s += 50
	}

	if s < 1 {
		s = 1
	}
	return s
}

// isWordBoundary reports whether idx starts a word: the first byte, a byte
// after a separator, or an upper-case letter after a lower-case one.
func isWordBoundary(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(text) {
		return false
	}

	prev, curr := rune(text[idx-1]), rune(text[idx])
	switch prev {
	case '/', '_', '-', '.', ' ', ':':
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}

// Categories returns the sorted unique categories of commands.
func Categories(commands []*Command) []string {
	seen := make(map[string]bool)
	var result []string
	for _, cmd := range commands {
		if cmd.Category != "" && !seen[cmd.Category] {
			seen[cmd.Category] = true
			result = append(result, cmd.Category)
		}
	}
	sort.Strings(result)
	return result
}
