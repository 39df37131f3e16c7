package search

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/fedsearch/internal/db"
)

// tokenMatches reports whether an indexed token satisfies a query term under
// the fuzzy rules: substring containment always matches; otherwise the token
// must share the first prefixLen runes and lie within maxEdits of the term.
func tokenMatches(token, term string, maxEdits, prefixLen int) bool {
	if strings.Contains(token, term) {
		return true
	}
	if maxEdits == 0 {
		return false
	}
	if prefixLen > 0 {
		p := firstRunes(term, prefixLen)
		if !strings.HasPrefix(token, p) {
			return false
		}
	}
	return withinDistance(token, term, maxEdits)
}

// anyTokenMatches checks the term and its expansions against every token of values.
func anyTokenMatches(values []string, expansions []string, maxEdits, prefixLen int) bool {
	for _, v := range values {
		for _, tok := range db.Tokenize(v) {
			for _, e := range expansions {
				if tokenMatches(tok, e, maxEdits, prefixLen) {
					return true
				}
			}
		}
	}
	return false
}

// withinDistance reports whether the Levenshtein distance between a and b is
// at most k. Rows are cut short once every cell exceeds k.
func withinDistance(a, b string, k int) bool {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > k {
		return false
	}
	if utf8.RuneCountInString(a) == 0 {
		return len(rb) <= k
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > k {
			return false
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)] <= k
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
