package search

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
)

const (
	// minInfixLen is the shortest term the engine accepts for infix and fuzzy matching.
	minInfixLen = 3
	// minPrefixLen is the shortest stem the engine expands for prefix queries.
	minPrefixLen = 2
)

// lowerTerm turns one query term into an FT expression honoring the fuzzy options.
//
//	short term:   term*
//	maxEdits=0:   *term*
//	maxEdits=k:   %..%term%..%, ANDed with prefix* when prefixLength allows it
func lowerTerm(term string, f request.Fuzzy) string {
	n := utf8.RuneCountInString(term)
	escaped := db.EscapeText(term)
	if n < minInfixLen {
		return escaped + "*"
	}

	k := f.EffectiveEdits()
	if k == 0 {
		return "*" + escaped + "*"
	}

	marks := strings.Repeat("%", k)
	fuzzy := marks + escaped + marks

	p := min(f.PrefixLength(), n)
	if p < minPrefixLen {
		return fuzzy
	}
	return "(" + fuzzy + " " + db.EscapeText(firstRunes(term, p)) + "*)"
}

// termClause ORs the lowered forms of a term and its synonyms.
func termClause(expansions []string, f request.Fuzzy) string {
	clauses := make([]string, 0, len(expansions))
	for _, e := range expansions {
		clauses = append(clauses, lowerTerm(e, f))
	}
	return db.Union(clauses...)
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
