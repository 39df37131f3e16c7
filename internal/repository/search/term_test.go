package search

import (
	"testing"

	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
)

func TestLowerTerm(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		fuzzy request.Fuzzy
		want  string
	}{
		{"short term is prefix", "ab", request.NewFuzzy(true, 2, 0), "ab*"},
		{"fuzzy off is infix", "north", request.NewFuzzy(false, 2, 1), "*north*"},
		{"zero edits is infix", "north", request.NewFuzzy(true, 0, 1), "*north*"},
		{"one edit, tiny prefix", "nrth", request.NewFuzzy(true, 1, 1), "%nrth%"},
		{"two edits with prefix", "north", request.NewFuzzy(true, 2, 2), "(%%north%% no*)"},
		{"prefix capped at term length", "nor", request.NewFuzzy(true, 1, 5), "(%nor% nor*)"},
		{"escapes syntax", "a-b:c", request.NewFuzzy(false, 0, 0), `*a\-b\:c*`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lowerTerm(tt.term, tt.fuzzy); got != tt.want {
				t.Errorf("lowerTerm(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}

func TestTermClause(t *testing.T) {
	f := request.NewFuzzy(false, 0, 0)
	if got := termClause([]string{"north"}, f); got != "*north*" {
		t.Errorf("single = %q", got)
	}
	if got := termClause([]string{"north", "boreal"}, f); got != "(*north*|*boreal*)" {
		t.Errorf("union = %q", got)
	}
}

func TestFirstRunes(t *testing.T) {
	if got := firstRunes("ørsted", 2); got != "ør" {
		t.Errorf("firstRunes = %q", got)
	}
	if got := firstRunes("ab", 5); got != "ab" {
		t.Errorf("firstRunes = %q", got)
	}
}
