package db

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"North Zone", []string{"north", "zone"}},
		{"T-100/b", []string{"t", "100", "b"}},
		{"  ", nil},
		{"ACME, Inc.", []string{"acme", "inc"}},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTagMatch(t *testing.T) {
	got := TagMatch("tenant_id", "acme-1", "b c")
	want := `@tenant_id:{acme\-1|b\ c}`
	if got != want {
		t.Errorf("TagMatch = %q, want %q", got, want)
	}
}

func TestNumericEquals(t *testing.T) {
	if got := NumericEquals("company_id", 42); got != "@company_id:[42 42]" {
		t.Errorf("NumericEquals = %q", got)
	}
}

func TestInFields(t *testing.T) {
	if got := InFields([]string{"name", "city"}, "north*"); got != "@name|city:(north*)" {
		t.Errorf("InFields = %q", got)
	}
	if got := InFields(nil, "x"); got != "x" {
		t.Errorf("InFields(nil) = %q", got)
	}
}

func TestIntersectUnion(t *testing.T) {
	if got := Intersect(); got != MatchAll {
		t.Errorf("Intersect() = %q, want *", got)
	}
	if got := Intersect("", "a"); got != "a" {
		t.Errorf("Intersect single = %q", got)
	}
	if got := Intersect("a", "b"); got != "a b" {
		t.Errorf("Intersect = %q", got)
	}
	if got := Union(); got != "" {
		t.Errorf("Union() = %q", got)
	}
	if got := Union("a", "", "b"); got != "(a|b)" {
		t.Errorf("Union = %q", got)
	}
}

func TestEscapeText(t *testing.T) {
	if got := EscapeText("a-b:c"); got != `a\-b\:c` {
		t.Errorf("EscapeText = %q", got)
	}
}
