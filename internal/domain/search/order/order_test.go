package order

import "testing"

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"", Asc, true},
		{"asc", Asc, true},
		{"DESC", Desc, true},
		{" desc ", Desc, true},
		{"down", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseDirection(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseDirection(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"", Relevance, true},
		{"relevance", Relevance, true},
		{"name", Name, true},
		{"CREATEDAT", CreatedAt, true},
		{"sensorType", SensorType, true},
		{"temperature", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseKey(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseKey(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsRelevance(t *testing.T) {
	if !Relevance.IsRelevance() || !Key("").IsRelevance() {
		t.Error("relevance and empty key sort by score")
	}
	if Name.IsRelevance() {
		t.Error("name is an explicit sort field")
	}
}
