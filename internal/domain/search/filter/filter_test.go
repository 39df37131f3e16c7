package filter

import (
	"strings"
	"testing"
)

func TestNewSet_Valid(t *testing.T) {
	s, err := NewSet(map[string]string{
		"status":    "ACTIVE",
		"companyId": " 12 ",
		"city":      "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (blank dropped)", s.Len())
	}
	if v, ok := s.Get(CompanyID); !ok || v != "12" {
		t.Errorf("Get(companyId) = %q, %v", v, ok)
	}
	if _, ok := s.Get(City); ok {
		t.Error("blank city should be dropped")
	}
}

func TestNewSet_UnknownKey(t *testing.T) {
	_, err := NewSet(map[string]string{"building": "A"})
	if err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestNewSet_ValueTooLong(t *testing.T) {
	_, err := NewSet(map[string]string{"status": strings.Repeat("x", MaxValueLength+1)})
	if err == nil {
		t.Fatal("expected error for long value")
	}
}

func TestSet_Empty(t *testing.T) {
	var s Set
	if !s.IsEmpty() {
		t.Error("zero Set must be empty")
	}
	if len(s.Conditions()) != 0 {
		t.Error("zero Set must have no conditions")
	}
}

func TestConditions_SortedByKey(t *testing.T) {
	s, err := NewSet(map[string]string{
		"zoneId":    "1",
		"city":      "Rome",
		"status":    "ACTIVE",
		"companyId": "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conds := s.Conditions()
	want := []Key{City, CompanyID, Status, ZoneID}
	if len(conds) != len(want) {
		t.Fatalf("got %d conditions", len(conds))
	}
	for i, k := range want {
		if conds[i].Key() != k {
			t.Errorf("conds[%d] = %q, want %q", i, conds[i].Key(), k)
		}
	}
}

func TestNewMatch(t *testing.T) {
	if _, err := NewMatch(Status, ""); err == nil {
		t.Error("expected error for empty match")
	}
	if _, err := NewMatch("nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	c, err := NewMatch(SensorType, "CO2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Key() != SensorType || c.Match() != "CO2" {
		t.Errorf("unexpected condition %+v", c)
	}
}
