package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Key names a structured filter accepted on search requests.
type Key string

// Supported filter keys.
const (
	Status     Key = "status"
	City       Key = "city"
	Country    Key = "country"
	SensorType Key = "sensorType"
	CompanyID  Key = "companyId"
	LocationID Key = "locationId"
	ZoneID     Key = "zoneId"
	TenantID   Key = "tenantId"
)

var knownKeys = map[Key]bool{
	Status: true, City: true, Country: true, SensorType: true,
	CompanyID: true, LocationID: true, ZoneID: true, TenantID: true,
}

// MaxValueLength bounds a single filter value.
const MaxValueLength = 256

// IsValid checks if the key is one of the supported filters.
func (k Key) IsValid() bool { return knownKeys[k] }

// Set is an immutable collection of exact-match filters, at most one per key.
// Values are kept as strings; coercion to the target field type happens in
// each executor, which knows its own schema.
type Set struct {
	values map[Key]string
}

// NewSet validates raw filters. Blank values are dropped.
func NewSet(raw map[string]string) (Set, error) {
	values := make(map[Key]string, len(raw))
	for k, v := range raw {
		key := Key(k)
		if !key.IsValid() {
			return Set{}, fmt.Errorf("unknown filter %q", k)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len(v) > MaxValueLength {
			return Set{}, fmt.Errorf("filter %q value too long (max %d)", k, MaxValueLength)
		}
		values[key] = v
	}
	return Set{values: values}, nil
}

// Get returns the value for key.
func (s Set) Get(key Key) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// IsEmpty reports whether the set has no filters.
func (s Set) IsEmpty() bool { return len(s.values) == 0 }

// Len returns the number of filters.
func (s Set) Len() int { return len(s.values) }

// Conditions returns the filters as conditions ordered by key.
func (s Set) Conditions() []Condition {
	out := make([]Condition, 0, len(s.values))
	for k, v := range s.values {
		out = append(out, Condition{key: k, match: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Condition is a single exact-match clause.
type Condition struct {
	key   Key
	match string
}

// NewMatch creates an exact match condition.
func NewMatch(key Key, match string) (Condition, error) {
	if !key.IsValid() {
		return Condition{}, fmt.Errorf("unknown filter %q", key)
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the filter name.
func (c Condition) Key() Key { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
