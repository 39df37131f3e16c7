package entity

import "strings"

// Type is one searchable entity kind.
type Type string

// Entity type constants, in canonical order.
const (
	Company   Type = "COMPANY"
	Location  Type = "LOCATION"
	Zone      Type = "ZONE"
	Sensor    Type = "SENSOR"
	Dashboard Type = "DASHBOARD"
	Report    Type = "REPORT"
)

var all = []Type{Company, Location, Zone, Sensor, Dashboard, Report}

// All returns every known entity type in canonical order.
func All() []Type {
	out := make([]Type, len(all))
	copy(out, all)
	return out
}

// Parse resolves a case-insensitive token into a Type.
func Parse(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t.Rank() >= 0
}

// Rank is the position of t in canonical order, or -1 for unknown types.
// Used as the first tie-break key when merging.
func (t Type) Rank() int {
	for i, k := range all {
		if k == t {
			return i
		}
	}
	return -1
}

// Slug is the lowercase form used in index and key names.
func (t Type) Slug() string {
	return strings.ToLower(string(t))
}

func (t Type) String() string { return string(t) }
