package order

import "strings"

// Direction is the sort direction for an explicit sort field.
type Direction string

// Sort directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection resolves a case-insensitive direction. Empty means Asc.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, true
	case "DESC":
		return Desc, true
	default:
		return "", false
	}
}

// Key is a logical sort field. Executors resolve it to their own index field.
type Key string

// Sort keys understood by at least one entity schema.
const (
	Relevance  Key = "relevance"
	ID         Key = "id"
	Name       Key = "name"
	Status     Key = "status"
	CreatedAt  Key = "createdAt"
	UpdatedAt  Key = "updatedAt"
	City       Key = "city"
	Country    Key = "country"
	SensorType Key = "sensorType"
)

var known = []Key{Relevance, ID, Name, Status, CreatedAt, UpdatedAt, City, Country, SensorType}

// ParseKey resolves a sort key. Empty means Relevance. Matching ignores case.
func ParseKey(s string) (Key, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Relevance, true
	}
	for _, k := range known {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// IsRelevance reports whether results are ordered by relevance score.
func (k Key) IsRelevance() bool { return k == Relevance || k == "" }
