package db

// SortBy orders FT.SEARCH results by a SORTABLE field.
type SortBy struct {
	Field string
	Desc  bool
}

// Highlight asks the engine to wrap matched terms in the given fields.
type Highlight struct {
	Fields []string
	Open   string
	Close  string
}

// TextQuery is the input for an FT.SEARCH call. Query is a complete query
// expression built with the helpers in query.go; "*" matches everything.
type TextQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	WithScores   bool
	Scorer       string
	Verbatim     bool
	SortBy       *SortBy
	Highlight    *Highlight
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
