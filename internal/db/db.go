package db

import (
	"context"
	"time"
)

// Store is the read-only facade over the full-text index backend.
type Store interface {
	Pinger
	Searcher
	SynonymReader
	IndexInspector
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs FT.SEARCH queries.
type Searcher interface {
	Search(ctx context.Context, q *TextQuery) (*SearchResult, error)
}

// SynonymReader reads the synonym groups attached to an index.
type SynonymReader interface {
	// SynonymDump returns term -> group ids, as reported by FT.SYNDUMP.
	SynonymDump(ctx context.Context, index string) (map[string][]string, error)
}

// IndexInspector reports index state for health checks.
type IndexInspector interface {
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
}

// IndexInfo is the subset of FT.INFO the engine cares about.
type IndexInfo struct {
	Name     string
	NumDocs  int
	Indexing bool
}
