package search

import (
	"context"
	"strconv"
	"testing"

	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	calls    int
	last     *db.TextQuery
}

func (m *mockStore) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.calls++
	m.last = q
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// mockSynonyms implements synonymSource for tests.
type mockSynonyms struct {
	table map[string][]string
	err   error
	calls int
}

func (m *mockSynonyms) Expand(_ context.Context, _, term string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{term}, m.table[term]...), nil
}

func newTestExecutor(t *testing.T, schema *Schema) (*Executor, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return NewExecutor(schema, ms, nil, Options{}), ms
}

func mustQuery(t *testing.T, raw request.RawRequest) *request.Query {
	t.Helper()
	q, _, err := request.Normalize(raw, request.Limits{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return &q
}

func intPtr(v int) *int { return &v }

// pagedSearch serves entries honoring the query's LIMIT offset and count.
func pagedSearch(entries []db.SearchEntry) func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
	return func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		start := min(q.Offset, len(entries))
		end := min(start+q.Limit, len(entries))
		return &db.SearchResult{Total: len(entries), Entries: entries[start:end]}, nil
	}
}

// zoneEntries builds n zone entries named by name(id), ids 1..n.
func zoneEntries(n int, name func(id int) string) []db.SearchEntry {
	out := make([]db.SearchEntry, 0, n)
	for id := 1; id <= n; id++ {
		out = append(out, db.SearchEntry{
			Key:    "fedsearch:zone:" + strconv.Itoa(id),
			Score:  float64(100 - id),
			Fields: map[string]string{"id": strconv.Itoa(id), "tenant_id": "t1", "name": name(id)},
		})
	}
	return out
}
