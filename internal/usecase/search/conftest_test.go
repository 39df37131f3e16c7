package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	domdoc "github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

// --- Mocks ---

type fakeDoc struct {
	id     string
	tenant string
	name   string
	score  float64
	sort   result.SortValue
}

// fakeExecutor emulates one entity index: it applies the scope and a
// substring match on name, orders by score, and returns a window.
type fakeExecutor struct {
	t     entity.Type
	docs  []fakeDoc
	err   error
	block bool

	mu     sync.Mutex
	calls  int
	scopes []scope.Scope
}

func (f *fakeExecutor) EntityType() entity.Type { return f.t }

func (f *fakeExecutor) Search(ctx context.Context, q *request.Query, sc scope.Scope) (result.TypeHits, error) {
	f.mu.Lock()
	f.calls++
	f.scopes = append(f.scopes, sc)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return result.TypeHits{}, domain.NewExecutorError(f.t, domain.ErrTimeout, ctx.Err())
	}
	if f.err != nil {
		return result.TypeHits{}, f.err
	}

	var matched []fakeDoc
	for _, d := range f.docs {
		if !sc.Permits(d.tenant) {
			continue
		}
		if q.Text() != "" && !strings.Contains(strings.ToLower(d.name), strings.ToLower(q.Text())) {
			continue
		}
		matched = append(matched, d)
	}
	slices.SortStableFunc(matched, func(a, b fakeDoc) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		return compareIDs(a.id, b.id)
	})

	total := len(matched)
	window := min(len(matched), q.End()+fakeWindowBuffer)
	hits := make([]result.Hit, 0, window)
	for _, d := range matched[:window] {
		doc := domdoc.Reconstruct(f.t, d.id, d.tenant, "", d.name, "", "ACTIVE", time.Time{}, time.Time{}, nil)
		hits = append(hits, result.NewHit(doc, d.score, d.sort, nil))
	}
	return result.TypeHits{Type: f.t, Hits: hits, Total: total}, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeWindowBuffer mirrors the executor window buffer.
const fakeWindowBuffer = 10

// --- Helpers ---

func newFakes() map[entity.Type]*fakeExecutor {
	out := make(map[entity.Type]*fakeExecutor)
	for _, t := range entity.All() {
		out[t] = &fakeExecutor{t: t}
	}
	return out
}

func executorsOf(fakes map[entity.Type]*fakeExecutor) []Executor {
	out := make([]Executor, 0, len(fakes))
	for _, t := range entity.All() {
		if f, ok := fakes[t]; ok {
			out = append(out, f)
		}
	}
	return out
}

func newTestService(fakes map[entity.Type]*fakeExecutor, opts CoordinatorOptions) *Service {
	return New(NewCoordinator(executorsOf(fakes), opts), Options{})
}

func mustQuery(t *testing.T, raw request.RawRequest) *request.Query {
	t.Helper()
	q, _, err := request.Normalize(raw, request.Limits{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return &q
}

func tenantUser(tenant string) scope.Principal {
	return scope.Principal{UserID: "u1", TenantID: tenant, Roles: []string{"USER"}}
}

func adminUser() scope.Principal {
	return scope.Principal{UserID: "root", TenantID: "t-admin", Roles: []string{"ROLE_ADMIN"}}
}

func docs(tenant, prefix string, n int) []fakeDoc {
	out := make([]fakeDoc, n)
	for i := range out {
		out[i] = fakeDoc{
			id:     fmt.Sprint(i + 1),
			tenant: tenant,
			name:   fmt.Sprintf("%s %d", prefix, i+1),
			score:  float64(n - i),
		}
	}
	return out
}

func hitsOf(t entity.Type, scores ...float64) result.TypeHits {
	hits := make([]result.Hit, len(scores))
	for i, s := range scores {
		doc := domdoc.Reconstruct(t, fmt.Sprint(i+1), "t1", "", "", "", "", time.Time{}, time.Time{}, nil)
		hits[i] = result.NewHit(doc, s, result.SortValue{}, nil)
	}
	return result.TypeHits{Type: t, Hits: hits, Total: len(hits)}
}

func itemKeys(items []result.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it.EntityType) + ":" + it.ID
	}
	return out
}
