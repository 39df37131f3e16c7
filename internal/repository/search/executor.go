package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/logger"
)

// Highlight markers wrapped around matched terms.
const (
	HighlightOpen  = "<em>"
	HighlightClose = "</em>"
)

// Window defaults.
const (
	DefaultWindowBuffer = 10
	DefaultMaxWindow    = request.DefaultMaxWindow
)

// fuzzyScanFactor caps fuzzy refills at this many MaxWindows of candidates.
const fuzzyScanFactor = 4

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// synonymSource expands a term with the synonyms registered on an index.
type synonymSource interface {
	Expand(ctx context.Context, index, term string) ([]string, error)
}

// Options tunes the candidate window each executor fetches.
type Options struct {
	WindowBuffer int
	MaxWindow    int
}

func (o Options) withDefaults() Options {
	if o.WindowBuffer < 0 {
		o.WindowBuffer = 0
	}
	if o.WindowBuffer == 0 {
		o.WindowBuffer = DefaultWindowBuffer
	}
	if o.MaxWindow <= 0 {
		o.MaxWindow = DefaultMaxWindow
	}
	return o
}

// Executor searches one entity index. All six entity types share this
// implementation and differ only by Schema.
type Executor struct {
	schema   *Schema
	store    store
	synonyms synonymSource
	opts     Options
}

// NewExecutor creates an executor for schema. synonyms may be nil.
func NewExecutor(schema *Schema, s store, synonyms synonymSource, opts Options) *Executor {
	return &Executor{schema: schema, store: s, synonyms: synonyms, opts: opts.withDefaults()}
}

// NewExecutors creates one executor per entity type.
func NewExecutors(s store, synonyms synonymSource, opts Options) []*Executor {
	schemas := Schemas()
	out := make([]*Executor, 0, len(schemas))
	for _, sc := range schemas {
		out = append(out, NewExecutor(sc, s, synonyms, opts))
	}
	return out
}

// EntityType returns the type this executor serves.
func (e *Executor) EntityType() entity.Type { return e.schema.Type }

// Schema returns the index layout this executor queries.
func (e *Executor) Schema() *Schema { return e.schema }

// Search runs q against this entity's index, restricted to sc.
func (e *Executor) Search(ctx context.Context, q *request.Query, sc scope.Scope) (result.TypeHits, error) {
	t := e.schema.Type
	if !sc.IsValid() {
		return result.TypeHits{}, fmt.Errorf("%s search: %w", t, domain.ErrAccessDenied)
	}

	filterClauses, err := e.filterClauses(q.Filters())
	if err != nil {
		return result.TypeHits{}, domain.NewExecutorError(t, domain.ErrQueryMalformed, err)
	}

	terms := e.expandTerms(ctx, q)

	clauses := make([]string, 0, len(filterClauses)+2)
	clauses = append(clauses, scopeClause(sc))
	clauses = append(clauses, filterClauses...)
	clauses = append(clauses, e.textClause(terms, q.Fuzzy()))

	want := e.window(q)
	tq := &db.TextQuery{
		IndexName: e.schema.Index.Name,
		Query:     db.Intersect(clauses...),
		Offset:    0,
		Limit:     want,
		Verbatim:  !q.Synonyms(),
	}
	if q.SortBy().IsRelevance() {
		tq.WithScores = true
		tq.Scorer = "BM25"
	} else {
		tq.SortBy = e.sortBy(q)
	}
	if q.Highlight() && len(terms) > 0 {
		tq.Highlight = &db.Highlight{Fields: e.schema.TextFields, Open: HighlightOpen, Close: HighlightClose}
	}

	hits, total, scanned, err := e.fetch(ctx, tq, q, sc, terms, want)
	if err != nil {
		return result.TypeHits{}, err
	}

	logger.FromContext(ctx).Debug("entity search",
		zap.String("entity_type", string(t)),
		zap.Int("total", total),
		zap.Int("window", len(hits)),
		zap.Int("scanned", scanned),
	)

	return result.TypeHits{Type: t, Hits: hits, Total: total}, nil
}

// fetch pulls LIMIT blocks until want candidates survive verification, the
// backend runs out, or the scan budget is spent. total is exact when the
// backend ran out; otherwise it is the backend count minus every hit dropped
// so far, an upper-bound estimate.
func (e *Executor) fetch(
	ctx context.Context, tq *db.TextQuery, q *request.Query, sc scope.Scope, terms [][]string, want int,
) ([]result.Hit, int, int, error) {
	var (
		hits    []result.Hit
		dropped int
		scanned int
		backend int
	)
	budget := e.opts.MaxWindow * fuzzyScanFactor
	for {
		res, err := e.store.Search(ctx, tq)
		if err != nil {
			return nil, 0, scanned, e.classify(ctx, err)
		}
		if res == nil {
			res = &db.SearchResult{}
		}
		backend = res.Total
		batch, d, foreign := e.toHits(res, q, sc, terms)
		if foreign > 0 {
			logger.FromContext(ctx).Warn("dropped documents outside search scope",
				zap.String("entity_type", string(e.schema.Type)),
				zap.String("scope", sc.String()),
				zap.Int("count", foreign),
			)
		}
		hits = append(hits, batch...)
		dropped += d
		scanned += len(res.Entries)

		if scanned >= backend {
			return hits, len(hits), scanned, nil
		}
		if len(res.Entries) == 0 || d == 0 || len(hits) >= want || scanned >= budget {
			return hits, max(backend-dropped, len(hits)), scanned, nil
		}
		next := *tq
		next.Offset = scanned
		next.Limit = min(want, budget-scanned)
		tq = &next
	}
}

// window is the number of candidates needed to fill the requested global page.
func (e *Executor) window(q *request.Query) int {
	return min(q.End()+e.opts.WindowBuffer, e.opts.MaxWindow)
}

func scopeClause(sc scope.Scope) string {
	if tenant, ok := sc.TenantID(); ok {
		return db.TagMatch(document.FieldTenantID, tenant)
	}
	return ""
}

// filterClauses binds filters to this schema. Filters the type does not
// carry are ignored; values that do not fit the field type are malformed.
func (e *Executor) filterClauses(set filter.Set) ([]string, error) {
	var out []string
	for _, cond := range set.Conditions() {
		f, ok := e.schema.FilterAttr(cond.Key())
		if !ok {
			continue
		}
		switch f.Type {
		case db.IndexFieldNumeric:
			v, err := strconv.ParseInt(cond.Match(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %q is not an integer", cond.Key(), cond.Match())
			}
			out = append(out, db.NumericEquals(f.Attribute(), v))
		case db.IndexFieldTag:
			out = append(out, db.TagMatch(f.Attribute(), cond.Match()))
		default:
			out = append(out, db.InFields([]string{f.Attribute()}, db.EscapeText(cond.Match())))
		}
	}
	return out, nil
}

// expandTerms tokenizes the query text and, when synonyms are on, attaches
// each token's synonyms. The first element of every group is the original term.
func (e *Executor) expandTerms(ctx context.Context, q *request.Query) [][]string {
	tokens := db.Tokenize(q.Text())
	groups := make([][]string, 0, len(tokens))
	for _, tok := range tokens {
		group := []string{tok}
		if q.Synonyms() && e.synonyms != nil {
			syns, err := e.synonyms.Expand(ctx, e.schema.Index.Name, tok)
			if err != nil {
				logger.FromContext(ctx).Warn("synonym expansion failed",
					zap.String("entity_type", string(e.schema.Type)),
					zap.Error(err),
				)
			} else {
				group = mergeTerms(group, syns)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func mergeTerms(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	for _, b := range base {
		seen[b] = true
	}
	for _, x := range extra {
		x = strings.ToLower(x)
		if x == "" || seen[x] {
			continue
		}
		seen[x] = true
		base = append(base, x)
	}
	return base
}

func (e *Executor) textClause(terms [][]string, f request.Fuzzy) string {
	if len(terms) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(terms))
	for _, group := range terms {
		clauses = append(clauses, termClause(group, f))
	}
	return db.InFields(e.schema.TextFields, db.Intersect(clauses...))
}

// sortBy resolves an explicit sort key. Types without the field fall back to
// id ascending so their window lines up with the merger's tie-break.
func (e *Executor) sortBy(q *request.Query) *db.SortBy {
	if f, ok := e.schema.SortAttr(q.SortBy()); ok {
		return &db.SortBy{Field: f.Attribute(), Desc: q.Direction() == order.Desc}
	}
	return &db.SortBy{Field: document.FieldID}
}

func (e *Executor) classify(ctx context.Context, err error) error {
	t := e.schema.Type
	switch {
	case errors.Is(err, db.ErrQueryRejected):
		return domain.NewExecutorError(t, domain.ErrQueryMalformed, err)
	case ctx.Err() != nil:
		return domain.NewExecutorError(t, domain.ErrTimeout, err)
	default:
		return domain.NewExecutorError(t, domain.ErrBackendUnavailable, err)
	}
}

// toHits converts raw entries, dropping those that fail fuzzy verification
// or belong to a tenant sc does not permit. dropped includes foreign.
func (e *Executor) toHits(
	res *db.SearchResult, q *request.Query, sc scope.Scope, terms [][]string,
) (hits []result.Hit, dropped, foreign int) {
	if res == nil || len(res.Entries) == 0 {
		return nil, 0, 0
	}

	prefix := DocPrefix(e.schema.Type)
	edits := q.Fuzzy().EffectiveEdits()
	verify := edits > 0 && len(terms) > 0

	hits = make([]result.Hit, 0, len(res.Entries))
	for _, entry := range res.Entries {
		if !sc.Permits(entry.Fields[document.FieldTenantID]) {
			foreign++
			dropped++
			continue
		}
		fields, highlights := splitHighlights(entry.Fields, e.schema.TextFields)
		if verify && !e.verify(fields, terms, edits, q.Fuzzy().PrefixLength()) {
			dropped++
			continue
		}
		id := strings.TrimPrefix(entry.Key, prefix)
		doc := document.FromFields(e.schema.Type, id, fields)
		if !q.Highlight() {
			highlights = nil
		}
		hits = append(hits, result.NewHit(doc, entry.Score, e.sortValue(fields, q), highlights))
	}
	return hits, dropped, foreign
}

// verify requires every query term (or one of its synonyms) to match some token
// of the searchable fields within the edit budget.
func (e *Executor) verify(fields map[string]string, terms [][]string, edits, prefixLen int) bool {
	values := make([]string, 0, len(e.schema.TextFields))
	for _, f := range e.schema.TextFields {
		if v, ok := fields[f]; ok {
			values = append(values, v)
		}
	}
	for _, group := range terms {
		if !anyTokenMatches(values, group, edits, prefixLen) {
			return false
		}
	}
	return true
}

func (e *Executor) sortValue(fields map[string]string, q *request.Query) result.SortValue {
	if q.SortBy().IsRelevance() {
		return result.SortValue{}
	}
	f, ok := e.schema.SortAttr(q.SortBy())
	if !ok {
		return result.SortValue{}
	}
	raw, ok := fields[f.Name]
	if !ok || raw == "" {
		return result.SortValue{}
	}
	if f.Type == db.IndexFieldNumeric {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return result.NumericSort(v)
		}
		return result.SortValue{}
	}
	return result.StringSort(raw)
}

// splitHighlights strips highlight markers from text fields, returning the
// clean values and the marked-up fragments keyed by camelCase field name.
func splitHighlights(fields map[string]string, textFields []string) (map[string]string, map[string]string) {
	var highlights map[string]string
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		clean[k] = v
	}
	for _, f := range textFields {
		v, ok := fields[f]
		if !ok || !strings.Contains(v, HighlightOpen) {
			continue
		}
		if highlights == nil {
			highlights = make(map[string]string)
		}
		highlights[document.CamelCase(f)] = v
		clean[f] = stripMarkers(v)
	}
	return clean, highlights
}

var markerStripper = strings.NewReplacer(HighlightOpen, "", HighlightClose, "")

func stripMarkers(s string) string { return markerStripper.Replace(s) }
