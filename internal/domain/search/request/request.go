package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
)

// Search parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength      = 4096
	DefaultPageSize     = 20
	HardMaxPageSize     = 1000
	DefaultMaxEdits     = 1
	DefaultPrefixLength = 1
	MaxEdits            = 2
	// DefaultMaxWindow bounds how deep into the merged ranking a page may reach.
	DefaultMaxWindow = 10000
)

// Limits carries the server-side paging policy. Zero values fall back to defaults.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	// MaxWindow is the deepest result offset an executor fetches. Pages that
	// end past it are rejected, except page 0.
	MaxWindow int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize <= 0 || l.MaxPageSize > HardMaxPageSize {
		l.MaxPageSize = HardMaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	if l.MaxWindow <= 0 {
		l.MaxWindow = DefaultMaxWindow
	}
	return l
}

// RawFuzzy is the caller-supplied fuzzy block. Nil pointers mean "use default".
type RawFuzzy struct {
	Enabled      bool
	MaxEdits     *int
	PrefixLength *int
}

// RawRequest is the unvalidated search request as received from a caller.
type RawRequest struct {
	Query               string
	EntityTypes         []string
	Filters             map[string]string
	Page                int
	Size                int
	SortBy              string
	SortDirection       string
	Fuzzy               RawFuzzy
	SynonymsEnabled     bool
	HighlightingEnabled bool
}

// Fuzzy holds resolved fuzzy-matching options.
type Fuzzy struct {
	enabled      bool
	maxEdits     int
	prefixLength int
}

// NewFuzzy creates fuzzy options, clamping maxEdits to [0,2] and prefixLength to >= 0.
func NewFuzzy(enabled bool, maxEdits, prefixLength int) Fuzzy {
	if maxEdits < 0 {
		maxEdits = 0
	}
	if maxEdits > MaxEdits {
		maxEdits = MaxEdits
	}
	if prefixLength < 0 {
		prefixLength = 0
	}
	return Fuzzy{enabled: enabled, maxEdits: maxEdits, prefixLength: prefixLength}
}

// Enabled reports whether edit-distance matching is on.
func (f Fuzzy) Enabled() bool { return f.enabled }

// MaxEdits returns the edit-distance ceiling.
func (f Fuzzy) MaxEdits() int { return f.maxEdits }

// PrefixLength returns the number of leading characters exempt from edits.
func (f Fuzzy) PrefixLength() int { return f.prefixLength }

// EffectiveEdits is the edit budget actually applied: zero when fuzzy is off.
func (f Fuzzy) EffectiveEdits() int {
	if !f.enabled {
		return 0
	}
	return f.maxEdits
}

// Query is a validated, canonical search query (CanonicalSearchQuery).
type Query struct {
	text      string
	types     []entity.Type
	filters   filter.Set
	page      int
	size      int
	sortBy    order.Key
	direction order.Direction
	fuzzy     Fuzzy
	synonyms  bool
	highlight bool
}

// Normalize validates raw and resolves defaults. Recoverable problems (unknown
// entity types) come back as warnings; the rest as a domain.ValidationError.
func Normalize(raw RawRequest, limits Limits) (Query, []result.Warning, error) {
	limits = limits.withDefaults()

	text := strings.TrimSpace(raw.Query)
	if len(text) > MaxQueryLength {
		return Query{}, nil, domain.NewValidationError("query", fmt.Sprintf("too long (max %d chars)", MaxQueryLength))
	}

	types, warnings := normalizeTypes(raw.EntityTypes)

	filters, err := filter.NewSet(raw.Filters)
	if err != nil {
		return Query{}, nil, domain.NewValidationError("filters", err.Error())
	}

	page := raw.Page
	if page < 0 {
		page = 0
	}
	size := raw.Size
	if size <= 0 {
		size = limits.DefaultPageSize
	}
	if size > limits.MaxPageSize {
		return Query{}, nil, domain.NewValidationError("size", fmt.Sprintf("must not exceed %d", limits.MaxPageSize))
	}
	// (page+1)*size <= MaxWindow, in a form that cannot overflow.
	if page > 0 && page >= limits.MaxWindow/size {
		return Query{}, nil, domain.NewValidationError("page",
			fmt.Sprintf("page*size must stay below the result window of %d", limits.MaxWindow))
	}

	sortBy, ok := order.ParseKey(raw.SortBy)
	if !ok {
		return Query{}, nil, domain.NewValidationError("sortBy", fmt.Sprintf("unknown sort field %q", raw.SortBy))
	}
	direction, ok := order.ParseDirection(raw.SortDirection)
	if !ok {
		return Query{}, nil, domain.NewValidationError("sortDirection", "must be ASC or DESC")
	}

	maxEdits := DefaultMaxEdits
	if raw.Fuzzy.MaxEdits != nil {
		maxEdits = *raw.Fuzzy.MaxEdits
	}
	prefixLength := DefaultPrefixLength
	if raw.Fuzzy.PrefixLength != nil {
		prefixLength = *raw.Fuzzy.PrefixLength
	}

	return Query{
		text:      text,
		types:     types,
		filters:   filters,
		page:      page,
		size:      size,
		sortBy:    sortBy,
		direction: direction,
		fuzzy:     NewFuzzy(raw.Fuzzy.Enabled, maxEdits, prefixLength),
		synonyms:  raw.SynonymsEnabled,
		highlight: raw.HighlightingEnabled,
	}, warnings, nil
}

// normalizeTypes parses entity type tokens, dropping unknown ones with a
// warning and substituting the full set when nothing valid remains.
func normalizeTypes(tokens []string) ([]entity.Type, []result.Warning) {
	var warnings []result.Warning
	seen := make(map[entity.Type]bool, len(tokens))
	types := make([]entity.Type, 0, len(tokens))
	for _, tok := range tokens {
		t, ok := entity.Parse(tok)
		if !ok {
			warnings = append(warnings, result.Warning{
				Code:    result.CodeUnknownEntityType,
				Message: fmt.Sprintf("unknown entity type %q ignored", tok),
			})
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 0 {
		return entity.All(), warnings
	}
	return types, warnings
}

// Text returns the free-text query (may be empty for filter-only browsing).
func (q *Query) Text() string { return q.text }

// Types returns the requested entity types.
func (q *Query) Types() []entity.Type { return q.types }

// Filters returns the structured filters.
func (q *Query) Filters() filter.Set { return q.filters }

// Page returns the zero-based page index.
func (q *Query) Page() int { return q.page }

// Size returns the page size.
func (q *Query) Size() int { return q.size }

// Offset returns the index of the first item on the requested page.
func (q *Query) Offset() int { return q.page * q.size }

// End returns the exclusive end offset of the requested page.
func (q *Query) End() int { return (q.page + 1) * q.size }

// SortBy returns the logical sort key.
func (q *Query) SortBy() order.Key { return q.sortBy }

// Direction returns the sort direction for explicit sort fields.
func (q *Query) Direction() order.Direction { return q.direction }

// Fuzzy returns the fuzzy options.
func (q *Query) Fuzzy() Fuzzy { return q.fuzzy }

// Synonyms reports whether synonym expansion is requested.
func (q *Query) Synonyms() bool { return q.synonyms }

// Highlight reports whether highlight fragments are requested.
func (q *Query) Highlight() bool { return q.highlight }

