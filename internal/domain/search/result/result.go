package result

import (
	"strings"

	domdoc "github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// HighlightsKey is the metadata key holding highlight fragments by field.
const HighlightsKey = "highlights"

// SortValue is a hit's value for the requested sort field, resolved by the
// executor that produced it. An absent value sorts last.
type SortValue struct {
	present bool
	numeric bool
	num     float64
	str     string
}

// NumericSort creates a numeric sort value.
func NumericSort(f float64) SortValue { return SortValue{present: true, numeric: true, num: f} }

// StringSort creates a string sort value compared case-insensitively.
func StringSort(s string) SortValue { return SortValue{present: true, str: strings.ToLower(s)} }

// IsPresent reports whether the entity had the sort field.
func (v SortValue) IsPresent() bool { return v.present }

// Compare orders two present values: numbers before strings, numbers
// numerically, strings lexicographically.
func (v SortValue) Compare(o SortValue) int {
	switch {
	case v.numeric && o.numeric:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	case v.numeric:
		return -1
	case o.numeric:
		return 1
	}
	return strings.Compare(v.str, o.str)
}

// Hit is a single scored document returned by one executor (ScoredHit).
type Hit struct {
	doc        domdoc.Document
	score      float64
	sortValue  SortValue
	highlights map[string]string
}

// NewHit creates a hit. Negative scores are clamped to zero.
func NewHit(doc domdoc.Document, score float64, sv SortValue, highlights map[string]string) Hit {
	if score < 0 {
		score = 0
	}
	return Hit{doc: doc, score: score, sortValue: sv, highlights: highlights}
}

// EntityType returns the entity variant of the hit.
func (h *Hit) EntityType() entity.Type { return h.doc.EntityType() }

// ID returns the document identifier.
func (h *Hit) ID() string { return h.doc.ID() }

// Score returns the backend relevance score.
func (h *Hit) Score() float64 { return h.score }

// Document returns the raw document.
func (h *Hit) Document() domdoc.Document { return h.doc }

// SortValue returns the value for the requested sort field.
func (h *Hit) SortValue() SortValue { return h.sortValue }

// Highlights returns matched-field fragments (nil when highlighting is off).
func (h *Hit) Highlights() map[string]string { return h.highlights }

// TypeHits is one executor's output: a windowed hit list plus the full match count.
type TypeHits struct {
	Type  entity.Type
	Hits  []Hit
	Total int
}

// Item is one ranked result (RankedResultItem).
type Item struct {
	EntityType  entity.Type
	ID          string
	Name        string
	Description string
	Status      string
	Metadata    map[string]any
	Score       float64
}

// ItemFromHit builds an Item carrying score as the (possibly normalized) relevance.
// Highlights are copied into a fresh metadata map, leaving the document untouched.
func ItemFromHit(h *Hit, score float64) Item {
	doc := h.Document()
	src := doc.Metadata()
	md := make(map[string]any, len(src)+1)
	for k, v := range src {
		md[k] = v
	}
	if len(h.highlights) > 0 {
		hl := make(map[string]string, len(h.highlights))
		for k, v := range h.highlights {
			hl[k] = v
		}
		md[HighlightsKey] = hl
	}
	return Item{
		EntityType:  doc.EntityType(),
		ID:          doc.ID(),
		Name:        doc.Name(),
		Description: doc.Description(),
		Status:      doc.Status(),
		Metadata:    md,
		Score:       score,
	}
}

// Warning codes attached to otherwise successful responses.
const (
	CodeUnknownEntityType  = "UNKNOWN_ENTITY_TYPE"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeQueryMalformed     = "QUERY_MALFORMED"
	CodeTimeout            = "TIMEOUT"
)

// Warning is a non-fatal problem surfaced alongside results.
type Warning struct {
	EntityType entity.Type
	Code       string
	Message    string
}

// Response is the assembled search outcome.
type Response struct {
	SearchID          string
	Results           []Item
	TotalResults      int
	CurrentPage       int
	TotalPages        int
	PageSize          int
	SearchDurationMs  int64
	Warnings          []Warning
	FailedEntityTypes []entity.Type
}
