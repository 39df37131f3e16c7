package search

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
)

// Normalization selects how relevance scores are made comparable across types.
type Normalization string

// Score normalization modes.
const (
	NormalizeMinMax Normalization = "minmax"
	NormalizeRaw    Normalization = "raw"
)

// ParseNormalization resolves a config value. Empty means min-max.
func ParseNormalization(s string) (Normalization, bool) {
	switch Normalization(s) {
	case "", NormalizeMinMax:
		return NormalizeMinMax, true
	case NormalizeRaw:
		return NormalizeRaw, true
	default:
		return "", false
	}
}

// ranked pairs a hit with its ordering key and its reported relevance.
type ranked struct {
	hit   *result.Hit
	key   float64
	score float64
}

type hitKey struct {
	rank int
	id   string
}

// Merge combines per-type windows into the requested global page.
// total is the sum of per-type totals.
func Merge(perType []result.TypeHits, q *request.Query, norm Normalization) ([]result.Item, int) {
	total := 0
	n := 0
	for i := range perType {
		total += perType[i].Total
		n += len(perType[i].Hits)
	}

	relevance := q.SortBy().IsRelevance()
	seen := make(map[hitKey]bool, n)
	all := make([]ranked, 0, n)
	for i := range perType {
		hits := perType[i].Hits
		keys := rawScores(hits)
		scores := keys
		if relevance && norm != NormalizeRaw {
			keys = minMax(keys, q.Size())
			scores = clamp01(keys)
		}
		for j := range hits {
			h := &hits[j]
			k := hitKey{rank: h.EntityType().Rank(), id: h.ID()}
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, ranked{hit: h, key: keys[j], score: scores[j]})
		}
	}

	if relevance {
		slices.SortFunc(all, compareRelevance)
	} else {
		desc := q.Direction() == order.Desc
		slices.SortFunc(all, func(a, b ranked) int { return compareField(a, b, desc) })
	}

	start := min(max(q.Offset(), 0), len(all))
	end := min(max(q.End(), start), len(all))
	page := all[start:end]

	items := make([]result.Item, 0, len(page))
	for _, r := range page {
		items = append(items, result.ItemFromHit(r.hit, r.score))
	}
	return items, total
}

// TotalPages returns ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func rawScores(hits []result.Hit) []float64 {
	out := make([]float64, len(hits))
	for i := range hits {
		out[i] = hits[i].Score()
	}
	return out
}

// minMax rescales scores against the best ref scores of the list, so the
// mapping does not depend on how deep the window reaches. Scores inside the
// reference set land in [0,1]; a flat reference set maps to 1.0. Scores below
// the reference set land below 0. The mapping is strictly increasing, which
// keeps the backend's order within a type.
func minMax(scores []float64, ref int) []float64 {
	if len(scores) == 0 {
		return scores
	}
	top := slices.Clone(scores)
	slices.SortFunc(top, func(a, b float64) int { return cmp.Compare(b, a) })
	top = top[:max(1, min(ref, len(top)))]
	hi, lo := top[0], top[len(top)-1]

	out := make([]float64, len(scores))
	for i, s := range scores {
		switch {
		case hi != lo:
			out[i] = (s - lo) / (hi - lo)
		case s >= lo:
			out[i] = 1.0
		default:
			out[i] = belowFlat(s, lo)
		}
	}
	return out
}

// belowFlat places a score under a flat reference set relative to that
// set's score, so raw magnitudes never reach the merged ordering.
func belowFlat(s, lo float64) float64 {
	if lo > 0 {
		return (s - lo) / lo
	}
	d := lo - s
	return -d / (1 + d)
}

func clamp01(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = min(1, max(0, s))
	}
	return out
}

func compareRelevance(a, b ranked) int {
	if c := cmp.Compare(b.key, a.key); c != 0 {
		return c
	}
	return compareIdentity(a.hit, b.hit)
}

// compareField orders by sort value; hits without one go last in both directions.
func compareField(a, b ranked, desc bool) int {
	av, bv := a.hit.SortValue(), b.hit.SortValue()
	switch {
	case av.IsPresent() && !bv.IsPresent():
		return -1
	case !av.IsPresent() && bv.IsPresent():
		return 1
	case av.IsPresent():
		c := av.Compare(bv)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return compareIdentity(a.hit, b.hit)
}

// compareIdentity is the final tie-break: entity type in canonical order,
// then id, numerically when both ids are integers.
func compareIdentity(a, b *result.Hit) int {
	if c := cmp.Compare(a.EntityType().Rank(), b.EntityType().Rank()); c != 0 {
		return c
	}
	return compareIDs(a.ID(), b.ID())
}

func compareIDs(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}
