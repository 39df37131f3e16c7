package search

import (
	"math"
	"slices"
	"testing"
	"time"

	domdoc "github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
)

func sortHit(t entity.Type, id string, sv result.SortValue) result.Hit {
	doc := domdoc.Reconstruct(t, id, "t1", "", "", "", "", time.Time{}, time.Time{}, nil)
	return result.NewHit(doc, 0, sv, nil)
}

func TestMerge_MinMaxRelevance(t *testing.T) {
	q := mustQuery(t, request.RawRequest{})
	items, total := Merge([]result.TypeHits{
		hitsOf(entity.Company, 10, 5, 0),
		hitsOf(entity.Sensor, 3, 3),
	}, q, NormalizeMinMax)

	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	want := []string{"COMPANY:1", "SENSOR:1", "SENSOR:2", "COMPANY:2", "COMPANY:3"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	wantScores := []float64{1, 1, 1, 0.5, 0}
	for i, it := range items {
		if math.Abs(it.Score-wantScores[i]) > 1e-9 {
			t.Errorf("items[%d].Score = %v, want %v", i, it.Score, wantScores[i])
		}
	}
}

func TestMerge_RawRelevance(t *testing.T) {
	q := mustQuery(t, request.RawRequest{})
	items, _ := Merge([]result.TypeHits{
		hitsOf(entity.Company, 10, 5, 0),
		hitsOf(entity.Sensor, 3, 3),
	}, q, NormalizeRaw)

	want := []string{"COMPANY:1", "COMPANY:2", "SENSOR:1", "SENSOR:2", "COMPANY:3"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if items[0].Score != 10 {
		t.Errorf("raw score = %v, want 10", items[0].Score)
	}
}

func TestMerge_ExplicitSort(t *testing.T) {
	perType := func() []result.TypeHits {
		return []result.TypeHits{
			{Type: entity.Company, Total: 2, Hits: []result.Hit{
				sortHit(entity.Company, "1", result.StringSort("beta")),
				sortHit(entity.Company, "2", result.SortValue{}),
			}},
			{Type: entity.Location, Total: 2, Hits: []result.Hit{
				sortHit(entity.Location, "2", result.StringSort("alpha")),
				sortHit(entity.Location, "1", result.StringSort("Alpha")),
			}},
		}
	}

	tests := []struct {
		dir  string
		want []string
	}{
		{"ASC", []string{"LOCATION:1", "LOCATION:2", "COMPANY:1", "COMPANY:2"}},
		{"DESC", []string{"COMPANY:1", "LOCATION:1", "LOCATION:2", "COMPANY:2"}},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			q := mustQuery(t, request.RawRequest{SortBy: "name", SortDirection: tt.dir})
			items, _ := Merge(perType(), q, NormalizeMinMax)
			if got := itemKeys(items); !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_NumericSortBeforeMissing(t *testing.T) {
	q := mustQuery(t, request.RawRequest{SortBy: "createdAt", SortDirection: "DESC"})
	items, _ := Merge([]result.TypeHits{
		{Type: entity.Zone, Total: 3, Hits: []result.Hit{
			sortHit(entity.Zone, "1", result.SortValue{}),
			sortHit(entity.Zone, "2", result.NumericSort(100)),
			sortHit(entity.Zone, "3", result.NumericSort(900)),
		}},
	}, q, NormalizeMinMax)

	want := []string{"ZONE:3", "ZONE:2", "ZONE:1"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMerge_NumericIDTieBreak(t *testing.T) {
	q := mustQuery(t, request.RawRequest{SortBy: "status"})
	items, _ := Merge([]result.TypeHits{
		{Type: entity.Report, Total: 3, Hits: []result.Hit{
			sortHit(entity.Report, "10", result.StringSort("ACTIVE")),
			sortHit(entity.Report, "9", result.StringSort("ACTIVE")),
			sortHit(entity.Report, "x", result.StringSort("ACTIVE")),
		}},
	}, q, NormalizeMinMax)

	want := []string{"REPORT:9", "REPORT:10", "REPORT:x"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMerge_Dedupe(t *testing.T) {
	q := mustQuery(t, request.RawRequest{})
	th := hitsOf(entity.Zone, 5, 4)
	th.Hits = append(th.Hits, th.Hits[0])
	items, _ := Merge([]result.TypeHits{th}, q, NormalizeMinMax)
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestMerge_GlobalPagination(t *testing.T) {
	q := mustQuery(t, request.RawRequest{Page: 1, Size: 2})
	items, total := Merge([]result.TypeHits{
		hitsOf(entity.Company, 9, 6, 3),
		hitsOf(entity.Zone, 8, 4),
	}, q, NormalizeRaw)

	if total != 5 {
		t.Errorf("total = %d", total)
	}
	want := []string{"COMPANY:2", "ZONE:2"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("page 1 = %v, want %v", got, want)
	}

	q = mustQuery(t, request.RawRequest{Page: 5, Size: 2})
	items, _ = Merge([]result.TypeHits{hitsOf(entity.Company, 1)}, q, NormalizeRaw)
	if len(items) != 0 {
		t.Errorf("page past end = %v", itemKeys(items))
	}
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		ref    int
		want   []float64
	}{
		{"spread", []float64{4, 2, 0}, 10, []float64{1, 0.5, 0}},
		{"flat", []float64{7, 7}, 10, []float64{1, 1}},
		{"single", []float64{3}, 10, []float64{1}},
		{"reference set", []float64{10, 8, 6}, 2, []float64{1, 0, -1}},
		{"flat reference with tail", []float64{8, 8, 4, 2}, 2, []float64{1, 1, -0.5, -0.75}},
		{"flat zero reference with tail", []float64{0, 0, -1}, 2, []float64{1, 1, -0.5}},
		{"tail tied with flat reference", []float64{5, 5, 5}, 2, []float64{1, 1, 1}},
		{"empty", nil, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := minMax(tt.scores, tt.ref)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMinMax_FlatTailScaleFree(t *testing.T) {
	small := minMax([]float64{8, 8, 4}, 2)
	large := minMax([]float64{800, 800, 400}, 2)
	for i := range small {
		if math.Abs(small[i]-large[i]) > 1e-9 {
			t.Errorf("[%d] = %v vs %v, want equal keys across score scales", i, small[i], large[i])
		}
	}
}

func TestMerge_FlatTailsCompareRelatively(t *testing.T) {
	q := mustQuery(t, request.RawRequest{Page: 2, Size: 2})
	items, _ := Merge([]result.TypeHits{
		hitsOf(entity.Company, 800, 800, 600),
		hitsOf(entity.Sensor, 8, 8, 4),
	}, q, NormalizeMinMax)

	want := []string{"COMPANY:3", "SENSOR:3"}
	if got := itemKeys(items); !slices.Equal(got, want) {
		t.Errorf("tail page = %v, want %v", got, want)
	}
}

func TestMerge_ReportedScoresClamped(t *testing.T) {
	q := mustQuery(t, request.RawRequest{Size: 1})
	items, _ := Merge([]result.TypeHits{hitsOf(entity.Company, 10, 8, 6)}, q, NormalizeMinMax)
	if len(items) != 1 || items[0].Score != 1 {
		t.Fatalf("items = %+v", items)
	}

	q = mustQuery(t, request.RawRequest{Page: 2, Size: 1})
	items, _ = Merge([]result.TypeHits{hitsOf(entity.Company, 10, 8, 6)}, q, NormalizeMinMax)
	if len(items) != 1 || items[0].ID != "3" || items[0].Score != 0 {
		t.Fatalf("items = %+v", items)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestParseNormalization(t *testing.T) {
	if n, ok := ParseNormalization(""); !ok || n != NormalizeMinMax {
		t.Errorf("empty = %q, %v", n, ok)
	}
	if n, ok := ParseNormalization("raw"); !ok || n != NormalizeRaw {
		t.Errorf("raw = %q, %v", n, ok)
	}
	if _, ok := ParseNormalization("zscore"); ok {
		t.Error("zscore accepted")
	}
}
