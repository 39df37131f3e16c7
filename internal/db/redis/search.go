package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/fedsearch/internal/db"
)

// Search runs an FT.SEARCH query.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}

	return parseSearchResult(raw, q.WithScores)
}

func buildSearchArgs(q *db.TextQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	args := []string{q.IndexName, q.Query}

	if q.Verbatim {
		args = append(args, "VERBATIM")
	}
	if q.WithScores {
		args = append(args, "WITHSCORES")
	}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	if h := q.Highlight; h != nil && len(h.Fields) > 0 {
		args = append(args, "HIGHLIGHT", "FIELDS", strconv.Itoa(len(h.Fields)))
		args = append(args, h.Fields...)
		if h.Open != "" && h.Close != "" {
			args = append(args, "TAGS", h.Open, h.Close)
		}
	}
	if q.Scorer != "" {
		args = append(args, "SCORER", q.Scorer)
	}
	if q.SortBy != nil && q.SortBy.Field != "" {
		dir := "ASC"
		if q.SortBy.Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy.Field, dir)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	stride := 2 // [total, key1, fields1, key2, fields2, ...]
	if withScores {
		stride = 3 // [total, key1, score1, fields1, ...]
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/stride)
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key}
		if withScores {
			score, ok := parseScore(&raw[i+1])
			if !ok {
				continue
			}
			entry.Score = score
		}

		fields, err := raw[i+stride-1].ToArray()
		if err != nil {
			continue
		}
		entry.Fields = parseFieldPairs(fields)
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseScore(m *rueidis.RedisMessage) (float64, bool) {
	if str, err := m.ToString(); err == nil {
		f, err := strconv.ParseFloat(str, 64)
		return f, err == nil
	}
	f, err := m.AsFloat64()
	return f, err == nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
