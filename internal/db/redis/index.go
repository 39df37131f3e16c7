package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/fedsearch/internal/db"
)

// IndexInfo reads document count and indexing state via FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrap(db.OpIndexInfo, err)
	}

	info := &db.IndexInfo{Name: name}
	// RESP2: flat [key1, value1, key2, value2, ...]
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		switch key {
		case "num_docs":
			info.NumDocs = int(messageInt(&raw[i+1]))
		case "indexing":
			info.Indexing = messageInt(&raw[i+1]) != 0
		}
	}
	return info, nil
}

// messageInt reads integers that RESP2 may encode as integers, strings or doubles.
func messageInt(m *rueidis.RedisMessage) int64 {
	if v, err := m.AsInt64(); err == nil {
		return v
	}
	str, err := m.ToString()
	if err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
