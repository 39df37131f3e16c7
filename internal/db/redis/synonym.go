package redis

import (
	"context"

	"github.com/kailas-cloud/fedsearch/internal/db"
)

// SynonymDump returns the synonym table of an index via FT.SYNDUMP.
func (s *Store) SynonymDump(ctx context.Context, index string) (map[string][]string, error) {
	cmd := s.b().Arbitrary("FT.SYNDUMP").Args(index).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrap(db.OpSynDump, err)
	}

	out := make(map[string][]string, len(raw)/2)
	// RESP2: [term1, [group...], term2, [group...], ...]
	for i := 0; i+1 < len(raw); i += 2 {
		term, err := raw[i].ToString()
		if err != nil {
			continue
		}
		groups, err := raw[i+1].AsStrSlice()
		if err != nil {
			continue
		}
		out[term] = groups
	}
	return out, nil
}
