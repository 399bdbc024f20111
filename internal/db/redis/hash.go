package redis

import (
	"context"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/astrobio/internal/db"
)

const (
	// scanCount is the COUNT hint passed to SCAN.
	scanCount = 100
	// fetchBatch caps the HGETALL commands pipelined in one DoMulti.
	fetchBatch = 256
)

// Keys walks SCAN until the cursor returns to zero. SCAN may report a key
// more than once, so results are deduplicated and sorted.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(prefix + "*").Count(scanCount).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Key: prefix + "*", Err: err}
		}
		for _, k := range entry.Elements {
			seen[k] = struct{}{}
		}
		if cursor = entry.Cursor; cursor == 0 {
			break
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Hashes pipelines HGETALL for keys in batches of fetchBatch.
func (s *Store) Hashes(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out := make([]map[string]string, 0, len(keys))
	for batch := range slices.Chunk(keys, fetchBatch) {
		cmds := make([]rueidis.Completed, len(batch))
		for i, key := range batch {
			cmds[i] = s.client.B().Hgetall().Key(key).Build()
		}
		for i, res := range s.client.DoMulti(ctx, cmds...) {
			m, err := res.AsStrMap()
			if err != nil {
				return nil, &db.Error{Op: db.OpHGetAll, Key: batch[i], Err: err}
			}
			out = append(out, m)
		}
	}
	return out, nil
}
