package corpus

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/astrobio/internal/db"
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
)

//go:embed sample.yaml
var sampleCorpus []byte

// Loader populates the corpus before the first request.
type Loader interface {
	Load(ctx context.Context) ([]domdoc.Document, error)
}

// Load runs l and builds an immutable Store.
func Load(ctx context.Context, l Loader) (*Store, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(docs)
}

// BuiltinLoader serves the embedded sample corpus.
type BuiltinLoader struct{}

// Load parses the embedded corpus.
func (BuiltinLoader) Load(_ context.Context) ([]domdoc.Document, error) {
	return parseYAML(sampleCorpus)
}

// FileLoader reads a YAML corpus from disk.
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l FileLoader) Load(_ context.Context) ([]domdoc.Document, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", l.Path, err)
	}
	docs, err := parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("corpus file %s: %w", l.Path, err)
	}
	return docs, nil
}

// RecordsLoader wraps in-memory records (SDK and tests).
type RecordsLoader []Record

// Load normalizes the records.
func (l RecordsLoader) Load(_ context.Context) ([]domdoc.Document, error) {
	records := make([]Record, len(l))
	copy(records, l)
	return toDocuments(records)
}

func parseYAML(data []byte) ([]domdoc.Document, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus yaml: %w", err)
	}
	return toDocuments(f.Documents)
}

// RedisLoader reads documents stored as hashes under <prefix>doc:<id>.
type RedisLoader struct {
	store  db.HashReader
	prefix string
}

// NewRedisLoader creates a loader over a read-only hash store.
func NewRedisLoader(s db.HashReader, prefix string) *RedisLoader {
	return &RedisLoader{store: s, prefix: prefix}
}

// Load lists the document keys and fetches them with pipelined reads.
// Keys arrive in lexical order so the corpus order is stable across restarts.
func (l *RedisLoader) Load(ctx context.Context) ([]domdoc.Document, error) {
	keyPrefix := l.prefix + "doc:"
	keys, err := l.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", keyPrefix, err)
	}

	hashes, err := l.store.Hashes(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		rec, err := parseHashFields(keys[i][len(keyPrefix):], m)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", keys[i], err)
		}
		records = append(records, rec)
	}
	return toDocuments(records)
}
