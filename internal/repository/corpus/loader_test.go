package corpus

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinLoader(t *testing.T) {
	s, err := Load(context.Background(), BuiltinLoader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	doc, err := s.ByID("astro-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Mission() != "Ground Analog" || doc.Organism() != "Microbe" || doc.Year() != 2016 {
		t.Errorf("astro-4 meta = %q/%q/%d", doc.Mission(), doc.Organism(), doc.Year())
	}
	if !strings.HasPrefix(doc.Abstract(), "Microgravity-like conditions") {
		t.Errorf("Abstract() = %q", doc.Abstract())
	}
	// tags absent in the source are classified
	if tags := doc.Tags(); len(tags) != 1 || tags[0] != "Microgravity" {
		t.Errorf("Tags() = %v", tags)
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	content := `documents:
  - id: doc-1
    title: Rodent Muscle Atrophy
    abstract: Mouse models show muscle loss.
    year: 2021
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	docs, err := FileLoader{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len = %d", len(docs))
	}
	if docs[0].Organism() != "Animal" {
		t.Errorf("Organism() = %q, want classified Animal", docs[0].Organism())
	}
	if docs[0].Mission() != UnknownMission {
		t.Errorf("Mission() = %q", docs[0].Mission())
	}
}

func TestFileLoader_Missing(t *testing.T) {
	_, err := FileLoader{Path: "/nonexistent/corpus.yaml"}.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRecordsLoader_Validation(t *testing.T) {
	tests := []struct {
		name    string
		records RecordsLoader
	}{
		{"missing id", RecordsLoader{{Title: "t", Year: 2000}}},
		{"missing title", RecordsLoader{{ID: "a", Year: 2000}}},
		{"zero year", RecordsLoader{{ID: "a", Title: "t"}}},
		{"duplicate", RecordsLoader{{ID: "a", Title: "t", Year: 2000}, {ID: "a", Title: "u", Year: 2001}}},
		{"bad id", RecordsLoader{{ID: "a b", Title: "t", Year: 2000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.records.Load(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRecordsLoader_KeepsEmbedding(t *testing.T) {
	docs, err := RecordsLoader{{ID: "a", Title: "t", Year: 2000, Embedding: []float32{0.1, 0.2}}}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !docs[0].HasEmbedding() {
		t.Error("expected embedding")
	}
}

func vectorBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func TestRedisLoader(t *testing.T) {
	var scanned string
	m := &mockHashReader{
		keysFn: func(_ context.Context, prefix string) ([]string, error) {
			scanned = prefix
			return []string{"astrobio:doc:a", "astrobio:doc:b", "astrobio:doc:gone"}, nil
		},
		hashesFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				switch k {
				case "astrobio:doc:a":
					out[i] = map[string]string{
						"title": "Heart Adaptation", "abstract": "Cardiovascular changes in crew.",
						"year": "2020", "mission": "Artemis", "tags": "Cardiovascular, Crew",
						"__embedding": vectorBytes([]float32{0.5, -0.5}),
					}
				case "astrobio:doc:b":
					out[i] = map[string]string{"title": "Seeds", "year": "2011", "organism": "Plant"}
				default:
					out[i] = map[string]string{}
				}
			}
			return out, nil
		},
	}

	docs, err := NewRedisLoader(m, "astrobio:").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scanned != "astrobio:doc:" {
		t.Errorf("key prefix = %q", scanned)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].ID() != "a" || docs[1].ID() != "b" {
		t.Errorf("order = %s,%s", docs[0].ID(), docs[1].ID())
	}
	if docs[0].Organism() != "Human" {
		t.Errorf("Organism() = %q, want classified Human", docs[0].Organism())
	}
	if tags := docs[0].Tags(); len(tags) != 2 || tags[1] != "Crew" {
		t.Errorf("Tags() = %v", tags)
	}
	if emb := docs[0].Embedding(); len(emb) != 2 || emb[1] != -0.5 {
		t.Errorf("Embedding() = %v", emb)
	}
}

func TestRedisLoader_BadYear(t *testing.T) {
	m := &mockHashReader{
		keysFn: func(context.Context, string) ([]string, error) { return []string{"p:doc:a"}, nil },
		hashesFn: func(context.Context, []string) ([]map[string]string, error) {
			return []map[string]string{{"title": "t", "year": "recent"}}, nil
		},
	}
	if _, err := NewRedisLoader(m, "p:").Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRedisLoader_ScanError(t *testing.T) {
	scanErr := errors.New("connection refused")
	m := &mockHashReader{
		keysFn: func(context.Context, string) ([]string, error) { return nil, scanErr },
	}
	_, err := NewRedisLoader(m, "p:").Load(context.Background())
	if !errors.Is(err, scanErr) {
		t.Fatalf("expected scan error, got %v", err)
	}
}
