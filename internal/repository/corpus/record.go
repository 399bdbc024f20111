package corpus

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
	"github.com/kailas-cloud/astrobio/internal/domain/text"
)

// Record is the serialized form of a corpus document shared by all loaders.
type Record struct {
	ID        string    `yaml:"id" validate:"required,max=256"`
	Title     string    `yaml:"title" validate:"required"`
	Abstract  string    `yaml:"abstract"`
	Organism  string    `yaml:"organism"`
	Mission   string    `yaml:"mission"`
	Year      int       `yaml:"year" validate:"gt=0"`
	Tags      []string  `yaml:"tags"`
	Embedding []float32 `yaml:"embedding,omitempty"`
}

// file is the top-level layout of YAML corpus sources.
type file struct {
	Documents []Record `yaml:"documents"`
}

var validate = validator.New()

// Hash field names for Redis-stored records.
const (
	fieldTitle     = "title"
	fieldAbstract  = "abstract"
	fieldOrganism  = "organism"
	fieldMission   = "mission"
	fieldYear      = "year"
	fieldTags      = "tags"
	fieldEmbedding = "__embedding"
	tagSeparator   = ","
)

// UnknownMission labels documents whose source names no mission.
const UnknownMission = "Unspecified"

// toDocuments validates and normalizes records in order.
// Missing organism and mission are classified; missing tags get the research domain.
func toDocuments(records []Record) ([]domdoc.Document, error) {
	out := make([]domdoc.Document, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		rec := &records[i]
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, rec.ID, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		doc, err := normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, rec.ID, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func normalize(rec *Record) (domdoc.Document, error) {
	title := strings.TrimSpace(rec.Title)
	abstract := strings.TrimSpace(rec.Abstract)

	organism := strings.TrimSpace(rec.Organism)
	if organism == "" {
		organism = text.ClassifyOrganism(title, abstract)
	}
	mission := strings.TrimSpace(rec.Mission)
	if mission == "" {
		mission = UnknownMission
	}
	tags := rec.Tags
	if len(tags) == 0 {
		tags = []string{text.ClassifyDomain(title, abstract)}
	}

	doc, err := domdoc.New(rec.ID, title, abstract, organism, mission, rec.Year, tags)
	if err != nil {
		return domdoc.Document{}, err
	}
	if len(rec.Embedding) > 0 {
		doc = doc.WithEmbedding(rec.Embedding)
	}
	return doc, nil
}

// parseHashFields converts a flat hash map into a Record.
func parseHashFields(id string, m map[string]string) (Record, error) {
	rec := Record{
		ID:       id,
		Title:    m[fieldTitle],
		Abstract: m[fieldAbstract],
		Organism: m[fieldOrganism],
		Mission:  m[fieldMission],
	}
	if y, ok := m[fieldYear]; ok {
		year, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return Record{}, fmt.Errorf("parse year %q: %w", y, err)
		}
		rec.Year = year
	}
	if t := m[fieldTags]; t != "" {
		for _, tag := range strings.Split(t, tagSeparator) {
			if tag = strings.TrimSpace(tag); tag != "" {
				rec.Tags = append(rec.Tags, tag)
			}
		}
	}
	if v, ok := m[fieldEmbedding]; ok {
		rec.Embedding = bytesToVector(v)
	}
	return rec, nil
}

// bytesToVector deserializes a binary string to []float32 (4 bytes per float, little-endian).
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
