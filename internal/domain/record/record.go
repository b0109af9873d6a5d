package record

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/qacache/internal/domain"
)

// Record is a stored question/answer pair (immutable value object).
type Record struct {
	id        string
	text      string
	question  string
	timestamp string
	vector    []float32
}

// New validates and creates a Record that has not been stored yet.
// Text and question must be non-blank; the timestamp is assigned by the cache.
func New(text, question, timestamp string) (Record, error) {
	if strings.TrimSpace(text) == "" {
		return Record{}, fmt.Errorf("%w: text is required", domain.ErrInvalidRecord)
	}
	if strings.TrimSpace(question) == "" {
		return Record{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRecord)
	}
	if timestamp == "" {
		return Record{}, fmt.Errorf("%w: timestamp is required", domain.ErrInvalidRecord)
	}
	return Record{text: text, question: question, timestamp: timestamp}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, text, question, timestamp string, vector []float32) Record {
	return Record{id: id, text: text, question: question, timestamp: timestamp, vector: vector}
}

// WithID returns a copy carrying the identifier assigned at insert time.
func (r Record) WithID(id string) Record {
	r.id = id
	return r
}

// ID returns the record identifier (empty before insert).
func (r Record) ID() string { return r.id }

// Text returns the stored answer.
func (r Record) Text() string { return r.text }

// Question returns the question that produced the answer.
func (r Record) Question() string { return r.question }

// Timestamp returns the creation time in domain.TimestampLayout.
func (r Record) Timestamp() string { return r.timestamp }

// Vector returns the embedding, if it was loaded.
func (r Record) Vector() []float32 { return r.vector }
