package qarecord

import (
	"strings"

	"github.com/kailas-cloud/qacache/internal/db"
	"github.com/kailas-cloud/qacache/internal/db/vector"
	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/record"
)

const (
	fieldText      = "text"
	fieldQuestion  = "question"
	fieldTimestamp = "timestamp"
	fieldVector    = "__vector"
	vectorAlias    = "vector"
)

var (
	recordPrefix = domain.KeyPrefix + "record:"
	indexName    = domain.KeyPrefix + "records:idx"
)

func recordKey(id string) string { return recordPrefix + id }

func idFromKey(key string) string { return strings.TrimPrefix(key, recordPrefix) }

func toHash(rec record.Record, vec []float32) map[string]string {
	return map[string]string{
		fieldText:      rec.Text(),
		fieldQuestion:  rec.Question(),
		fieldTimestamp: rec.Timestamp(),
		fieldVector:    vector.Encode(vec),
	}
}

// fromHash rebuilds a record; hashes missing text or question are skipped by callers.
func fromHash(id string, h map[string]string) (record.Record, bool) {
	text, question := h[fieldText], h[fieldQuestion]
	if text == "" || question == "" {
		return record.Record{}, false
	}
	var vec []float32
	if raw, ok := h[fieldVector]; ok {
		vec = vector.Decode(raw)
	}
	return record.Reconstruct(id, text, question, h[fieldTimestamp], vec), true
}

func buildIndex(cfg Config) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName).
		Prefix(recordPrefix).
		Text(fieldQuestion).
		Vector(fieldVector, vectorAlias, db.VectorSpec{
			Dim:            cfg.Dimensions,
			Distance:       db.DistanceCosine,
			Algorithm:      db.VectorHNSW,
			M:              cfg.HNSWM,
			EFConstruction: cfg.HNSWEF,
		}).
		Build()
}
