package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/qacache/internal/db"
)

// CreateIndex issues FT.CREATE for a hash index.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return err
	}
	if err := s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists checks an index via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	if err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func createArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", "HASH", "PREFIX", "1", def.Prefix, "SCHEMA"}
	for _, f := range def.Fields {
		fieldArgs, err := fieldArgs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}
	return args, nil
}

func fieldArgs(f db.IndexField) ([]string, error) {
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Kind {
	case db.FieldText:
		return append(args, "TEXT"), nil
	case db.FieldTag:
		return append(args, "TAG"), nil
	case db.FieldVector:
		return append(args, vectorArgs(f.Vector)...), nil
	default:
		return nil, errors.New("unknown field kind")
	}
}

// vectorArgs renders "VECTOR <algo> <nargs> TYPE FLOAT32 DIM ..." with HNSW tuning when set.
func vectorArgs(spec *db.VectorSpec) []string {
	algo := spec.Algorithm
	if algo == "" {
		algo = db.VectorHNSW
	}
	distance := spec.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(spec.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == db.VectorHNSW {
		if spec.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(spec.M))
		}
		if spec.EFConstruction > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(spec.EFConstruction))
		}
	}

	out := make([]string, 0, 3+len(attrs))
	out = append(out, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}
