package db

import (
	"errors"
	"fmt"
	"strconv"
)

// DistanceMetric used by vector fields.
type DistanceMetric string

// Supported distance metrics. Scores are only normalized to similarities for COSINE.
const (
	DistanceCosine DistanceMetric = "COSINE"
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
)

// VectorAlgorithm selects the vector indexing algorithm.
type VectorAlgorithm string

// Supported algorithms.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// FieldKind enumerates index field types.
type FieldKind int

// Field kinds.
const (
	FieldText FieldKind = iota
	FieldTag
	FieldVector
)

// VectorSpec configures a vector field.
type VectorSpec struct {
	Dim            int
	Distance       DistanceMetric
	Algorithm      VectorAlgorithm
	M              int // HNSW max edges per node
	EFConstruction int // HNSW build-time candidate list size
}

// IndexField is a single schema attribute. Alias is how queries refer to it.
type IndexField struct {
	Name   string
	Alias  string
	Kind   FieldKind
	Vector *VectorSpec
}

// IndexDefinition describes a hash-backed search index over one key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// Validate checks that the definition is well-formed.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if d.Prefix == "" {
		return errors.New("index prefix is required")
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return errors.New("field name is required at position " + strconv.Itoa(i))
		}
		key := f.Name
		if f.Alias != "" {
			key = f.Alias
		}
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true
		if f.Kind == FieldVector && (f.Vector == nil || f.Vector.Dim <= 0) {
			return fmt.Errorf("vector field %s requires positive dimensions", f.Name)
		}
	}
	return nil
}

// VectorField returns the first vector field, if any.
func (d *IndexDefinition) VectorField() (IndexField, bool) {
	for _, f := range d.Fields {
		if f.Kind == FieldVector {
			return f, true
		}
	}
	return IndexField{}, false
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix sets the key prefix covered by the index.
func (b *IndexBuilder) Prefix(p string) *IndexBuilder {
	b.def.Prefix = p
	return b
}

// Text adds a TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Kind: FieldText})
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Kind: FieldTag})
	return b
}

// Vector adds a VECTOR field stored under name and queried as alias.
func (b *IndexBuilder) Vector(name, alias string, spec VectorSpec) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Alias: alias, Kind: FieldVector, Vector: &spec})
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}
