package db

import (
	"errors"
	"fmt"
	"strings"
)

// StorageType defines the row storage backend for FT indexes.
type StorageType string

// StorageHash stores rows as Redis hashes.
const StorageHash StorageType = "HASH"

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

// DistanceCosine is cosine distance, the only metric listing ranking uses.
const DistanceCosine DistanceMetric = "COSINE"

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW is approximate search over a navigable small-world graph.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat is exact brute-force search.
	VectorFlat VectorAlgorithm = "FLAT"
)

// ParseVectorAlgorithm accepts "hnsw" or "flat" in any case. Empty means HNSW.
func ParseVectorAlgorithm(s string) (VectorAlgorithm, error) {
	switch VectorAlgorithm(strings.ToUpper(strings.TrimSpace(s))) {
	case "", VectorHNSW:
		return VectorHNSW, nil
	case VectorFlat:
		return VectorFlat, nil
	default:
		return "", fmt.Errorf("unknown vector algorithm %q (want hnsw or flat)", s)
	}
}

// VectorSpec describes the single vector field of a listing index.
type VectorSpec struct {
	Algorithm   VectorAlgorithm
	Dim         int
	Distance    DistanceMetric
	M           int // HNSW max edges per node; 0 keeps the engine default
	EFConstruct int // HNSW build-time candidate list size; 0 keeps the engine default
	BlockSize   int // FLAT only
}

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldVector is a vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
// The Vector* attributes apply to IndexFieldVector only.
type IndexField struct {
	Name string
	Type IndexFieldType

	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
	VectorBlockSize   int
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed. A definition
// holds at most one vector field since KNN queries address it by position.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	vectors := 0
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = true

		if f.Type != IndexFieldVector {
			continue
		}
		vectors++
		if vectors > 1 {
			return fmt.Errorf("second vector field %s: only one is supported", f.Name)
		}
		if f.VectorDim <= 0 {
			return errors.New("vector field requires positive DIM")
		}
		if f.VectorAlgo != VectorHNSW && f.VectorAlgo != VectorFlat {
			return fmt.Errorf("vector field %s: unknown algorithm %q", f.Name, f.VectorAlgo)
		}
		if f.VectorM < 0 || f.VectorEFConstruct < 0 || f.VectorBlockSize < 0 {
			return fmt.Errorf("vector field %s: negative tuning parameter", f.Name)
		}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
