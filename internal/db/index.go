package db

import (
	"errors"
	"strconv"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance, 1 - cos(a, b), in [0, 2].
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW uses the HNSW algorithm.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat uses the FLAT (brute-force) algorithm.
	VectorFlat VectorAlgorithm = "FLAT"
)

// ParseVectorAlgorithm maps a config value to an algorithm. Empty selects HNSW.
func ParseVectorAlgorithm(s string) (VectorAlgorithm, error) {
	switch s {
	case "", "hnsw", "HNSW":
		return VectorHNSW, nil
	case "flat", "FLAT":
		return VectorFlat, nil
	default:
		return "", errors.New("unknown vector algorithm: " + s)
	}
}

// IndexFieldType enumerates the FT index field types records use.
type IndexFieldType int

const (
	// IndexFieldTag is a tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldVector is a vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// VECTOR options
	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int // HNSW M: max edges per node
	VectorEFConstruct int // HNSW EF_CONSTRUCTION
}

// IndexDefinition is a hash-backed FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
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

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return errors.New("vector field requires positive DIM")
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
