package db

// DefaultVectorField is the hash field holding a record's FLOAT32 embedding.
const DefaultVectorField = "embedding"

// ScoreField is the alias FT.SEARCH uses for the KNN relevance value.
const ScoreField = "__vector_score"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to DefaultVectorField
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is the store's relevance value
// exactly as reported (cosine distance for COSINE indexes).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
