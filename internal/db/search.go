package db

// KNNQuery asks for the K stored hashes nearest to Vector.
type KNNQuery struct {
	IndexName    string
	VectorField  string // schema alias of the vector field, "vector" when empty
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is a cosine similarity in [0,1], best first.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
