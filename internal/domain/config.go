package domain

// VectorConfig holds record index settings, not exposed to clients.
type VectorConfig struct {
	Dimensions     int
	HNSWM          int
	EFConstruction int
}

// DefaultVectorConfig returns the default configuration tuned for nomic-embed-text served by Ollama.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Dimensions:     768,
		HNSWM:          16,
		EFConstruction: 200,
	}
}
