package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbedder produces deterministic embeddings without any network call,
// for tests and offline runs. Words are hashed into vector buckets, so
// identical texts map to identical vectors and texts sharing words land
// near each other under cosine similarity.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

// Embed generates one deterministic vector per input text.
func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embedOne(text)
	}
	return embeddings, nil
}

func (e *MockEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%uint32(e.dimension)] += 1.0
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec
}

// Dimension returns the embedding vector dimension.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
