package port

import "context"

// Embedder generates vector embeddings for text. The same embedder must be
// used at build time and query time; mixing embedding spaces degrades
// retrieval silently, so the store records ModelName and the retriever
// checks it.
type Embedder interface {
	// Embed generates embeddings for the given texts, one vector per input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
