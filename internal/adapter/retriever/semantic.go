package retriever

import (
	"context"
	"fmt"

	"github.com/saurabh1712/codebase-rag/internal/adapter/store"
	"github.com/saurabh1712/codebase-rag/internal/domain"
	"github.com/saurabh1712/codebase-rag/internal/port"
)

// Semantic retrieves chunks by nearest-neighbor search: it embeds the query
// with the same embedder the index was built with and searches the session's
// vector store.
type Semantic struct {
	embedder port.Embedder
	vectors  *store.VectorStore
}

// NewSemantic creates a retriever over an open vector store.
func NewSemantic(embedder port.Embedder, vectors *store.VectorStore) *Semantic {
	return &Semantic{
		embedder: embedder,
		vectors:  vectors,
	}
}

// Retrieve returns the k chunks nearest to query, best first. It refuses to
// query an index built with a different embedding model: mixing embedding
// spaces degrades relevance with no error signal otherwise.
func (r *Semantic) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	model, _, err := r.vectors.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	if model != "" && model != r.embedder.ModelName() {
		return nil, fmt.Errorf("index was built with embedding model %q but query uses %q", model, r.embedder.ModelName())
	}

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	return r.vectors.Search(embeddings[0], k)
}
