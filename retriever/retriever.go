// Package retriever finds curriculum documents similar to a query.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/edugen/edugen"
)

// DefaultTopK matches the number of documents graded per retrieval.
const DefaultTopK = 3

// ErrDimensionMismatch is returned when a vector does not match the store dimension.
var ErrDimensionMismatch = errors.New("retriever: vector dimension mismatch")

// Document is one curriculum achievement standard.
type Document struct {
	Basecode    string    `json:"basecode"`
	Content     string    `json:"content"`
	SchoolLevel string    `json:"school_level"`
	Grade       string    `json:"grade"`
	Domain      string    `json:"domain"`
	Category    string    `json:"category"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// Retriever returns the k documents most relevant to query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Document, error)
}

// VectorStore stores documents with their embeddings and searches them by similarity.
type VectorStore interface {
	Search(ctx context.Context, vector []float32, k int) ([]Document, error)
	Upsert(ctx context.Context, docs []Document) (int, error)
}

// EmbeddingRetriever embeds the query and searches a VectorStore.
type EmbeddingRetriever struct {
	embedder edugen.Embedder
	store    VectorStore
}

// New creates an EmbeddingRetriever.
func New(embedder edugen.Embedder, store VectorStore) *EmbeddingRetriever {
	return &EmbeddingRetriever{embedder: embedder, store: store}
}

// Retrieve implements Retriever.
func (r *EmbeddingRetriever) Retrieve(ctx context.Context, query string, k int) ([]Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("retriever: expected 1 query vector, got %d", len(vectors))
	}
	docs, err := r.store.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("retriever: search: %w", err)
	}
	return docs, nil
}
