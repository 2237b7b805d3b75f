package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/edugen/edugen"
)

// DefaultBatchSize is the number of documents embedded per request.
const DefaultBatchSize = 50

// Ingester embeds curriculum documents and stores them.
type Ingester struct {
	embedder  edugen.Embedder
	store     VectorStore
	batchSize int
	logger    *slog.Logger
}

// IngestOption configures an Ingester.
type IngestOption func(*Ingester)

// WithBatchSize sets how many documents are embedded per call.
func WithBatchSize(n int) IngestOption {
	return func(i *Ingester) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithIngestLogger sets the logger for progress reports.
func WithIngestLogger(logger *slog.Logger) IngestOption {
	return func(i *Ingester) {
		i.logger = logger
	}
}

// NewIngester creates an Ingester.
func NewIngester(embedder edugen.Embedder, store VectorStore, opts ...IngestOption) *Ingester {
	i := &Ingester{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ReadDocuments decodes a JSON array of curriculum records.
func ReadDocuments(r io.Reader) ([]Document, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("retriever: decode documents: %w", err)
	}
	return docs, nil
}

// Ingest embeds the content of every document lacking an embedding and
// upserts the documents batch by batch. It returns the number inserted.
func (i *Ingester) Ingest(ctx context.Context, docs []Document) (int, error) {
	total := 0
	for start := 0; start < len(docs); start += i.batchSize {
		end := min(start+i.batchSize, len(docs))
		batch := docs[start:end]
		if err := i.embed(ctx, batch); err != nil {
			return total, fmt.Errorf("retriever: embed batch %d-%d: %w", start, end, err)
		}
		n, err := i.store.Upsert(ctx, batch)
		total += n
		if err != nil {
			return total, fmt.Errorf("retriever: store batch %d-%d: %w", start, end, err)
		}
		i.logger.InfoContext(ctx, "ingested batch",
			slog.Int("from", start),
			slog.Int("to", end),
			slog.Int("inserted", n),
		)
	}
	return total, nil
}

func (i *Ingester) embed(ctx context.Context, batch []Document) error {
	var (
		texts []string
		index []int
	)
	for j, d := range batch {
		if len(d.Embedding) == 0 {
			texts = append(texts, d.Content)
			index = append(index, j)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for j, v := range vectors {
		batch[index[j]].Embedding = v
	}
	return nil
}
