package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps each text to a vector of its length and records batch sizes.
type fakeEmbedder struct {
	batches []int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func TestReadDocuments(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(`[
		{"basecode": "[2수01-01]", "content": "수를 센다.", "school_level": "초등학교", "grade": "1~2학년", "domain": "수와 연산", "category": "수학"}
	]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1~2학년", docs[0].Grade)

	_, err = ReadDocuments(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestIngestBatches(t *testing.T) {
	docs := make([]Document, 5)
	for i := range docs {
		docs[i] = Document{Basecode: string(rune('a' + i)), Content: strings.Repeat("x", i+1)}
	}
	docs[2].Embedding = []float32{9, 9}

	embedder := &fakeEmbedder{}
	store := NewMemory()
	n, err := NewIngester(embedder, store, WithBatchSize(2)).Ingest(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	// the third batch holds "e" alone; the second skips the pre-embedded "c"
	assert.Equal(t, []int{2, 1, 1}, embedder.batches)
	assert.Equal(t, []float32{1, 1}, docs[0].Embedding)
	assert.Equal(t, []float32{9, 9}, docs[2].Embedding)
}

func TestIngestEmbedError(t *testing.T) {
	store := NewMemory()
	_, err := NewIngester(&fakeEmbedder{err: errors.New("quota")}, store).
		Ingest(context.Background(), []Document{{Basecode: "a", Content: "x"}})
	assert.ErrorContains(t, err, "quota")
}

func TestEmbeddingRetriever(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	_, err := NewIngester(&fakeEmbedder{}, store).Ingest(ctx, []Document{
		{Basecode: "short", Content: "ab"},
		{Basecode: "long", Content: "abcdefghij"},
	})
	require.NoError(t, err)

	docs, err := New(&fakeEmbedder{}, store).Retrieve(ctx, "abcdefghi", 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "long", docs[0].Basecode)
}
