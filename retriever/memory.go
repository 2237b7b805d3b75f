package retriever

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
)

// Memory is an in-process VectorStore ranking documents by cosine similarity.
// It is useful for tests and for running without PostgreSQL.
type Memory struct {
	mu   sync.RWMutex
	docs []Document
	seen map[string]bool
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]bool)}
}

// Upsert adds documents whose basecode is not stored yet.
func (m *Memory) Upsert(_ context.Context, docs []Document) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, d := range docs {
		if m.seen[d.Basecode] {
			continue
		}
		m.seen[d.Basecode] = true
		d.Embedding = slices.Clone(d.Embedding)
		m.docs = append(m.docs, d)
		inserted++
	}
	return inserted, nil
}

// Search returns the k documents closest to vector. Ties keep insertion order.
func (m *Memory) Search(_ context.Context, vector []float32, k int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		doc   Document
		score float64
	}
	results := make([]scored, 0, len(m.docs))
	for _, d := range m.docs {
		if len(d.Embedding) != len(vector) {
			continue
		}
		results = append(results, scored{doc: d, score: cosine(vector, d.Embedding)})
	}
	slices.SortStableFunc(results, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	docs := make([]Document, 0, len(results))
	for _, r := range results {
		d := r.doc
		d.Embedding = nil
		docs = append(docs, d)
	}
	return docs, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
