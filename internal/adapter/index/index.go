package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"ayurbot/internal/domain"
)

// Index is an append-only in-memory vector index over document chunks.
// Search is brute-force cosine similarity; durable state lives in the
// persisted snapshot (see Persist/Load), never in this struct.
//
// Mutation discipline: single writer (the index builder), multiple
// readers (retrieval). The RWMutex covers in-process use; cross-process
// coordination is via the atomic snapshot swap.
type Index struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	vectors   [][]float32
	completed map[string]struct{}
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		completed: make(map[string]struct{}),
	}
}

// Dimension returns the vector dimension the index was created with.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// SourceIDs returns the set of source ids present in the index,
// whether or not their files finished embedding.
func (ix *Index) SourceIDs() map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make(map[string]struct{})
	for _, c := range ix.chunks {
		ids[c.SourceID] = struct{}{}
	}
	return ids
}

// MarkComplete records that every chunk of the given source has been
// embedded and appended. Only completed sources are skipped on resume;
// a batch-granularity checkpoint may persist chunks of a file that is
// still in flight, and that file must be re-processed after a crash.
func (ix *Index) MarkComplete(sourceID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.completed[sourceID] = struct{}{}
}

// CompletedSources returns the set of fully indexed source ids.
func (ix *Index) CompletedSources() map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make(map[string]struct{}, len(ix.completed))
	for id := range ix.completed {
		ids[id] = struct{}{}
	}
	return ids
}

// PruneIncomplete drops chunks whose source never finished embedding,
// so re-processing that source after a crash cannot duplicate them.
// Returns the number of chunks removed.
func (ix *Index) PruneIncomplete() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := 0
	removed := 0
	for i := range ix.chunks {
		if _, ok := ix.completed[ix.chunks[i].SourceID]; !ok {
			removed++
			continue
		}
		ix.chunks[kept] = ix.chunks[i]
		ix.vectors[kept] = ix.vectors[i]
		kept++
	}
	ix.chunks = ix.chunks[:kept]
	ix.vectors = ix.vectors[:kept]
	return removed
}

// Add appends chunks with their embeddings. Chunks and vectors must be
// the same length and every vector must match the index dimension.
func (ix *Index) Add(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != ix.dimension {
			return fmt.Errorf("vector %d dimension mismatch: expected %d, got %d", i, ix.dimension, len(v))
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.chunks = append(ix.chunks, chunks...)
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns the k most similar chunks to the query vector, best
// match first. Returns domain.ErrEmptyIndex when nothing is indexed.
func (ix *Index) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", ix.dimension, len(query))
	}

	scored := make([]domain.ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: ix.chunks[i],
			Score: cosineSimilarity(query, ix.vectors[i]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
