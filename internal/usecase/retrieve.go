package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ayurbot/internal/adapter/index"
	"ayurbot/internal/port"
)

// Retrieval answers "what does the knowledge base say about X" for the
// chat flow. It is strictly best-effort: every failure degrades to an
// empty context so the caller's response path is never blocked.
type Retrieval struct {
	embedder   port.Embedder
	builder    *Builder
	indexPath  string
	sourceRoot string
	topK       int
	logger     *slog.Logger

	mu sync.Mutex
	ix *index.Index
}

func NewRetrieval(
	embedder port.Embedder,
	builder *Builder,
	indexPath, sourceRoot string,
	topK int,
	logger *slog.Logger,
) *Retrieval {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrieval{
		embedder:   embedder,
		builder:    builder,
		indexPath:  indexPath,
		sourceRoot: sourceRoot,
		topK:       topK,
		logger:     logger,
	}
}

// GetContext returns the top-k most relevant passages for the query,
// formatted for prompt injection with source and page attribution.
// Returns "" on any unrecoverable failure. k <= 0 uses the configured
// default.
func (r *Retrieval) GetContext(query string, k int) string {
	if k <= 0 {
		k = r.topK
	}

	ix, err := r.ensureIndex()
	if err != nil {
		r.logger.Warn("no index available for retrieval", "error", err)
		return ""
	}

	vectors, err := r.embedder.Embed([]string{query})
	if err != nil || len(vectors) != 1 {
		r.logger.Warn("failed to embed query", "error", err)
		return ""
	}

	results, err := ix.Search(vectors[0], k)
	if err != nil {
		r.logger.Warn("index search failed", "error", err)
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, res := range results {
		content := strings.ReplaceAll(res.Chunk.Text, "\n", " ")
		blocks = append(blocks, fmt.Sprintf("[Source: %s, Page: %d]\n%s",
			res.Chunk.SourceID, res.Chunk.Page, content))
	}

	return strings.Join(blocks, "\n\n")
}

// ensureIndex lazily loads the persisted index; when loading fails it
// falls back to a full build so a cold-started process self-heals
// instead of serving empty context forever.
func (r *Retrieval) ensureIndex() (*index.Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ix != nil {
		return r.ix, nil
	}

	ix, err := index.Load(r.indexPath)
	if err == nil {
		r.ix = ix
		return ix, nil
	}

	r.logger.Info("index unavailable, attempting rebuild from source", "error", err)
	result, buildErr := r.builder.Build(r.sourceRoot, r.indexPath, nil)
	if buildErr != nil {
		return nil, fmt.Errorf("rebuild failed: %w", buildErr)
	}
	if !result.Succeeded() || result.Index == nil {
		return nil, fmt.Errorf("rebuild produced no usable index: %w", err)
	}

	r.ix = result.Index
	return r.ix, nil
}
