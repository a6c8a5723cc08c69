package usecase

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ayurbot/internal/adapter/index"
	"ayurbot/internal/adapter/splitter"
	"ayurbot/internal/domain"
	"ayurbot/internal/port"
)

// CheckpointMode controls how often the builder persists the index
// during a run. File-level is the default tradeoff: a restart repeats
// at most one file of embedding work.
type CheckpointMode string

const (
	CheckpointFile  CheckpointMode = "file"
	CheckpointBatch CheckpointMode = "batch"
	CheckpointRun   CheckpointMode = "run"
)

// BuilderConfig holds the build policy knobs.
type BuilderConfig struct {
	BatchSize     int            // chunks per embedding call
	BatchDelay    time.Duration  // throttle applied after each successful batch
	RateLimitWait time.Duration  // backoff when the provider reports a quota error
	MaxRetries    int            // rate-limit retries per batch; 0 = retry forever
	Checkpoint    CheckpointMode
}

// ProgressFunc reports build progress: files processed so far, total
// files, and the file currently being worked on.
type ProgressFunc func(processed, total int, currentFile string)

// Builder runs the document indexing pipeline: walk the source tree,
// split each file into chunks, embed in batches, append to the vector
// index, and checkpoint-persist so a crash repeats bounded work.
//
// At most one build may be in flight per persisted index path; callers
// serialize builds externally (startup hook or maintenance command).
type Builder struct {
	walker   port.FileWalker
	loaders  []port.DocumentLoader
	splitter *splitter.RecursiveSplitter
	embedder port.Embedder
	logger   *slog.Logger
	cfg      BuilderConfig

	// sleep is swappable so tests do not wait out real backoff.
	sleep func(time.Duration)
}

func NewBuilder(
	walker port.FileWalker,
	loaders []port.DocumentLoader,
	split *splitter.RecursiveSplitter,
	embedder port.Embedder,
	cfg BuilderConfig,
	logger *slog.Logger,
) *Builder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.RateLimitWait <= 0 {
		cfg.RateLimitWait = 120 * time.Second
	}
	if cfg.Checkpoint == "" {
		cfg.Checkpoint = CheckpointFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		walker:   walker,
		loaders:  loaders,
		splitter: split,
		embedder: embedder,
		logger:   logger,
		cfg:      cfg,
		sleep:    time.Sleep,
	}
}

// BuildResult summarizes one build run.
type BuildResult struct {
	FilesIndexed   int
	FilesSkipped   int
	FilesFailed    int
	ChunksEmbedded int
	Errors         []string
	Index          *index.Index
}

// Succeeded reports whether the run left a usable index behind: at
// least one file newly indexed, or every file already present from a
// previous checkpointed run.
func (r *BuildResult) Succeeded() bool {
	return r.FilesIndexed > 0 || r.FilesSkipped > 0
}

// Build indexes all recognized documents under sourceRoot into the
// index persisted at indexPath. Individual file failures are recorded
// and skipped; only a failed final persist is returned as an error.
func (b *Builder) Build(sourceRoot, indexPath string, progress ProgressFunc) (*BuildResult, error) {
	files, err := b.walker.Walk(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to walk document source: %w", err)
	}

	result := &BuildResult{}
	ix := b.resumeOrNew(indexPath)
	done := ix.CompletedSources()

	for i, path := range files {
		if progress != nil {
			progress(i, len(files), path)
		}

		sourceID := filepath.Base(path)
		if _, ok := done[sourceID]; ok {
			result.FilesSkipped++
			continue
		}

		embedded, err := b.indexFile(ix, path, sourceID, indexPath)
		if err != nil {
			b.logger.Warn("failed to index document, skipping", "file", path, "error", err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		result.FilesIndexed++
		result.ChunksEmbedded += embedded

		if b.cfg.Checkpoint == CheckpointFile {
			if err := ix.Persist(indexPath); err != nil {
				b.logger.Warn("checkpoint persist failed", "file", path, "error", err)
				result.Errors = append(result.Errors, fmt.Sprintf("checkpoint after %s: %v", path, err))
			}
		}
	}

	if progress != nil {
		progress(len(files), len(files), "")
	}

	if !result.Succeeded() {
		return result, nil
	}

	if err := ix.Persist(indexPath); err != nil {
		return result, fmt.Errorf("final index persist failed: %w", err)
	}
	result.Index = ix

	return result, nil
}

// resumeOrNew loads the checkpointed index when one is usable, so
// restarts skip files that were already fully embedded. Anything else
// (absent, corrupt, wrong dimension) starts a fresh index.
func (b *Builder) resumeOrNew(indexPath string) *index.Index {
	ix, err := index.Load(indexPath)
	if err != nil {
		return index.New(b.embedder.Dimension())
	}
	if ix.Dimension() != b.embedder.Dimension() {
		b.logger.Warn("existing index dimension does not match embedder, rebuilding",
			"index", ix.Dimension(), "embedder", b.embedder.Dimension())
		return index.New(b.embedder.Dimension())
	}
	if pruned := ix.PruneIncomplete(); pruned > 0 {
		b.logger.Warn("dropped chunks of sources that never finished embedding", "chunks", pruned)
	}
	if ix.Len() > 0 {
		b.logger.Info("resuming from checkpointed index", "chunks", ix.Len())
	}
	return ix
}

// indexFile loads, splits, embeds and appends a single document.
// Returns the number of chunks embedded.
func (b *Builder) indexFile(ix *index.Index, path, sourceID, indexPath string) (int, error) {
	loader := b.loaderFor(path)
	if loader == nil {
		return 0, fmt.Errorf("no loader for file type: %s", path)
	}

	pages, err := loader.Load(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load document: %w", err)
	}

	var chunks []domain.Chunk
	seq := 0
	for _, page := range pages {
		for _, piece := range b.splitter.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				Text:     piece,
				SourceID: sourceID,
				Page:     page.Number,
				Sequence: seq,
			})
			seq++
		}
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document produced no chunks: %s", path)
	}

	embedded := 0
	for start := 0; start < len(chunks); start += b.cfg.BatchSize {
		end := start + b.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := b.embedBatch(texts)
		if err != nil {
			return embedded, err
		}

		if err := ix.Add(batch, vectors); err != nil {
			return embedded, fmt.Errorf("failed to append batch: %w", err)
		}
		embedded += len(batch)

		if b.cfg.Checkpoint == CheckpointBatch {
			if err := ix.Persist(indexPath); err != nil {
				b.logger.Warn("batch checkpoint persist failed", "file", path, "error", err)
			}
		}

		// Steady-state throttle, applied even on success.
		if b.cfg.BatchDelay > 0 {
			b.sleep(b.cfg.BatchDelay)
		}
	}

	ix.MarkComplete(sourceID)
	return embedded, nil
}

// embedBatch embeds one batch, retrying quota errors with a long
// backoff. Embeddings must never be silently dropped, so by default
// the retry is unbounded; any other provider error abandons the file.
func (b *Builder) embedBatch(texts []string) ([][]float32, error) {
	attempts := 0
	for {
		vectors, err := b.embedder.Embed(texts)
		if err == nil {
			return vectors, nil
		}
		if !domain.IsRateLimited(err) {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}

		attempts++
		if b.cfg.MaxRetries > 0 && attempts >= b.cfg.MaxRetries {
			return nil, fmt.Errorf("rate limit retries exhausted after %d attempts: %w", attempts, err)
		}
		b.logger.Warn("embedding provider rate limited, backing off",
			"wait", b.cfg.RateLimitWait, "attempt", attempts)
		b.sleep(b.cfg.RateLimitWait)
	}
}

func (b *Builder) loaderFor(path string) port.DocumentLoader {
	for _, l := range b.loaders {
		if l.CanLoad(path) {
			return l
		}
	}
	return nil
}
