package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ayurbot/internal/adapter/index"
	"ayurbot/internal/adapter/loader"
	"ayurbot/internal/adapter/splitter"
	"ayurbot/internal/port"
)

// fakeEmbedder is a deterministic in-memory embedding provider. It can
// be primed to fail with a quota error a fixed number of times, and it
// rejects any text containing "POISON" with a permanent error.
type fakeEmbedder struct {
	dim      int
	failures int
	calls    int
	embedded []string
}

func (f *fakeEmbedder) Embed(texts []string) ([][]float32, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("googleapi: Error 429: quota exceeded for embed-content requests")
	}
	for _, t := range texts {
		if strings.Contains(t, "POISON") {
			return nil, errors.New("provider rejected input")
		}
	}

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, f.dim)
		for j := range v {
			v[j] = float32(len(t)+j) / 100
		}
		vectors[i] = v
		f.embedded = append(f.embedded, t)
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int    { return f.dim }
func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestBuilder(emb port.Embedder, cfg BuilderConfig) *Builder {
	b := NewBuilder(
		loader.NewWalker([]string{"**/*.txt"}, nil),
		[]port.DocumentLoader{loader.NewTextLoader()},
		splitter.NewRecursiveSplitter(1000, 200),
		emb,
		cfg,
		nil,
	)
	b.sleep = func(time.Duration) {}
	return b
}

func TestBuildIndexesAllDocuments(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "vata.txt", "Vata governs movement and the nervous system.")
	writeDoc(t, src, "pitta.txt", "Pitta governs digestion and metabolism.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	emb := &fakeEmbedder{dim: 4}
	result, err := newTestBuilder(emb, BuilderConfig{}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIndexed != 2 {
		t.Errorf("FilesIndexed = %d, want 2", result.FilesIndexed)
	}
	if result.ChunksEmbedded != 2 {
		t.Errorf("ChunksEmbedded = %d, want 2", result.ChunksEmbedded)
	}
	if !result.Succeeded() {
		t.Error("expected build to succeed")
	}

	ix, err := index.Load(indexPath)
	if err != nil {
		t.Fatalf("persisted index should load: %v", err)
	}
	if ix.Len() != 2 {
		t.Errorf("persisted index has %d chunks, want 2", ix.Len())
	}
	done := ix.CompletedSources()
	for _, id := range []string{"vata.txt", "pitta.txt"} {
		if _, ok := done[id]; !ok {
			t.Errorf("source %q not marked complete", id)
		}
	}
}

func TestBuildRetriesQuotaErrorsUntilSuccess(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "kapha.txt", "Kapha governs structure and lubrication.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	emb := &fakeEmbedder{dim: 4, failures: 2}
	b := newTestBuilder(emb, BuilderConfig{RateLimitWait: 5 * time.Second})

	var waits []time.Duration
	b.sleep = func(d time.Duration) { waits = append(waits, d) }

	result, err := b.Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIndexed != 1 || result.FilesFailed != 0 {
		t.Errorf("FilesIndexed = %d, FilesFailed = %d, want 1 and 0",
			result.FilesIndexed, result.FilesFailed)
	}
	// Two failed attempts, then success. Each chunk embedded exactly once.
	if emb.calls != 3 {
		t.Errorf("embedder called %d times, want 3", emb.calls)
	}
	if len(emb.embedded) != 1 {
		t.Errorf("embedded %d texts, want 1 (no duplicates)", len(emb.embedded))
	}

	backoffs := 0
	for _, d := range waits {
		if d == 5*time.Second {
			backoffs++
		}
	}
	if backoffs != 2 {
		t.Errorf("observed %d backoff waits, want 2", backoffs)
	}
}

func TestBuildRateLimitRetriesExhausted(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "doc.txt", "Some content that will never embed.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	emb := &fakeEmbedder{dim: 4, failures: 100}
	result, err := newTestBuilder(emb, BuilderConfig{MaxRetries: 3}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", result.FilesFailed)
	}
	if result.Succeeded() {
		t.Error("expected build without indexed files to report failure")
	}
	if emb.calls != 3 {
		t.Errorf("embedder called %d times, want 3 (MaxRetries)", emb.calls)
	}
}

func TestBuildSkipsFailedFileAndContinues(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "bad.txt", "POISON this one fails permanently.")
	writeDoc(t, src, "good.txt", "This one embeds fine.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	result, err := newTestBuilder(&fakeEmbedder{dim: 4}, BuilderConfig{}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIndexed != 1 {
		t.Errorf("FilesIndexed = %d, want 1", result.FilesIndexed)
	}
	if result.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", result.FilesFailed)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "bad.txt") {
		t.Errorf("Errors = %v, want one entry naming bad.txt", result.Errors)
	}
	if !result.Succeeded() {
		t.Error("a partially successful build still counts as succeeded")
	}
}

func TestBuildNoFiles(t *testing.T) {
	src := t.TempDir()
	indexPath := filepath.Join(t.TempDir(), "store.db")

	result, err := newTestBuilder(&fakeEmbedder{dim: 4}, BuilderConfig{}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.Succeeded() {
		t.Error("empty source tree must not report success")
	}
	if _, err := os.Stat(indexPath); !os.IsNotExist(err) {
		t.Error("no index file should be written for an empty build")
	}
}

func TestBuildResumeSkipsCompletedSources(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "one.txt", "First document body.")
	writeDoc(t, src, "two.txt", "Second document body.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	first := &fakeEmbedder{dim: 4}
	if _, err := newTestBuilder(first, BuilderConfig{}).Build(src, indexPath, nil); err != nil {
		t.Fatal(err)
	}

	// A new document arrives between runs; only it should be embedded.
	writeDoc(t, src, "three.txt", "Third document body.")

	second := &fakeEmbedder{dim: 4}
	result, err := newTestBuilder(second, BuilderConfig{}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", result.FilesSkipped)
	}
	if result.FilesIndexed != 1 {
		t.Errorf("FilesIndexed = %d, want 1", result.FilesIndexed)
	}
	if len(second.embedded) != 1 || !strings.Contains(second.embedded[0], "Third") {
		t.Errorf("second run embedded %v, want only the new document", second.embedded)
	}

	ix, err := index.Load(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 3 {
		t.Errorf("index has %d chunks after resume, want 3", ix.Len())
	}
}

func TestBuildDimensionMismatchRebuilds(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "doc.txt", "Document body.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	if _, err := newTestBuilder(&fakeEmbedder{dim: 4}, BuilderConfig{}).Build(src, indexPath, nil); err != nil {
		t.Fatal(err)
	}

	// Same corpus, new embedder dimension: old checkpoint is unusable.
	wider := &fakeEmbedder{dim: 8}
	result, err := newTestBuilder(wider, BuilderConfig{}).Build(src, indexPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIndexed != 1 || result.FilesSkipped != 0 {
		t.Errorf("FilesIndexed = %d, FilesSkipped = %d, want full rebuild",
			result.FilesIndexed, result.FilesSkipped)
	}

	ix, err := index.Load(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if ix.Dimension() != 8 {
		t.Errorf("reloaded dimension = %d, want 8", ix.Dimension())
	}
}

func TestBuildBatchDelayApplied(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "doc.txt", "Document body.")
	indexPath := filepath.Join(t.TempDir(), "store.db")

	b := newTestBuilder(&fakeEmbedder{dim: 4}, BuilderConfig{BatchDelay: 10 * time.Second})

	var waits []time.Duration
	b.sleep = func(d time.Duration) { waits = append(waits, d) }

	if _, err := b.Build(src, indexPath, nil); err != nil {
		t.Fatal(err)
	}

	if len(waits) != 1 || waits[0] != 10*time.Second {
		t.Errorf("waits = %v, want one 10s throttle after the only batch", waits)
	}
}
