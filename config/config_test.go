package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Splitter.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Splitter.ChunkSize)
	}
	if cfg.Splitter.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Splitter.ChunkOverlap)
	}
	if cfg.Builder.BatchSize != 10 {
		t.Errorf("expected BatchSize=10, got %d", cfg.Builder.BatchSize)
	}
	if cfg.Builder.RateLimitWaitSecs != 120 {
		t.Errorf("expected RateLimitWaitSecs=120, got %d", cfg.Builder.RateLimitWaitSecs)
	}
	if cfg.Builder.MaxRateLimitRetry != 0 {
		t.Errorf("expected unbounded retries by default, got %d", cfg.Builder.MaxRateLimitRetry)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Recommend.MaxResults != 4 {
		t.Errorf("expected MaxResults=4, got %d", cfg.Recommend.MaxResults)
	}
	if cfg.Embedding.Provider != "gemini" {
		t.Errorf("expected provider=gemini, got %s", cfg.Embedding.Provider)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ayurbot.yaml")

	content := `
splitter:
  chunk_size: 500
builder:
  checkpoint: batch
retrieve:
  top_k: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Splitter.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Splitter.ChunkSize)
	}
	if cfg.Builder.Checkpoint != "batch" {
		t.Errorf("expected Checkpoint=batch, got %s", cfg.Builder.Checkpoint)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieve.TopK)
	}
	// Untouched sections keep their defaults.
	if cfg.Splitter.ChunkOverlap != 200 {
		t.Errorf("expected default ChunkOverlap=200, got %d", cfg.Splitter.ChunkOverlap)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ayurbot.yaml")

	content := `
catalog:
  base_url: http://localhost:3002
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.BaseURL != "http://localhost:3002" {
		t.Errorf("expected overridden base url, got %s", cfg.Catalog.BaseURL)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected defaults, got TopK=%d", cfg.Retrieve.TopK)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ayurbot.yaml")

	cfg := DefaultConfig()
	cfg.Source.Root = "library"
	cfg.Builder.BatchDelaySeconds = 2

	if err := cfg.Save(configPath); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Source.Root != "library" {
		t.Errorf("expected Root=library, got %s", loaded.Source.Root)
	}
	if loaded.Builder.BatchDelaySeconds != 2 {
		t.Errorf("expected BatchDelaySeconds=2, got %d", loaded.Builder.BatchDelaySeconds)
	}
}
