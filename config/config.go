package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the knowledge core.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Splitter  SplitterConfig  `yaml:"splitter"`
	Builder   BuilderConfig   `yaml:"builder"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig describes the document source tree.
type SourceConfig struct {
	Root     string   `yaml:"root"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// SplitterConfig holds chunking configuration.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// BuilderConfig holds index build configuration.
type BuilderConfig struct {
	BatchSize          int    `yaml:"batch_size"`
	BatchDelaySeconds  int    `yaml:"batch_delay_seconds"`
	RateLimitWaitSecs  int    `yaml:"rate_limit_wait_seconds"`
	MaxRateLimitRetry  int    `yaml:"max_rate_limit_retries"` // 0 = retry forever
	Checkpoint         string `yaml:"checkpoint"`             // "file", "batch", or "run"
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "gemini", "openai", "mock"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK      int    `yaml:"top_k"`
	IndexPath string `yaml:"index_path"`
}

// CatalogConfig holds the catalog service collaborator settings.
type CatalogConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RecommendConfig holds entity extraction and relevance filter settings.
type RecommendConfig struct {
	VocabularyPath string `yaml:"vocabulary_path"`
	MaxResults     int    `yaml:"max_results"`
	PrefilterLimit int    `yaml:"prefilter_limit"`
	MaxSearchTerms int    `yaml:"max_search_terms"`
	MinEntityLen   int    `yaml:"min_entity_len"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Root:     "data/docs",
			Includes: []string{"**/*.pdf", "**/*.txt", "**/*.md"},
			Excludes: []string{"**/.*/**"},
		},
		Splitter: SplitterConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Builder: BuilderConfig{
			BatchSize:         10,
			BatchDelaySeconds: 10,
			RateLimitWaitSecs: 120,
			MaxRateLimitRetry: 0,
			Checkpoint:        "file",
		},
		Embedding: EmbeddingConfig{
			Provider:  "gemini",
			Model:     "text-embedding-004",
			APIKeyEnv: "GEMINI_API_KEY",
			Dimension: 768,
		},
		Retrieve: RetrieveConfig{
			TopK:      3,
			IndexPath: "data/vector_store.db",
		},
		Catalog: CatalogConfig{
			BaseURL:        "http://catalog-service:3002",
			TimeoutSeconds: 5,
		},
		Recommend: RecommendConfig{
			VocabularyPath: "data/symptom_herb_map.json",
			MaxResults:     4,
			PrefilterLimit: 20,
			MaxSearchTerms: 5,
			MinEntityLen:   3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// ayurbot.yaml, then .ayurbot/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ayurbot.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ayurbot", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
