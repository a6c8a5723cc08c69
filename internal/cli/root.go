package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ayurbot/config"
	"ayurbot/internal/adapter/embedding"
	"ayurbot/internal/adapter/loader"
	"ayurbot/internal/adapter/splitter"
	"ayurbot/internal/port"
	"ayurbot/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "ayurbot",
	Short: "Ayurvedic knowledge core - document indexing, retrieval and product matching",
	Long: `ayurbot maintains a vector index over an Ayurvedic document library and
matches chat exchanges against the product catalog.

Example usage:
  ayurbot index                          # Build the vector index from the document source
  ayurbot query -q "herbs for digestion" # Search the indexed knowledge base
  ayurbot herbs stress digestion         # Herb recommendations for symptoms`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ayurbot.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// resolvePath anchors relative config paths at the root directory.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetRootDir(), path)
}

// newEmbedder creates the embedding provider selected in config.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newBuilder wires the full indexing pipeline from config.
func newBuilder(cfg *config.Config, embedder port.Embedder) *usecase.Builder {
	return usecase.NewBuilder(
		loader.NewWalker(cfg.Source.Includes, cfg.Source.Excludes),
		[]port.DocumentLoader{loader.NewPDFLoader(), loader.NewTextLoader()},
		splitter.NewRecursiveSplitter(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap),
		embedder,
		usecase.BuilderConfig{
			BatchSize:     cfg.Builder.BatchSize,
			BatchDelay:    time.Duration(cfg.Builder.BatchDelaySeconds) * time.Second,
			RateLimitWait: time.Duration(cfg.Builder.RateLimitWaitSecs) * time.Second,
			MaxRetries:    cfg.Builder.MaxRateLimitRetry,
			Checkpoint:    usecase.CheckpointMode(cfg.Builder.Checkpoint),
		},
		slog.Default(),
	)
}
