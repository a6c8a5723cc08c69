package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the vector index from the document source",
	Long: `Index the documents under the configured source root (or the given path)
into the persisted vector store. An existing index is resumed: documents
that already finished embedding are skipped.

Examples:
  ayurbot index                  # Index the configured source root
  ayurbot index /path/to/docs    # Index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sourceRoot := resolvePath(cfg.Source.Root)
	if len(args) > 0 {
		var err error
		sourceRoot, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(sourceRoot)
	if err != nil {
		return fmt.Errorf("source path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", sourceRoot)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	builder := newBuilder(cfg, embedder)
	indexPath := resolvePath(cfg.Retrieve.IndexPath)

	fmt.Printf("Indexing %s with %s...\n", sourceRoot, embedder.ModelName())

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var initialized bool

	progress := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(processed)
		if currentFile != "" {
			bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] %s", filepath.Base(currentFile)))
		}
	}

	result, err := builder.Build(sourceRoot, indexPath, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files indexed:  %d\n", result.FilesIndexed)
	fmt.Printf("  Files skipped:  %d (already indexed)\n", result.FilesSkipped)
	fmt.Printf("  Files failed:   %d\n", result.FilesFailed)
	fmt.Printf("  Chunks embedded: %d\n", result.ChunksEmbedded)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if !result.Succeeded() {
		return fmt.Errorf("no documents were indexed under %s", sourceRoot)
	}

	fmt.Printf("\nIndex stored at: %s\n", indexPath)
	return nil
}
