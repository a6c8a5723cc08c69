package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ayurbot/internal/adapter/index"
	"ayurbot/internal/usecase"
)

var (
	queryText    string
	queryTopK    int
	queryContext bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the indexed knowledge base",
	Long: `Search the vector index for passages relevant to a question.

Examples:
  ayurbot query -q "herbs for digestion"
  ayurbot query -q "abhyanga routine" --top-k 5
  ayurbot query -q "kapha diet" --context   # print the prompt-ready context block`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryContext, "context", false, "print the formatted context block instead of scored results")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	indexPath := resolvePath(cfg.Retrieve.IndexPath)
	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	if queryContext {
		retrieval := usecase.NewRetrieval(
			embedder,
			newBuilder(cfg, embedder),
			indexPath,
			resolvePath(cfg.Source.Root),
			cfg.Retrieve.TopK,
			nil,
		)
		ctx := retrieval.GetContext(queryText, topK)
		if ctx == "" {
			fmt.Println("No context available.")
			return nil
		}
		fmt.Println(ctx)
		return nil
	}

	ix, err := index.Load(indexPath)
	if err != nil {
		return fmt.Errorf("no usable index at %s (run 'ayurbot index' first): %w", indexPath, err)
	}

	vectors, err := embedder.Embed([]string{queryText})
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := ix.Search(vectors[0], topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s p.%d (score: %.3f) ---\n", i+1, r.Chunk.SourceID, r.Chunk.Page, r.Score)
		text := r.Chunk.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
