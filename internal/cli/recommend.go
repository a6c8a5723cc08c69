package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ayurbot/config"
	"ayurbot/internal/adapter/catalog"
	"ayurbot/internal/adapter/vocab"
	"ayurbot/internal/usecase"
)

var (
	recommendMessage string
	recommendAnswer  string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Match a chat exchange against the product catalog",
	Long: `Extract the user's intent and the herbs named in the bot's answer, then
search the catalog and print the items that survive the relevance filter.

Examples:
  ayurbot recommend -m "How to improve digestion?" -a "You should try Triphala."`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recommendMessage, "message", "m", "", "user message (required)")
	recommendCmd.Flags().StringVarP(&recommendAnswer, "answer", "a", "", "generated answer (required)")
	recommendCmd.MarkFlagRequired("message")
	recommendCmd.MarkFlagRequired("answer")
}

func newRecommender(cfg *config.Config) (*usecase.Recommender, error) {
	vocabulary, err := vocab.Load(resolvePath(cfg.Recommend.VocabularyPath), slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	client := catalog.NewClient(cfg.Catalog.BaseURL, time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second)

	return usecase.NewRecommender(client, vocabulary, usecase.RecommenderConfig{
		MaxResults:     cfg.Recommend.MaxResults,
		PrefilterLimit: cfg.Recommend.PrefilterLimit,
		MaxSearchTerms: cfg.Recommend.MaxSearchTerms,
		MinEntityLen:   cfg.Recommend.MinEntityLen,
	}, slog.Default()), nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	recommender, err := newRecommender(GetConfig())
	if err != nil {
		return err
	}

	ex := recommender.Extract(recommendMessage, recommendAnswer)
	fmt.Printf("Intent tags:     %s\n", joinOrNone(ex.IntentTags))
	fmt.Printf("Potential herbs: %s\n", joinOrNone(ex.PotentialHerbs))
	fmt.Printf("Search entities: %s\n\n", joinOrNone(ex.SearchEntities))

	items := recommender.Recommend(recommendMessage, recommendAnswer)
	if len(items) == 0 {
		fmt.Println("No relevant products found.")
		return nil
	}

	fmt.Printf("Found %d relevant products:\n", len(items))
	for _, item := range items {
		fmt.Println(usecase.FormatItemCard(item))
	}
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
