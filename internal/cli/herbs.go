package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ayurbot/internal/usecase"
)

var herbsCmd = &cobra.Command{
	Use:   "herbs <symptom> [symptom...]",
	Short: "Recommend herbs for a set of symptoms",
	Long: `Map symptoms to their indicated herbs and look the herbs up in the
product catalog.

Examples:
  ayurbot herbs stress
  ayurbot herbs digestion "joint pain"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHerbs,
}

func init() {
	rootCmd.AddCommand(herbsCmd)
}

func runHerbs(cmd *cobra.Command, args []string) error {
	recommender, err := newRecommender(GetConfig())
	if err != nil {
		return err
	}

	rec := recommender.RecommendForSymptoms(args)
	if len(rec.Details) == 0 {
		fmt.Printf("No known symptoms among: %s\n", strings.Join(args, ", "))
		return nil
	}

	for _, detail := range rec.Details {
		fmt.Printf("%s: %s\n", detail.Symptom, detail.Description)
		fmt.Printf("  Herbs: %s\n", strings.Join(detail.Herbs, ", "))
	}

	if len(rec.CatalogItems) == 0 {
		fmt.Println("\nNo matching products in the catalog.")
		return nil
	}

	fmt.Printf("\nMatching products:\n")
	for _, item := range rec.CatalogItems {
		fmt.Println(usecase.FormatItemCard(item))
	}
	return nil
}
