package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"ayurbot/internal/adapter/matcher"
	"ayurbot/internal/domain"
	"ayurbot/internal/port"
)

// RecommenderConfig holds the relevance-filter limits.
type RecommenderConfig struct {
	MaxResults     int // items returned to the caller
	PrefilterLimit int // items collected from the catalog before filtering
	MaxSearchTerms int // catalog searches per exchange
	MinEntityLen   int // shortest entity worth a catalog search
}

// Recommender turns one chat exchange into a short list of relevant
// catalog items. Extraction and filtering are pure; only the catalog
// search touches the network, and its failures degrade to an empty
// result rather than failing the chat response.
type Recommender struct {
	catalog port.CatalogSearcher
	vocab   domain.Vocabulary
	cfg     RecommenderConfig
	logger  *slog.Logger
}

func NewRecommender(catalog port.CatalogSearcher, vocab domain.Vocabulary, cfg RecommenderConfig, logger *slog.Logger) *Recommender {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 4
	}
	if cfg.PrefilterLimit <= 0 {
		cfg.PrefilterLimit = 20
	}
	if cfg.MaxSearchTerms <= 0 {
		cfg.MaxSearchTerms = 5
	}
	if cfg.MinEntityLen <= 0 {
		cfg.MinEntityLen = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		catalog: catalog,
		vocab:   vocab,
		cfg:     cfg,
		logger:  logger,
	}
}

// Extract detects intent tags in the user's message and herb mentions
// in the generated answer, then derives the catalog search entities.
func (r *Recommender) Extract(userMessage, answer string) domain.Extraction {
	ex := domain.Extraction{
		IntentTags:     matcher.IntentTags(userMessage, r.vocab.KnownTags()),
		PotentialHerbs: matcher.MentionedHerbs(answer, r.vocab.KnownHerbs()),
	}
	ex.SearchEntities = r.SearchEntities(ex.IntentTags, ex.PotentialHerbs)
	return ex
}

// SearchEntities selects the catalog search terms for an exchange.
//
// Strict mode (the user stated an intent): only herbs that the
// vocabulary indicates for that intent survive, plus the intent tags
// themselves. A hallucinated herb the answer mentions for an unrelated
// symptom must not reach the catalog.
//
// Relaxed mode (no detectable intent): every mentioned herb is fair
// game.
func (r *Recommender) SearchEntities(intentTags, potentialHerbs []string) []string {
	var entities []string
	if len(intentTags) > 0 {
		valid := r.vocab.HerbsFor(intentTags)
		for _, herb := range potentialHerbs {
			if _, ok := valid[strings.ToLower(herb)]; ok {
				entities = append(entities, herb)
			}
		}
		entities = append(entities, intentTags...)
	} else {
		entities = append(entities, potentialHerbs...)
	}

	kept := entities[:0]
	for _, e := range entities {
		if len(strings.TrimSpace(e)) < r.cfg.MinEntityLen {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// FilterItems applies the post-catalog relevance check. In strict mode
// an item survives when its tag field carries an exact intent tag or
// its title names a herb valid for the intent; catalog full-text search
// matches on descriptions too, which is far too loose to show a user.
// Relaxed mode keeps everything the search returned.
func (r *Recommender) FilterItems(items []domain.CatalogItem, intentTags []string) []domain.CatalogItem {
	if len(intentTags) == 0 {
		return items
	}

	intents := make(map[string]struct{}, len(intentTags))
	for _, t := range intentTags {
		intents[strings.ToLower(t)] = struct{}{}
	}
	validHerbs := r.vocab.HerbsFor(intentTags)

	var kept []domain.CatalogItem
	for _, item := range items {
		if r.itemRelevant(item, intents, validHerbs) {
			kept = append(kept, item)
		} else {
			r.logger.Debug("dropped irrelevant catalog item", "title", item.Title)
		}
	}
	return kept
}

func (r *Recommender) itemRelevant(item domain.CatalogItem, intents map[string]struct{}, validHerbs map[string]struct{}) bool {
	for _, tag := range strings.Split(strings.ToLower(item.Tags), ",") {
		if _, ok := intents[strings.TrimSpace(tag)]; ok {
			return true
		}
	}

	title := strings.ToLower(item.Title)
	for herb := range validHerbs {
		if strings.Contains(title, herb) {
			return true
		}
	}
	return false
}

// Recommend runs the full pipeline for one exchange: extract entities,
// search the catalog per entity, dedupe, filter, cap. A catalog outage
// yields an empty list, never an error to the chat caller.
func (r *Recommender) Recommend(userMessage, answer string) []domain.CatalogItem {
	ex := r.Extract(userMessage, answer)
	if len(ex.SearchEntities) == 0 {
		return nil
	}

	pool := r.searchCatalog(ex.SearchEntities)
	items := r.FilterItems(pool, ex.IntentTags)

	if len(items) > r.cfg.MaxResults {
		items = items[:r.cfg.MaxResults]
	}
	return items
}

// searchCatalog queries the catalog once per entity, deduplicating by
// title with first occurrence winning, up to the prefilter limit.
func (r *Recommender) searchCatalog(entities []string) []domain.CatalogItem {
	if len(entities) > r.cfg.MaxSearchTerms {
		entities = entities[:r.cfg.MaxSearchTerms]
	}

	seen := make(map[string]struct{})
	var pool []domain.CatalogItem
	for _, entity := range entities {
		items, err := r.catalog.Search(entity)
		if err != nil {
			r.logger.Warn("catalog search failed", "term", entity, "error", err)
			continue
		}
		for _, item := range items {
			if item.Title == "" {
				continue
			}
			if _, dup := seen[item.Title]; dup {
				continue
			}
			seen[item.Title] = struct{}{}
			pool = append(pool, item)
			if len(pool) >= r.cfg.PrefilterLimit {
				return pool
			}
		}
	}
	return pool
}

// SymptomAdvice is the per-symptom detail of a herb recommendation.
type SymptomAdvice struct {
	Symptom     string
	Description string
	Herbs       []string
}

// HerbRecommendation summarizes herbs indicated for a set of symptoms,
// together with matching catalog products.
type HerbRecommendation struct {
	Symptoms         []string
	RecommendedHerbs []string
	Details          []SymptomAdvice
	CatalogItems     []domain.CatalogItem
}

// RecommendForSymptoms maps explicitly stated symptoms to their herbs
// and looks the herbs up in the catalog. Unknown symptoms are ignored.
func (r *Recommender) RecommendForSymptoms(symptoms []string) HerbRecommendation {
	rec := HerbRecommendation{Symptoms: symptoms}

	seen := make(map[string]struct{})
	for _, symptom := range symptoms {
		entry, ok := r.vocab.Symptoms[domain.NormalizeTag(symptom)]
		if !ok {
			continue
		}
		rec.Details = append(rec.Details, SymptomAdvice{
			Symptom:     symptom,
			Description: entry.Description,
			Herbs:       entry.Herbs,
		})
		for _, herb := range entry.Herbs {
			if _, dup := seen[herb]; dup {
				continue
			}
			seen[herb] = struct{}{}
			rec.RecommendedHerbs = append(rec.RecommendedHerbs, herb)
		}
	}

	rec.CatalogItems = r.searchCatalog(rec.RecommendedHerbs)
	if len(rec.CatalogItems) > r.cfg.MaxResults {
		rec.CatalogItems = rec.CatalogItems[:r.cfg.MaxResults]
	}
	return rec
}

// FormatItemCard renders a catalog item as a chat display card.
func FormatItemCard(item domain.CatalogItem) string {
	return fmt.Sprintf("🌿 %s\n📝 %s\n💰 Price: ₹%.2f\n📦 Stock: %d available\n🆔 Item ID: %d",
		item.Name, item.Description, item.Price, item.Quantity, item.ID)
}
