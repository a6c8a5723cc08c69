package port

import "ayurbot/internal/domain"

// CatalogSearcher queries the product catalog by keyword. The backing
// search is substring-based with no ranking contract, so callers must
// filter results for contextual relevance themselves.
type CatalogSearcher interface {
	Search(term string) ([]domain.CatalogItem, error)
}
