package domain

// Chunk is a fragment of a source document with its provenance.
// Immutable once created.
type Chunk struct {
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Page     int    `json:"page"`
	Sequence int    `json:"sequence"`
}

// Page is one unit of extracted document text. Plain-text formats
// produce a single page numbered 0.
type Page struct {
	Number int
	Text   string
}

// ScoredChunk is a retrieval result.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// CatalogItem is a product record returned by the catalog service.
// Read-only to this core; field names follow the catalog wire format.
type CatalogItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"item_title"`
	Name        string  `json:"item_name"`
	Description string  `json:"description"`
	Tags        string  `json:"item_tags"`
	Price       float64 `json:"item_price"`
	Quantity    int     `json:"item_quantity"`
}

// Extraction holds the entities detected in one chat exchange.
// Derived per request, never persisted.
type Extraction struct {
	IntentTags     []string
	PotentialHerbs []string
	SearchEntities []string
}
