package port

import "ayurbot/internal/domain"

// DocumentLoader extracts page text from a document file.
type DocumentLoader interface {
	// CanLoad reports whether this loader handles the given path.
	CanLoad(path string) bool

	// Load extracts the document's pages in order.
	Load(path string) ([]domain.Page, error)
}

// FileWalker enumerates document files under a source root.
type FileWalker interface {
	Walk(root string) ([]string, error)
}
