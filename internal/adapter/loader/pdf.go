package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"

	"ayurbot/internal/domain"
)

// PDFLoader extracts plain text from PDF documents, one page per
// domain.Page. Pages that fail text extraction are skipped rather than
// failing the whole document.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func (l *PDFLoader) Load(path string) ([]domain.Page, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []domain.Page
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf contains no extractable text: %s", path)
	}
	return pages, nil
}
