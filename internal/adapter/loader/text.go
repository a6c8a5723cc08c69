package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ayurbot/internal/domain"
)

// TextLoader reads plain-text documents (.txt, .md) as a single page.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func (l *TextLoader) Load(path string) ([]domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("document is empty: %s", path)
	}
	return []domain.Page{{Number: 0, Text: text}}, nil
}
