package vocab

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"ayurbot/internal/domain"
)

// Load reads a symptom→herb vocabulary from a JSON file of the form
//
//	{"digestion": {"herbs": ["Triphala"], "description": "..."}}
//
// Malformed entries (empty tag, no herbs) are skipped with a warning
// rather than failing the load; a vocabulary with zero valid entries is
// an error.
func Load(path string, logger *slog.Logger) (domain.Vocabulary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("failed to read vocabulary: %w", err)
	}

	var raw map[string]domain.VocabEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	valid := make(map[string]domain.VocabEntry, len(raw))
	for tag, entry := range raw {
		if domain.NormalizeTag(tag) == "" {
			logger.Warn("skipping vocabulary entry with empty tag")
			continue
		}
		if len(entry.Herbs) == 0 {
			logger.Warn("skipping vocabulary entry with no herbs", "tag", tag)
			continue
		}
		valid[tag] = entry
	}

	if len(valid) == 0 {
		return domain.Vocabulary{}, fmt.Errorf("vocabulary contains no valid entries: %s", path)
	}

	return domain.NewVocabulary(valid), nil
}
