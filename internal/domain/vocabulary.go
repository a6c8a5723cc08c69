package domain

import (
	"sort"
	"strings"
)

// VocabEntry describes one symptom tag: the herbs indicated for it and
// a short human-readable description.
type VocabEntry struct {
	Herbs       []string `json:"herbs"`
	Description string   `json:"description"`
}

// Vocabulary is the symptom-tag to herb mapping. It is constructed once
// and treated as read-only; pass it by value into matchers and filters
// so tests can supply fixtures without shared state.
type Vocabulary struct {
	Symptoms map[string]VocabEntry
}

// NewVocabulary builds a vocabulary from a symptom map. Tags are
// normalized to lower-snake-case.
func NewVocabulary(symptoms map[string]VocabEntry) Vocabulary {
	normalized := make(map[string]VocabEntry, len(symptoms))
	for tag, entry := range symptoms {
		normalized[NormalizeTag(tag)] = entry
	}
	return Vocabulary{Symptoms: normalized}
}

// NormalizeTag converts a free-form symptom name to its vocabulary key.
func NormalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), " ", "_")
}

// KnownTags returns all symptom tags, sorted for deterministic scans.
func (v Vocabulary) KnownTags() []string {
	tags := make([]string, 0, len(v.Symptoms))
	for tag := range v.Symptoms {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// KnownHerbs returns the union of all herbs across every entry,
// deduplicated and sorted.
func (v Vocabulary) KnownHerbs() []string {
	seen := make(map[string]struct{})
	var herbs []string
	for _, entry := range v.Symptoms {
		for _, h := range entry.Herbs {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			herbs = append(herbs, h)
		}
	}
	sort.Strings(herbs)
	return herbs
}

// HerbsFor returns the lowercase set of herbs valid for the given
// intent tags.
func (v Vocabulary) HerbsFor(tags []string) map[string]struct{} {
	valid := make(map[string]struct{})
	for _, tag := range tags {
		entry, ok := v.Symptoms[NormalizeTag(tag)]
		if !ok {
			continue
		}
		for _, h := range entry.Herbs {
			valid[strings.ToLower(h)] = struct{}{}
		}
	}
	return valid
}
