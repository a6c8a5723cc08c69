package matcher

import "strings"

// Entity matching is a pure function of (text, vocabulary): no hidden
// state, so false-positive behavior is unit-testable independent of the
// language model that produced the text.

// IntentTags returns the known symptom tags whose lowercase form occurs
// as a substring of the user's own utterance. The generated answer must
// never be scanned here: the bot's phrasing would inflate intent
// signals.
func IntentTags(userText string, knownTags []string) []string {
	return scan(userText, knownTags)
}

// MentionedHerbs returns the known herbs mentioned in the generated
// answer. Herbs are recommended by the answer, not necessarily asked
// for by the user, so only the answer is scanned.
func MentionedHerbs(answerText string, knownHerbs []string) []string {
	return scan(answerText, knownHerbs)
}

// scan performs a case-insensitive whole-vocabulary substring scan.
// No stemming or fuzzing; the vocabulary order is preserved.
func scan(text string, vocabulary []string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var found []string
	for _, term := range vocabulary {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
