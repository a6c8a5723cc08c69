package splitter

// RecursiveSplitter splits text into overlapping fixed-size fragments,
// preferring to cut at the largest semantic boundary that fits:
// paragraph break, line break, sentence end, space, and finally
// mid-word when nothing larger fits within the chunk size.
type RecursiveSplitter struct {
	chunkSize int
	overlap   int
}

// separators in priority order. The empty string means a hard
// character-level cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &RecursiveSplitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Split fragments text into pieces of at most chunkSize runes, with
// consecutive pieces sharing overlap runes of context. Deterministic:
// the same input always yields the same fragments. Text shorter than
// the chunk size yields exactly one fragment.
func (s *RecursiveSplitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			pieces = append(pieces, string(runes[start:]))
			break
		}

		cut := s.findCut(runes, start, end)
		pieces = append(pieces, string(runes[start:cut]))

		next := cut - s.overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return pieces
}

// findCut returns the rune index to cut at, searching backwards from
// end for the highest-priority separator. Falls back to a hard cut at
// end when no separator lands inside the window.
func (s *RecursiveSplitter) findCut(runes []rune, start, end int) int {
	for _, sep := range separators {
		if sep == "" {
			return end
		}
		sepRunes := []rune(sep)
		if idx := lastIndex(runes, sepRunes, start+1, end); idx >= 0 {
			// Keep the separator with the leading piece so that
			// reassembly loses no characters.
			return idx + len(sepRunes)
		}
	}
	return end
}

// lastIndex finds the last occurrence of sep within runes[from:to)
// such that the separator ends at or before to. Returns -1 if absent.
func lastIndex(runes, sep []rune, from, to int) int {
	for i := to - len(sep); i >= from; i-- {
		match := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
