package chunker

import (
	"unicode"
	"unicode/utf8"
)

// span marks one token's byte offsets within the text.
type span struct {
	start int
	end   int
}

// tokenize splits text into tokens: maximal runs of letters, digits and
// underscores, or single punctuation runes. Whitespace separates tokens and
// is never part of one. The scheme is fixed and deterministic so token
// counts are stable across runs and comparable against backend limits.
func tokenize(text string) []span {
	var spans []span
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			j := i + size
			for j < len(text) {
				r2, size2 := utf8.DecodeRuneInString(text[j:])
				if !isWordRune(r2) {
					break
				}
				j += size2
			}
			spans = append(spans, span{start: i, end: j})
			i = j
		default:
			spans = append(spans, span{start: i, end: i + size})
			i += size
		}
	}
	return spans
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// TokenCount returns the number of tokens in text under the chunker's
// tokenisation scheme. Used for Document.TokensLen: the count of the full
// body before chunking, independent of any overlap.
func TokenCount(text string) int {
	return len(tokenize(text))
}
