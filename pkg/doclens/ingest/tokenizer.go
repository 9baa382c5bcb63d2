package ingest

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase word tokens. Letters, digits and
// inner hyphens are kept; everything else is a separator. Used by the
// lexical extractors so that "Growth," and "growth" match the same
// lexicon entry.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "-")
		if word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
