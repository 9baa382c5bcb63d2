package ingest

import (
	"fmt"
	"strings"

	"github.com/cognicore/doclens/pkg/doclens/internalerr"
)

// DefaultMaxBytes caps the size of a single ingested document.
const DefaultMaxBytes = 4 << 20

// DefaultLanguage is assumed when the caller declares no language.
const DefaultLanguage = "en"

// Document is the normalized, immutable representation of an ingested
// text. Word and byte counts are computed once here and never
// recomputed downstream.
type Document struct {
	Text      string
	Language  string
	ByteLen   int
	WordCount int
}

// Ingest normalizes raw text into a Document using DefaultMaxBytes.
func Ingest(rawText, language string) (Document, error) {
	return IngestWithLimit(rawText, language, DefaultMaxBytes)
}

// IngestWithLimit normalizes raw text into a Document, rejecting empty
// input and input larger than maxBytes.
func IngestWithLimit(rawText, language string, maxBytes int) (Document, error) {
	if strings.TrimSpace(rawText) == "" {
		return Document{}, fmt.Errorf("ingest: empty document: %w", internalerr.ErrInvalidInput)
	}
	if maxBytes > 0 && len(rawText) > maxBytes {
		return Document{}, fmt.Errorf("ingest: document is %d bytes, limit %d: %w",
			len(rawText), maxBytes, internalerr.ErrInvalidInput)
	}
	if language == "" {
		language = DefaultLanguage
	}

	return Document{
		Text:      rawText,
		Language:  language,
		ByteLen:   len(rawText),
		WordCount: len(strings.Fields(rawText)),
	}, nil
}
