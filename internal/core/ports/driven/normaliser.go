package driven

import (
	"context"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// Normaliser extracts text elements from a downloaded document.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise splits a document into text elements.
	Normalise(ctx context.Context, blob *domain.Blob) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Title is the document title when the format carries one.
	Title string

	// Elements are the document's text blocks in reading order.
	Elements []domain.Element
}

// DocumentExtractor turns a downloaded document into plain text.
type DocumentExtractor interface {
	// ExtractDocument returns the document's text elements joined with
	// newlines. Fails with domain.ErrUnsupportedType or domain.ErrParse.
	ExtractDocument(ctx context.Context, blob *domain.Blob) (string, error)
}

// BodyExtractor turns a stored page body into plain text.
type BodyExtractor interface {
	// ExtractBody returns the body's text. The boolean is false when the
	// body holds no text. Fails with domain.ErrParse on a malformed body.
	ExtractBody(body string) (string, bool, error)
}

// ListSerialiser renders a list as text.
type ListSerialiser interface {
	// Serialise returns one bulleted line per non-empty row.
	// The boolean is false when the list has no non-empty rows.
	Serialise(list domain.ListRow) (string, bool)
}
