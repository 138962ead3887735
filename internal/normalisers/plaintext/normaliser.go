// Package plaintext provides the fallback Normaliser for text files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
)

// KindParagraph is the element kind of a block of text.
const KindParagraph = "paragraph"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"text/rtf",
		"text/xml",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise splits a text document into paragraphs separated by blank lines.
// Content that is not valid UTF-8 fails with domain.ErrParse.
func (n *Normaliser) Normalise(_ context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(blob.Data) {
		return nil, domain.ErrParse
	}

	paras := Paragraphs(string(blob.Data))
	elements := make([]domain.Element, 0, len(paras))
	for _, p := range paras {
		elements = append(elements, domain.Element{Kind: KindParagraph, Text: p})
	}

	return &driven.NormaliseResult{
		Title:    html.TitleFromReference(blob.Reference),
		Elements: elements,
	}, nil
}

// Paragraphs splits text on blank lines. Lines are right-trimmed, line
// endings normalised and a leading byte order mark dropped.
func Paragraphs(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		paras   []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			paras = append(paras, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paras
}
