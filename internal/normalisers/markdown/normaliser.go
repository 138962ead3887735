// Package markdown provides a Normaliser for Markdown documents.
// Formatting is stripped; headings and paragraphs become separate elements.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
	"github.com/custodia-labs/sitesearch/internal/normalisers/plaintext"
)

// Element kinds produced by the normaliser.
const (
	KindHeading   = "heading"
	KindParagraph = "paragraph"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips Markdown syntax and returns headings and paragraphs.
func (n *Normaliser) Normalise(_ context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}

	var (
		elements []domain.Element
		title    string
	)
	for _, block := range plaintext.Paragraphs(fencedCode.ReplaceAllString(string(blob.Data), "")) {
		for _, el := range splitHeadings(block) {
			if el.Kind == KindHeading && title == "" {
				title = el.Text
			}
			elements = append(elements, el)
		}
	}
	if title == "" {
		title = html.TitleFromReference(blob.Reference)
	}

	return &driven.NormaliseResult{Title: title, Elements: elements}, nil
}

// Pre-compiled patterns for Markdown syntax.
var (
	fencedCode     = regexp.MustCompile("(?s)```.*?```")
	headingLine    = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*?)\s*#*\s*$`)
	inlineCode     = regexp.MustCompile("`([^`]+)`")
	images         = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links          = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	emphasis       = regexp.MustCompile(`(\*\*|__|\*|_)(\S(?:.*?\S)?)(\*\*|__|\*|_)`)
	blockquote     = regexp.MustCompile(`^\s*>\s?`)
	listMarker     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	horizontalRule = regexp.MustCompile(`^\s*(?:[-*_]\s*){3,}$`)
)

// splitHeadings turns a block into elements: each ATX heading line stands
// alone, consecutive other lines form one paragraph.
func splitHeadings(block string) []domain.Element {
	var (
		out  []domain.Element
		para []string
	)
	flush := func() {
		if len(para) > 0 {
			out = append(out, domain.Element{Kind: KindParagraph, Text: strings.Join(para, "\n")})
			para = nil
		}
	}
	for _, line := range strings.Split(block, "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			if text := stripInline(m[1]); text != "" {
				out = append(out, domain.Element{Kind: KindHeading, Text: text})
			}
			continue
		}
		if horizontalRule.MatchString(line) {
			continue
		}
		line = blockquote.ReplaceAllString(line, "")
		line = listMarker.ReplaceAllString(line, "")
		if text := stripInline(line); text != "" {
			para = append(para, text)
		}
	}
	flush()
	return out
}

// stripInline removes inline formatting, keeping the visible text.
func stripInline(s string) string {
	s = images.ReplaceAllString(s, "$1")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "$2")
	return strings.TrimSpace(s)
}
