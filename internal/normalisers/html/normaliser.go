package html

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Element kinds produced by the normaliser.
const (
	KindHeading   = "heading"
	KindParagraph = "paragraph"
	KindList      = "list"
	KindTable     = "table"
	KindQuote     = "quote"
	KindCode      = "code"
)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise splits an HTML document into block elements.
// Documents without block markup yield a single paragraph of all their text.
func (n *Normaliser) Normalise(_ context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := html.Parse(strings.NewReader(string(blob.Data)))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %v", domain.ErrParse, err)
	}

	var elements []domain.Element
	collectBlocks(doc, &elements)
	if len(elements) == 0 {
		if text := nodeText(doc); text != "" {
			elements = append(elements, domain.Element{Kind: KindParagraph, Text: text})
		}
	}

	return &driven.NormaliseResult{
		Title:    documentTitle(doc, blob.Reference),
		Elements: elements,
	}, nil
}

// PlainText returns the visible text of an HTML fragment: every text node
// trimmed, whitespace collapsed and joined with single spaces.
// Scripts, styles and similar non-content elements are dropped.
func PlainText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}
	return nodeText(doc)
}

// skipped reports whether an element never contributes visible text.
func skipped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Iframe:
		return true
	}
	return false
}

// nodeText collects the text of a subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipped(n) {
			return
		}
		if n.Type == html.TextNode {
			for _, word := range strings.Fields(n.Data) {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collectBlocks walks the tree and emits one element per content block.
// Blocks are not nested: once a block is emitted its subtree is consumed.
func collectBlocks(n *html.Node, out *[]domain.Element) {
	if skipped(n) {
		return
	}
	if n.Type == html.ElementNode {
		if n.DataAtom == atom.Head {
			return
		}
		if kind := blockKind(n.DataAtom); kind != "" {
			if text := nodeText(n); text != "" {
				*out = append(*out, domain.Element{Kind: kind, Text: text})
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

func blockKind(a atom.Atom) string {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return KindHeading
	case atom.P, atom.Dd, atom.Dt, atom.Figcaption:
		return KindParagraph
	case atom.Ul, atom.Ol, atom.Dl:
		return KindList
	case atom.Table:
		return KindTable
	case atom.Blockquote:
		return KindQuote
	case atom.Pre:
		return KindCode
	}
	return ""
}

// documentTitle returns the <title> text, falling back to the file name of
// the reference.
func documentTitle(doc *html.Node, reference string) string {
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			return nodeText(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	if title := find(doc); title != "" {
		return title
	}
	return TitleFromReference(reference)
}

// TitleFromReference derives a human-readable title from a stored link.
func TitleFromReference(reference string) string {
	name := path.Base(reference)
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
