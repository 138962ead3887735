// Package docx provides a Normaliser for WordprocessingML (.docx) files.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
)

// Element kinds produced by the normaliser.
const (
	KindParagraph = "paragraph"
	KindHeading   = "heading"
	KindTableCell = "table_cell"
)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns one element per non-empty paragraph of the main
// document part, in reading order.
func (n *Normaliser) Normalise(_ context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(blob.Data), int64(len(blob.Data)))
	if err != nil {
		return nil, fmt.Errorf("%w: docx archive: %v", domain.ErrParse, err)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", domain.ErrParse, err)
	}
	elements, err := paragraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", domain.ErrParse, err)
	}

	return &driven.NormaliseResult{
		Title:    documentTitle(reader, blob.Reference),
		Elements: elements,
	}, nil
}

var errMissingPart = errors.New("missing part")

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w %s", errMissingPart, name)
}

// paragraphs streams the document XML and collects the text of every
// w:p element. Tabs and breaks become spaces.
func paragraphs(data []byte) ([]domain.Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		elements []domain.Element
		text     strings.Builder
		kind     string
		inText   bool
		depth    int // w:tbl nesting
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
			case "p":
				text.Reset()
				kind = KindParagraph
				if depth > 0 {
					kind = KindTableCell
				}
			case "pStyle":
				if depth == 0 && isHeadingStyle(attr(t, "val")) {
					kind = KindHeading
				}
			case "t":
				inText = true
			case "tab", "br", "cr":
				text.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				depth--
			case "t":
				inText = false
			case "p":
				if s := strings.Join(strings.Fields(text.String()), " "); s != "" {
					elements = append(elements, domain.Element{Kind: kind, Text: s})
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
}

func isHeadingStyle(style string) bool {
	s := strings.ToLower(style)
	return strings.HasPrefix(s, "heading") || s == "title"
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

type coreProperties struct {
	Title string `xml:"title"`
}

// documentTitle reads the title from the core properties, falling back to
// the reference's file name.
func documentTitle(reader *zip.Reader, reference string) string {
	if data, err := readPart(reader, corePart); err == nil {
		var core coreProperties
		if xml.Unmarshal(data, &core) == nil {
			if title := strings.TrimSpace(core.Title); title != "" {
				return title
			}
		}
	}
	return html.TitleFromReference(reference)
}
