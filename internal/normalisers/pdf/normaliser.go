// Package pdf provides a Normaliser for PDF documents built on pdfcpu.
// Text is read from each page's content stream; pages without text
// operators (scans) produce no elements.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
)

// KindPage is the element kind of one page of text.
const KindPage = "page"

// maxTitleLen bounds titles taken from the first page.
const maxTitleLen = 200

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct {
	conf *model.Configuration
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{conf: model.NewDefaultConfiguration()}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns one element per page that carries text.
func (n *Normaliser) Normalise(ctx context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(blob.Data), n.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", domain.ErrParse, err)
	}

	var elements []domain.Element
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if text := pageText(pdfCtx, pageNr); text != "" {
			elements = append(elements, domain.Element{Kind: KindPage, Text: text})
		}
	}

	title := html.TitleFromReference(blob.Reference)
	if len(elements) > 0 {
		title = firstLine(elements[0].Text)
	}

	return &driven.NormaliseResult{Title: title, Elements: elements}, nil
}

func pageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// stringLiteral matches PDF string literals: (text here)
var stringLiteral = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// streamText reads the text showing operators of a content stream.
func streamText(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range stringLiteral.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range stringLiteral.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodeString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			sb.WriteByte('\n')
		}
	}

	return cleanText(sb.String())
}

// decodeString resolves the escape sequences of a PDF string literal.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 == len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			// Octal escape of up to three digits.
			val := int(c - '0')
			for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanText collapses spaces within lines, drops blank lines and
// non-printable runes.
func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if r := []rune(line); len(r) > maxTitleLen {
		line = string(r[:maxTitleLen])
	}
	return line
}
