// Package eml provides a Normaliser for RFC 822 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
	"github.com/custodia-labs/sitesearch/internal/normalisers/plaintext"
)

// Element kinds produced by the normaliser.
const (
	KindHeader    = "header"
	KindParagraph = "paragraph"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns a header element (From, To, Date, Subject) followed by
// the paragraphs of the message body. Plain text parts are preferred over
// HTML ones.
func (n *Normaliser) Normalise(_ context.Context, blob *domain.Blob) (*driven.NormaliseResult, error) {
	if blob == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: eml: %v", domain.ErrParse, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))

	var header []string
	for _, name := range []string{"From", "To", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(name)); v != "" {
			header = append(header, name+": "+v)
		}
	}

	var elements []domain.Element
	if len(header) > 0 {
		elements = append(elements, domain.Element{Kind: KindHeader, Text: strings.Join(header, "\n")})
	}

	body := partText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	for _, p := range plaintext.Paragraphs(body) {
		elements = append(elements, domain.Element{Kind: KindParagraph, Text: p})
	}

	title := subject
	if title == "" {
		title = html.TitleFromReference(blob.Reference)
	}
	return &driven.NormaliseResult{Title: title, Elements: elements}, nil
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// partText returns the text of one MIME entity. Unreadable or non-text
// entities yield an empty string.
func partText(contentType, transferEncoding string, r io.Reader) string {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartText(r, params["boundary"])
	}
	if mediaType != "text/plain" && mediaType != "text/html" {
		return ""
	}

	data, err := io.ReadAll(decodeTransfer(transferEncoding, r))
	if err != nil {
		return ""
	}
	if mediaType == "text/html" {
		return html.PlainText(string(data))
	}
	return string(data)
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

// multipartText joins the plain text parts of a multipart entity, falling
// back to its HTML parts.
func multipartText(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}

	var plain, rich []string
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		ct := part.Header.Get("Content-Type")
		text := partText(ct, part.Header.Get("Content-Transfer-Encoding"), part)
		part.Close()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(ct), "text/html") {
			rich = append(rich, text)
		} else {
			plain = append(plain, text)
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n\n")
	}
	return strings.Join(rich, "\n\n")
}

