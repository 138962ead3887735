// Package page extracts the text of CMS page bodies.
//
// A body is either an HTML document or a JSON object whose string values
// are HTML fragments (one per editor block). Fragments are extracted in
// document order and joined with a blank line.
package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
)

// Ensure Extractor implements the interface.
var _ driven.BodyExtractor = (*Extractor)(nil)

// Extractor turns stored page bodies into plain text.
type Extractor struct{}

// New creates a new page body extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractBody returns the text of a page body. The boolean is false when
// the body holds no visible text.
func (e *Extractor) ExtractBody(body string) (string, bool, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", false, nil
	}

	if !strings.HasPrefix(trimmed, "{") {
		text := html.PlainText(trimmed)
		return text, text != "", nil
	}

	fragments, err := objectFragments(trimmed)
	if err != nil {
		return "", false, fmt.Errorf("%w: page body: %v", domain.ErrParse, err)
	}
	texts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if text := html.PlainText(fragment); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return "", false, nil
	}
	return strings.Join(texts, "\n\n"), true, nil
}

// objectFragments returns the string values of a JSON object in document
// order. Values of other types are ignored.
func objectFragments(src string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(src))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("body is not a JSON object")
	}

	var fragments []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		var s string
		if json.Unmarshal(value, &s) == nil {
			fragments = append(fragments, s)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return fragments, nil
}
