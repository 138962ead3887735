package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/normalisers/docx"
	"github.com/custodia-labs/sitesearch/internal/normalisers/eml"
	"github.com/custodia-labs/sitesearch/internal/normalisers/html"
	"github.com/custodia-labs/sitesearch/internal/normalisers/markdown"
	"github.com/custodia-labs/sitesearch/internal/normalisers/pdf"
	"github.com/custodia-labs/sitesearch/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes maps file extensions to MIME types for blobs whose
// content sniffs as something generic.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".htm":      "text/html",
	".html":     "text/html",
	".xhtml":    "application/xhtml+xml",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".eml":      "message/rfc822",
	".txt":      "text/plain",
	".csv":      "text/csv",
	".json":     "application/json",
	".xml":      "application/xml",
}

// Registry dispatches documents to normalisers by MIME type.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]driven.Normaliser)}
}

// Default returns a registry with every built-in normaliser registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(eml.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range n.SupportedMIMETypes() {
		r.byType[t] = append(r.byType[t], n)
	}
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// ExtractDocument normalises the blob with the best matching normaliser and
// joins the element texts with newlines.
func (r *Registry) ExtractDocument(ctx context.Context, blob *domain.Blob) (string, error) {
	if blob == nil {
		return "", domain.ErrInvalidInput
	}

	n, mimeType := r.Select(blob)
	if n == nil {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, mimeType, blob.Reference)
	}

	result, err := n.Normalise(ctx, blob)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(result.Elements))
	for _, el := range result.Elements {
		if el.Text != "" {
			texts = append(texts, el.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// Select returns the normaliser for a blob and the MIME type it was chosen
// by. Candidate types are tried in order: the sniffed type and its parents,
// the origin's Content-Type, then the reference's extension. The highest
// priority wins; ties go to the earlier candidate.
// A nil normaliser means the blob is unsupported; the sniffed type is then
// returned for reporting.
func (r *Registry) Select(blob *domain.Blob) (driven.Normaliser, string) {
	candidates := candidateTypes(blob)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best     driven.Normaliser
		bestType string
	)
	for _, t := range candidates {
		for _, n := range r.byType[t] {
			if best == nil || n.Priority() > best.Priority() {
				best, bestType = n, t
			}
		}
	}
	if best == nil && len(candidates) > 0 {
		bestType = candidates[0]
	}
	return best, bestType
}

func candidateTypes(blob *domain.Blob) []string {
	var types []string
	add := func(t string) {
		if media, _, err := mime.ParseMediaType(t); err == nil && !slices.Contains(types, media) {
			types = append(types, media)
		}
	}

	for m := mimetype.Detect(blob.Data); m != nil; m = m.Parent() {
		add(m.String())
	}
	if blob.ContentType != "" {
		add(blob.ContentType)
	}
	if t, ok := extensionTypes[strings.ToLower(path.Ext(blob.Reference))]; ok {
		add(t)
	}
	return types
}
