package mcp

import (
	"context"
	"iter"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	sites      []string
	records    map[string][]domain.ContentRecord
	streamErrs []error
	text       string
	err        error

	lastSite string
}

func (m *mockContentService) SiteContent(
	_ context.Context,
	siteName string,
) (iter.Seq2[domain.ContentRecord, error], error) {
	m.lastSite = siteName
	if m.err != nil {
		return nil, m.err
	}
	recs, ok := m.records[siteName]
	if !ok {
		return nil, domain.ErrSiteNotFound
	}
	return func(yield func(domain.ContentRecord, error) bool) {
		for _, err := range m.streamErrs {
			if !yield(domain.ContentRecord{}, err) {
				return
			}
		}
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}, nil
}

func (m *mockContentService) AvailableSites(_ context.Context) ([]string, error) {
	return m.sites, m.err
}

func (m *mockContentService) FlattenSite(_ context.Context, siteName string) (string, error) {
	m.lastSite = siteName
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.records[siteName]; !ok {
		return "", domain.ErrSiteNotFound
	}
	return m.text, nil
}

func newTestServer(content *mockContentService) *Server {
	server, err := NewServer(&Ports{Content: content})
	if err != nil {
		panic(err)
	}
	return server
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func docsSite() *mockContentService {
	return &mockContentService{
		sites: []string{"Docs", "Blog"},
		records: map[string][]domain.ContentRecord{
			"Docs": {
				domain.NewRecord(domain.ContentPage, 1, "Welcome", map[string]any{"title": "Home"}),
				domain.NewRecord(domain.ContentPage, 2, "About us", map[string]any{"title": "About"}),
				domain.NewRecord(domain.ContentFile, 7, "Quarterly report", map[string]any{"name": "q3.pdf"}),
				domain.NewRecord(domain.ContentList, 3, "name,email", map[string]any{"name": "Staff"}),
			},
			"Blog": {},
		},
		text: "Welcome\n\nAbout us\n\nQuarterly report\n\nname,email",
	}
}
