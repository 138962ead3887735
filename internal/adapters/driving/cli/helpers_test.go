package cli

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	sites      []string
	records    map[string][]domain.ContentRecord
	streamErrs []error
	text       string
	err        error
}

func (m *mockContentService) SiteContent(
	_ context.Context,
	siteName string,
) (iter.Seq2[domain.ContentRecord, error], error) {
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
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.records[siteName]; !ok {
		return "", domain.ErrSiteNotFound
	}
	return m.text, nil
}

// mockCacheService is a mock implementation of driving.CacheService.
type mockCacheService struct {
	removed int
	err     error
	calls   int
}

func (m *mockCacheService) PruneCache() (int, error) {
	m.calls++
	return m.removed, m.err
}

// mockConfig is an in-memory ConfigEditor.
type mockConfig struct {
	values map[string]any
	setErr error
}

func newMockConfig() *mockConfig {
	return &mockConfig{values: make(map[string]any)}
}

func (m *mockConfig) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfig) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfig) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockConfig) Path() string {
	return "/tmp/sitesearch/config.toml"
}

func testContent() *mockContentService {
	return &mockContentService{
		sites: []string{"Docs", "Blog"},
		records: map[string][]domain.ContentRecord{
			"Docs": {
				domain.NewRecord(domain.ContentPage, 1, "Welcome <home>", map[string]any{"title": "Home"}),
				domain.NewRecord(domain.ContentFile, 7, "Quarterly report", map[string]any{"name": "q3.pdf"}),
				domain.NewRecord(domain.ContentList, 3, "name,email", map[string]any{"name": "Staff"}),
			},
		},
		text: "Welcome <home>\n\n=== File: files/q3.pdf ===\nQuarterly report\n\nname,email",
	}
}

type testEnv struct {
	content *mockContentService
	cache   *mockCacheService
	config  *mockConfig
}

// setupTestServices installs mocks as the CLI's services and config.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		content: testContent(),
		cache:   &mockCacheService{removed: 3},
		config:  newMockConfig(),
	}

	oldServices, oldConfig := services, config
	services = &Services{Content: env.content, Cache: env.cache}
	config = env.config

	t.Cleanup(func() {
		services, config = oldServices, oldConfig
		sitesJSON = false
		contentJSON, contentType, contentLimit = false, "", 0
		settingsReveal = false
		versionShort = false
		rootCmd.SetArgs(nil)
	})
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

var errDatabase = errors.New("database error")
