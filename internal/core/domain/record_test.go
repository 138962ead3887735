package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType_IsValid(t *testing.T) {
	tests := []struct {
		ct       ContentType
		expected bool
	}{
		{ContentPage, true},
		{ContentFile, true},
		{ContentList, true},
		{ContentType("video"), false},
		{ContentType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ct.IsValid())
		})
	}
}

func TestNewRecord_SetsIDAndType(t *testing.T) {
	rec := NewRecord(ContentPage, 42, "Hello", map[string]any{"title": "Home"})

	assert.Equal(t, "Hello", rec.Content)
	assert.Equal(t, int64(42), rec.Metadata[MetaID])
	assert.Equal(t, "page", rec.Metadata[MetaType])
	assert.Equal(t, "Home", rec.Metadata["title"])
	assert.Equal(t, ContentPage, rec.Type())
	assert.Equal(t, int64(42), rec.ID())
}

func TestNewRecord_ExtraCannotOverrideIdentity(t *testing.T) {
	extra := map[string]any{MetaID: "spoofed", MetaType: "list"}

	rec := NewRecord(ContentFile, 7, "x", extra)

	assert.Equal(t, int64(7), rec.ID())
	assert.Equal(t, ContentFile, rec.Type())
}

func TestNewRecord_CopiesExtra(t *testing.T) {
	extra := map[string]any{"name": "a.pdf"}

	rec := NewRecord(ContentFile, 1, "x", extra)
	extra["name"] = "changed"

	assert.Equal(t, "a.pdf", rec.Metadata["name"])
}

func TestNewRecord_NilExtra(t *testing.T) {
	rec := NewRecord(ContentList, 9, "• a", nil)

	assert.Len(t, rec.Metadata, 2)
}

func TestAllStores(t *testing.T) {
	assert.Equal(t, []StoreName{StorePages, StoreFiles, StoreLists}, AllStores())
}
