package domain

// ContentType identifies which source produced a record.
type ContentType string

// Content types, in merge priority order.
const (
	ContentPage ContentType = "page"
	ContentFile ContentType = "file"
	ContentList ContentType = "list"
)

// IsValid returns true if the content type is recognised.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentPage, ContentFile, ContentList:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ContentType) String() string {
	return string(t)
}

// Metadata keys present on every record.
const (
	MetaID   = "id"
	MetaType = "type"
)

// ContentRecord is the unit produced by the content pipeline.
// Once yielded it belongs to the caller; the pipeline keeps no reference.
type ContentRecord struct {
	// Content is the normalised, extracted text. Never empty.
	Content string

	// Metadata holds type-specific fields. Always includes "id" and "type".
	Metadata map[string]any
}

// NewRecord builds a record for the given store-native id.
// Entries in extra are copied; id and type cannot be overridden.
func NewRecord(t ContentType, id int64, content string, extra map[string]any) ContentRecord {
	meta := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		meta[k] = v
	}
	meta[MetaID] = id
	meta[MetaType] = string(t)
	return ContentRecord{Content: content, Metadata: meta}
}

// Type returns the record's content type.
func (r ContentRecord) Type() ContentType {
	t, _ := r.Metadata[MetaType].(string)
	return ContentType(t)
}

// ID returns the store-native identifier of the record.
func (r ContentRecord) ID() int64 {
	id, _ := r.Metadata[MetaID].(int64)
	return id
}
