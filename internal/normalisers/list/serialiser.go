// Package list renders CMS lists as bulleted text.
package list

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Bullet prefixes every rendered row.
const Bullet = "• "

// Ensure Serialiser implements the interface.
var _ driven.ListSerialiser = (*Serialiser)(nil)

// Serialiser renders a list as one bulleted line per non-empty row.
type Serialiser struct{}

// New creates a new list serialiser.
func New() *Serialiser {
	return &Serialiser{}
}

// Serialise returns the list's rows as bulleted lines joined with newlines.
// Null and blank rows are skipped; the boolean is false when none remain.
func (s *Serialiser) Serialise(list domain.ListRow) (string, bool) {
	lines := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if item == nil {
			continue
		}
		if text := renderItem(*item); text != "" {
			lines = append(lines, Bullet+text)
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// renderItem flattens one row. Rows stored as JSON objects become
// "key: value" pairs in key order; JSON strings are unquoted.
func renderItem(raw string) string {
	item := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(item, "{"):
		var fields map[string]any
		if json.Unmarshal([]byte(item), &fields) == nil {
			return renderFields(fields)
		}
	case strings.HasPrefix(item, `"`):
		var s string
		if json.Unmarshal([]byte(item), &s) == nil {
			return strings.TrimSpace(s)
		}
	}
	return collapse(item)
}

func renderFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if v == nil {
			continue
		}
		value := collapse(fmt.Sprint(v))
		if value == "" {
			continue
		}
		pairs = append(pairs, k+": "+value)
	}
	return strings.Join(pairs, "; ")
}

// collapse folds runs of whitespace, including newlines, into single spaces
// so a row always renders on one line.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
