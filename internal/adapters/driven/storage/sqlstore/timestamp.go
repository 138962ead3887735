package sqlstore

import (
	"database/sql"
	"fmt"
	"time"
)

// Ensure timestamp implements the interface.
var _ sql.Scanner = (*timestamp)(nil)

// timestampLayouts are the textual forms drivers return for timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// timestamp scans a column that may arrive as time.Time, text or bytes
// depending on the driver and the declared column type. NULL scans as the
// zero time.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// rawColumn keeps a column value as the driver returned it. Decoding is
// deferred so a bad value can be reported against the row's id.
type rawColumn struct {
	v any
}

func (c *rawColumn) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		src = append([]byte(nil), b...)
	}
	c.v = src
	return nil
}

// Time decodes the value as a timestamp.
func (c rawColumn) Time() (time.Time, error) {
	var t timestamp
	if err := t.Scan(c.v); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// rowError reports a row that could not be decoded. The row is skipped.
type rowError struct {
	kind string
	id   int64
	err  error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.kind, e.id, e.err)
}

func (e *rowError) Unwrap() error {
	return e.err
}
