package engine

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/fastygo/storecore/domain"
)

// Document is the single JSON object an engine writes to stdout, kept
// undecoded per top-level field.
type Document map[string]json.RawMessage

// ParseDocument requires exactly one JSON object and nothing else.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty output")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("output is not an object")
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Marshal encodes an engine payload.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Has reports whether field is present and not null.
func (d Document) Has(field string) bool {
	raw, ok := d[field]
	return ok && !isNull(raw)
}

// String returns a string field.
func (d Document) String(field string) (string, bool) {
	raw, ok := d[field]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the string entries of an array field; other entries are
// skipped.
func (d Document) Strings(field string) ([]string, bool, error) {
	items, ok, err := d.array(field)
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out, true, nil
}

// IDs coerces an array field into canonical product ids. Strings must be
// in canonical decimal form and numbers must be integral; anything else
// is dropped. present is false when the field is missing or null.
func (d Document) IDs(field string) (ids []domain.ProductID, present bool, err error) {
	items, ok, err := d.array(field)
	if !ok || err != nil {
		return nil, ok, err
	}
	ids = make([]domain.ProductID, 0, len(items))
	for _, item := range items {
		if id, ok := coerceID(item); ok {
			ids = append(ids, id)
		}
	}
	return ids, true, nil
}

func (d Document) array(field string) ([]json.RawMessage, bool, error) {
	raw, ok := d[field]
	if !ok || isNull(raw) {
		return nil, false, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true, fmt.Errorf("field %q is not an array: %w", field, err)
	}
	return items, true, nil
}

func coerceID(raw json.RawMessage) (domain.ProductID, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return domain.ParseProductID(s)
	}
	literal := string(raw)
	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return domain.ProductID(n), true
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return domain.ProductID(int64(f)), true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
