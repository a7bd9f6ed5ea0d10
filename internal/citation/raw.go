package citation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Crossref reference field names.
const (
	FieldDOI          = "DOI"
	FieldISBN         = "ISBN"
	FieldJournalTitle = "journal-title"
	FieldArticleTitle = "article-title"
	FieldVolumeTitle  = "volume-title"
	FieldUnstructured = "unstructured"
	FieldAuthor       = "author"
	FieldYear         = "year"
	FieldVolume       = "volume"
	FieldIssue        = "issue"
	FieldFirstPage    = "first-page"
)

// RawReference is one reference entry exactly as the metadata provider
// returned it. Fields are optional and provider-versioned, so callers use
// the presence accessors rather than a fixed schema.
type RawReference map[string]any

// String returns the field as a string. Numbers are formatted without
// exponent; empty strings, nulls and non-scalar values report false.
func (r RawReference) String(key string) (string, bool) {
	s, ok := stringValue(r[key])
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Has reports whether the field is present with a non-empty value.
func (r RawReference) Has(key string) bool {
	_, ok := r.String(key)
	return ok
}

// Lookup is String with a case-insensitive fallback on the key, for
// fields the provider has emitted under more than one casing.
func (r RawReference) Lookup(key string) (string, bool) {
	if s, ok := r.String(key); ok {
		return s, true
	}
	for k := range r {
		if strings.EqualFold(k, key) {
			if s, ok := r.String(k); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Key returns the provider's own key for the entry, if any.
func (r RawReference) Key() string {
	s, _ := r.String("key")
	return s
}

// JSON returns the entry as compact JSON, for diagnostics.
func (r RawReference) JSON() string {
	data, err := json.Marshal(map[string]any(r))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func stringValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}
