// Package reference defines the source records a library holds: the
// works whose reference lists are enriched into citations.
package reference

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/citegraph/internal/citation"
)

// Reference is a work in the library.
type Reference struct {
	// Identity
	ID  string `json:"id"`            // Stable citekey-style identifier
	DOI string `json:"doi,omitempty"` // Clean DOI; records without one are never enriched

	// Metadata
	Title     string          `json:"title"`
	Authors   []Author        `json:"authors,omitempty"`
	Venue     string          `json:"venue,omitempty"`
	Published PublicationDate `json:"published"`

	// Relative to the configured PDF root
	PDFPath string `json:"pdf_path,omitempty"`

	Source ImportSource `json:"source"`
}

// PublicationDate is a publication date with optional month and day.
type PublicationDate struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// ParseDate parses YYYY, YYYY-MM or YYYY-MM-DD. Unparseable parts are left zero.
func ParseDate(s string) PublicationDate {
	var d PublicationDate
	parts := strings.SplitN(strings.TrimSpace(s), "-", 3)
	if len(parts) > 0 {
		d.Year, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		d.Month, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		d.Day, _ = strconv.Atoi(parts[2])
	}
	return d
}

// ImportSource tracks how a reference entered the library.
type ImportSource struct {
	Type string `json:"type"` // crossref, openlibrary, manual
	ID   string `json:"id,omitempty"`
}

// FromItem builds a reference from a resolved item. The ID is left empty.
func FromItem(item citation.Item, sourceType string) Reference {
	ref := Reference{
		DOI:       item.DOI,
		Title:     item.Title,
		Venue:     item.PublicationTitle,
		Published: ParseDate(item.Date),
		Source:    ImportSource{Type: sourceType, ID: item.DOI},
	}
	if ref.Source.ID == "" {
		ref.Source.ID = item.ISBN
	}
	for _, c := range item.Creators {
		if c.Role != citation.RoleAuthor {
			continue
		}
		ref.Authors = append(ref.Authors, Author{First: c.First, Last: c.Last, Name: c.Name})
	}
	return ref
}

// CiteKey returns a base identifier of the form LastnameYEAR, e.g.
// "Zhang2018". Falls back to "ref" when there is no author.
func (r Reference) CiteKey() string {
	base := "ref"
	if len(r.Authors) > 0 {
		if last := keyPart(r.Authors[0].Surname()); last != "" {
			base = last
		}
	}
	if r.Published.Year > 0 {
		base += strconv.Itoa(r.Published.Year)
	}
	return base
}

// keyPart keeps letters and digits from the first word of s.
func keyPart(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
