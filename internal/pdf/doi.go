// Package pdf discovers identifiers for library records from their PDFs.
package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/citegraph/internal/doi"
)

// MaxScanPages is how many leading pages are searched for a DOI.
const MaxScanPages = 3

// DiscoverDOI returns the first DOI printed in the first pages of the PDF
// at path, cleaned. Returns "" without error if none is found.
func DiscoverDOI(path string) (string, error) {
	text, err := ExtractText(path, MaxScanPages)
	if err != nil {
		return "", err
	}
	return doi.Find(text), nil
}

// ExtractText extracts plain text from the first maxPages pages of a PDF.
// Pages that fail to decode are skipped.
func ExtractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var b strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
