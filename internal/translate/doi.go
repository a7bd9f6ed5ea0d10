package translate

import (
	"context"
	"strings"

	"github.com/matsen/citegraph/internal/crossref"
	"github.com/matsen/citegraph/internal/doi"
	"github.com/matsen/citegraph/internal/enrich"
)

// WorkFetcher fetches a Crossref work record. *crossref.Client implements it.
type WorkFetcher interface {
	Work(ctx context.Context, doi string) (*crossref.Work, error)
}

// DOITranslator builds candidates from Crossref work metadata.
type DOITranslator struct {
	works WorkFetcher
}

// NewDOITranslator creates a DOI translator backed by works.
func NewDOITranslator(works WorkFetcher) *DOITranslator {
	return &DOITranslator{works: works}
}

// Kind implements Translator.
func (t *DOITranslator) Kind() enrich.IdentifierKind {
	return enrich.KindDOI
}

// Translate implements Translator.
func (t *DOITranslator) Translate(ctx context.Context, value string, schema *Schema) ([]enrich.Candidate, error) {
	clean := doi.Clean(value)
	if clean == "" {
		return nil, &InvalidIdentifierError{Kind: enrich.KindDOI, Value: value}
	}

	work, err := t.works.Work(ctx, clean)
	if err != nil {
		return nil, err
	}
	return []enrich.Candidate{schema.Conform(workCandidate(work, schema))}, nil
}

// workCandidate converts a work record to translator item JSON.
func workCandidate(w *crossref.Work, schema *Schema) enrich.Candidate {
	c := enrich.Candidate{
		"itemType":         schema.ItemTypeForCrossref(w.Type),
		"title":            strings.TrimSpace(w.FirstTitle()),
		"date":             w.Date(),
		"volume":           w.Volume,
		"issue":            w.Issue,
		"pages":            w.Page,
		"publicationTitle": strings.TrimSpace(w.FirstContainerTitle()),
		"publisher":        w.Publisher,
		"DOI":              strings.ToLower(w.DOI),
		"url":              w.URL,
		"creators":         contributors(w),
		"notes":            []any{},
		"seeAlso":          []any{},
		"attachments":      attachments(w.Link),
	}
	if len(w.ISBN) > 0 {
		c["ISBN"] = w.ISBN[0]
	}
	return c
}

func contributors(w *crossref.Work) []any {
	out := make([]any, 0, len(w.Author)+len(w.Editor))
	add := func(role string, people []crossref.Contributor) {
		for _, p := range people {
			m := map[string]any{"creatorType": role}
			switch {
			case p.Family != "":
				m["lastName"] = p.Family
				if p.Given != "" {
					m["firstName"] = p.Given
				}
			case p.Name != "":
				m["name"] = p.Name
			default:
				continue
			}
			out = append(out, m)
		}
	}
	add("author", w.Author)
	add("editor", w.Editor)
	return out
}

func attachments(links []crossref.Link) []any {
	out := make([]any, 0, len(links))
	for _, l := range links {
		if l.URL == "" {
			continue
		}
		a := map[string]any{"title": "Full Text", "url": l.URL}
		if l.ContentType != "" && l.ContentType != "unspecified" {
			a["mimeType"] = l.ContentType
		}
		out = append(out, a)
	}
	return out
}
