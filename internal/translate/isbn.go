package translate

import (
	"context"
	"strings"

	"github.com/matsen/citegraph/internal/enrich"
)

// BookFetcher fetches a book record by ISBN. *OpenLibrary implements it.
type BookFetcher interface {
	Book(ctx context.Context, isbn string) (*Book, error)
}

// ISBNTranslator builds book candidates from Open Library records.
type ISBNTranslator struct {
	books BookFetcher
}

// NewISBNTranslator creates an ISBN translator backed by books.
func NewISBNTranslator(books BookFetcher) *ISBNTranslator {
	return &ISBNTranslator{books: books}
}

// Kind implements Translator.
func (t *ISBNTranslator) Kind() enrich.IdentifierKind {
	return enrich.KindISBN
}

// Translate implements Translator.
func (t *ISBNTranslator) Translate(ctx context.Context, value string, schema *Schema) ([]enrich.Candidate, error) {
	isbn := CleanISBN(value)
	if isbn == "" {
		return nil, &InvalidIdentifierError{Kind: enrich.KindISBN, Value: value}
	}

	book, err := t.books.Book(ctx, isbn)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(book.Title)
	if sub := strings.TrimSpace(book.Subtitle); sub != "" {
		title += ": " + sub
	}
	creators := make([]any, 0, len(book.Authors))
	for _, a := range book.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			creators = append(creators, map[string]any{"creatorType": "author", "name": name})
		}
	}
	c := enrich.Candidate{
		"itemType": "book",
		"title":    title,
		"date":     strings.TrimSpace(book.PublishDate),
		"ISBN":     isbn,
		"url":      book.URL,
		"creators": creators,
		"notes":    []any{},
		"seeAlso":  []any{},
	}
	if len(book.Publishers) > 0 {
		c["publisher"] = strings.TrimSpace(book.Publishers[0].Name)
	}
	return []enrich.Candidate{schema.Conform(c)}, nil
}

// CleanISBN strips separators and returns the ISBN-10 or ISBN-13 digits,
// or "" if s is not shaped like one.
func CleanISBN(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ':
		default:
			return ""
		}
	}
	out := b.String()
	switch len(out) {
	case 10:
		if strings.IndexByte(out, 'X') >= 0 && strings.IndexByte(out, 'X') != 9 {
			return ""
		}
		return out
	case 13:
		if strings.ContainsRune(out, 'X') {
			return ""
		}
		return out
	}
	return ""
}
