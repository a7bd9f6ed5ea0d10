package enrich

import "github.com/matsen/citegraph/internal/citation"

// MapHeuristically builds an item from an identifier-less reference using
// its bibliographic fields alone. It does no I/O.
//
// Entries with a journal-title become journal articles, entries with only
// a volume-title become books. Free-text (unstructured) entries and
// entries with neither title are skipped.
//
// The author field is kept as one undifferentiated name; Crossref gives
// only the first author's surname or a "Surname, Initials" string, which
// cannot be split reliably.
func MapHeuristically(ref citation.RawReference) (citation.Item, error) {
	var item citation.Item

	switch {
	case ref.Has(citation.FieldJournalTitle):
		item.Type = citation.TypeJournalArticle
		if title, ok := ref.String(citation.FieldArticleTitle); ok {
			item.Title = title
		} else {
			item.Title, _ = ref.String(citation.FieldVolumeTitle)
		}
		item.PublicationTitle, _ = ref.String(citation.FieldJournalTitle)
	case ref.Has(citation.FieldVolumeTitle):
		item.Type = citation.TypeBook
		item.Title, _ = ref.String(citation.FieldVolumeTitle)
	case ref.Has(citation.FieldUnstructured):
		return citation.Item{}, skip(ErrUnstructuredUnsupported, "%s", ref.JSON())
	default:
		return citation.Item{}, skip(ErrUnclassifiableReference, "%s", ref.JSON())
	}

	item.Date, _ = ref.String(citation.FieldYear)
	item.Pages, _ = ref.String(citation.FieldFirstPage)
	item.Volume, _ = ref.String(citation.FieldVolume)
	item.Issue, _ = ref.String(citation.FieldIssue)
	if author, ok := ref.String(citation.FieldAuthor); ok {
		item.Creators = []citation.Creator{{Role: citation.RoleAuthor, Name: author}}
	}

	return item, nil
}
