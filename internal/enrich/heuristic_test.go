package enrich

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matsen/citegraph/internal/citation"
)

func TestMapHeuristically(t *testing.T) {
	tests := []struct {
		name string
		ref  citation.RawReference
		want citation.Item
	}{
		{
			name: "book from volume-title",
			ref: citation.RawReference{
				"volume-title": "Foo",
				"year":         "2001",
				"author":       "A. Author",
			},
			want: citation.Item{
				Type:     citation.TypeBook,
				Title:    "Foo",
				Date:     "2001",
				Creators: []citation.Creator{{Role: citation.RoleAuthor, Name: "A. Author"}},
			},
		},
		{
			name: "journal article with article-title",
			ref: citation.RawReference{
				"journal-title": "Syst Biol",
				"article-title": "Bar",
				"volume":        "67",
				"issue":         "3",
				"first-page":    "402",
				"year":          "2018",
			},
			want: citation.Item{
				Type:             citation.TypeJournalArticle,
				Title:            "Bar",
				PublicationTitle: "Syst Biol",
				Volume:           "67",
				Issue:            "3",
				Pages:            "402",
				Date:             "2018",
			},
		},
		{
			name: "journal article title falls back to volume-title",
			ref: citation.RawReference{
				"journal-title": "Proc. Foo",
				"volume-title":  "Proceedings of Foo",
			},
			want: citation.Item{
				Type:             citation.TypeJournalArticle,
				Title:            "Proceedings of Foo",
				PublicationTitle: "Proc. Foo",
			},
		},
		{
			name: "journal-title wins over unstructured",
			ref: citation.RawReference{
				"journal-title": "Nature",
				"unstructured":  "Someone et al. Nature 2001",
			},
			want: citation.Item{
				Type:             citation.TypeJournalArticle,
				PublicationTitle: "Nature",
			},
		},
		{
			name: "numeric year",
			ref: citation.RawReference{
				"volume-title": "Foo",
				"year":         float64(1999),
			},
			want: citation.Item{Type: citation.TypeBook, Title: "Foo", Date: "1999"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapHeuristically(tt.ref)
			if err != nil {
				t.Fatalf("MapHeuristically() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapHeuristically() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMapHeuristically_Skips(t *testing.T) {
	tests := []struct {
		name string
		ref  citation.RawReference
		want error
	}{
		{"unstructured", citation.RawReference{"unstructured": "Smith J. Some paper. 2001."}, ErrUnstructuredUnsupported},
		{"unstructured with year", citation.RawReference{"unstructured": "x", "year": "2001"}, ErrUnstructuredUnsupported},
		{"no titles", citation.RawReference{"author": "Smith", "year": "2001"}, ErrUnclassifiableReference},
		{"empty", citation.RawReference{}, ErrUnclassifiableReference},
		{"empty journal-title", citation.RawReference{"journal-title": ""}, ErrUnclassifiableReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapHeuristically(tt.ref)
			if !errors.Is(err, tt.want) {
				t.Errorf("MapHeuristically() error = %v, want %v", err, tt.want)
			}
			if !IsSkip(err) {
				t.Errorf("MapHeuristically() error %v is not a skip", err)
			}
		})
	}
}

func TestMapHeuristically_Deterministic(t *testing.T) {
	ref := citation.RawReference{
		"journal-title": "J",
		"article-title": "T",
		"author":        "Smith",
		"year":          "2010",
	}
	first, err := MapHeuristically(ref)
	if err != nil {
		t.Fatalf("MapHeuristically() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := MapHeuristically(ref)
		if err != nil {
			t.Fatalf("MapHeuristically() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d = %+v, want %+v", i, again, first)
		}
	}
}
