package reference

import (
	"testing"

	"github.com/matsen/citegraph/internal/citation"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want PublicationDate
	}{
		{"2018", PublicationDate{Year: 2018}},
		{"2018-05", PublicationDate{Year: 2018, Month: 5}},
		{"2018-05-09", PublicationDate{Year: 2018, Month: 5, Day: 9}},
		{"", PublicationDate{}},
		{"May 2009", PublicationDate{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDate(tt.in); got != tt.want {
				t.Errorf("ParseDate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromItem(t *testing.T) {
	item := citation.Item{
		Type:             citation.TypeJournalArticle,
		Title:            "Variational Bayesian phylogenetic inference",
		Date:             "2018-05",
		PublicationTitle: "Systematic Biology",
		DOI:              "10.1093/sysbio/syy032",
		Creators: []citation.Creator{
			{Role: "author", First: "Cheng", Last: "Zhang"},
			{Role: "editor", Name: "Some Editor"},
			{Role: "author", Name: "Phylo Consortium"},
		},
	}

	ref := FromItem(item, "crossref")
	if ref.ID != "" {
		t.Errorf("ID = %q, want empty", ref.ID)
	}
	if ref.Venue != "Systematic Biology" {
		t.Errorf("Venue = %q", ref.Venue)
	}
	if ref.Published != (PublicationDate{Year: 2018, Month: 5}) {
		t.Errorf("Published = %+v", ref.Published)
	}
	if len(ref.Authors) != 2 {
		t.Fatalf("got %d authors, want 2 (editors excluded)", len(ref.Authors))
	}
	if ref.Authors[1].DisplayName() != "Phylo Consortium" {
		t.Errorf("Authors[1] = %q", ref.Authors[1].DisplayName())
	}
	if ref.Source != (ImportSource{Type: "crossref", ID: "10.1093/sysbio/syy032"}) {
		t.Errorf("Source = %+v", ref.Source)
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"split name", Reference{Authors: []Author{{First: "Cheng", Last: "Zhang"}}, Published: PublicationDate{Year: 2018}}, "Zhang2018"},
		{"unsplit name", Reference{Authors: []Author{{Name: "Thomas H. Cormen"}}, Published: PublicationDate{Year: 2009}}, "Cormen2009"},
		{"punctuation", Reference{Authors: []Author{{Last: "O'Brien"}}, Published: PublicationDate{Year: 2001}}, "OBrien2001"},
		{"no year", Reference{Authors: []Author{{Last: "Smith"}}}, "Smith"},
		{"no author", Reference{Published: PublicationDate{Year: 1999}}, "ref1999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.CiteKey(); got != tt.want {
				t.Errorf("CiteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
