package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/reference"
)

// setupTestDB creates a library with citations and a database rebuilt from it.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dir := t.TempDir()
	refsPath := filepath.Join(dir, "refs.jsonl")
	citationsPath := filepath.Join(dir, CitationsFile)

	refs := []reference.Reference{
		{
			ID:        "Smith2026",
			DOI:       "10.1234/smith",
			Title:     "Machine Learning in Biology",
			Venue:     "Nature",
			Authors:   []reference.Author{{First: "John", Last: "Smith"}, {First: "Jane", Last: "Doe"}},
			Published: reference.PublicationDate{Year: 2026, Month: 3, Day: 15},
			Source:    reference.ImportSource{Type: "crossref", ID: "10.1234/smith"},
		},
		{
			ID:        "Jones2025",
			Title:     "Deep Learning for Protein Structure",
			Authors:   []reference.Author{{Name: "Protein Consortium"}},
			Published: reference.PublicationDate{Year: 2025},
			Source:    reference.ImportSource{Type: "manual"},
		},
	}
	if err := WriteAll(refsPath, refs); err != nil {
		t.Fatal(err)
	}

	citations := []citation.Citation{
		citation.New("c1", "Smith2026", citation.Item{Type: citation.TypeJournalArticle, Title: "Cited one", DOI: "10.9/one"}),
		citation.New("c2", "Smith2026", citation.Item{Type: citation.TypeBook, Title: "Cited two"}),
		citation.New("c3", "Jones2025", citation.Item{Type: citation.TypeJournalArticle, Title: "Cited one again", DOI: "10.9/one"}),
	}
	if err := WriteAllCitations(citationsPath, citations); err != nil {
		t.Fatal(err)
	}

	db, err := OpenDB(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	nRefs, nCitations, err := db.RebuildFromJSONL(context.Background(), refsPath, citationsPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if nRefs != 2 || nCitations != 3 {
		t.Fatalf("RebuildFromJSONL() = %d, %d, want 2, 3", nRefs, nCitations)
	}
	return db
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)

	ref, err := db.GetByID("Smith2026")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if ref == nil {
		t.Fatal("GetByID() returned nil")
	}
	if ref.DOI != "10.1234/smith" || ref.Published.Day != 15 || len(ref.Authors) != 2 {
		t.Errorf("GetByID() = %+v", ref)
	}

	missing, err := db.GetByID("nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(nope) = %v, %v, want nil, nil", missing, err)
	}
}

func TestListAllAndCount(t *testing.T) {
	db := setupTestDB(t)

	refs, err := db.ListAll(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0].ID != "Jones2025" {
		t.Errorf("ListAll() = %+v, want Jones2025 first", refs)
	}
	if refs[0].DOI != "" {
		t.Errorf("DOI = %q, want empty", refs[0].DOI)
	}

	limited, err := db.ListAll(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListAll(1) = %d refs, %v", len(limited), err)
	}

	n, err := db.Count()
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  int
	}{
		{"learning", 2},
		{"protein", 1},
		{"Smith", 1},
		{"nonexistent", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			refs, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(refs) != tt.want {
				t.Errorf("Search(%q) returned %d refs, want %d", tt.query, len(refs), tt.want)
			}
		})
	}
}

func TestCitationQueries(t *testing.T) {
	db := setupTestDB(t)

	bySource, err := db.CitationsBySource("Smith2026")
	if err != nil {
		t.Fatal(err)
	}
	if len(bySource) != 2 || bySource[0].ID != "c1" || bySource[1].Item.Title != "Cited two" {
		t.Errorf("CitationsBySource() = %+v", bySource)
	}
	if bySource[0].OCIs == nil {
		t.Error("OCIs should be an empty list, not nil")
	}

	byDOI, err := db.CitationsOfDOI("10.9/one")
	if err != nil {
		t.Fatal(err)
	}
	if len(byDOI) != 2 {
		t.Errorf("CitationsOfDOI() returned %d, want 2", len(byDOI))
	}

	counts, err := db.CitationCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["Smith2026"] != 2 || counts["Jones2025"] != 1 {
		t.Errorf("CitationCounts() = %v", counts)
	}

	n, err := db.CountCitations()
	if err != nil || n != 3 {
		t.Errorf("CountCitations() = %d, %v", n, err)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	dir := t.TempDir()
	refsPath := filepath.Join(dir, "refs.jsonl")
	citationsPath := filepath.Join(dir, CitationsFile)

	db, err := OpenDB(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := WriteAll(refsPath, []reference.Reference{{ID: "A", Title: "A", Source: reference.ImportSource{Type: "manual"}}}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.RebuildFromJSONL(context.Background(), refsPath, citationsPath); err != nil {
		t.Fatal(err)
	}

	if err := WriteAll(refsPath, nil); err != nil {
		t.Fatal(err)
	}
	nRefs, nCitations, err := db.RebuildFromJSONL(context.Background(), refsPath, citationsPath)
	if err != nil {
		t.Fatal(err)
	}
	if nRefs != 0 || nCitations != 0 {
		t.Errorf("RebuildFromJSONL() = %d, %d, want 0, 0", nRefs, nCitations)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("Count() = %d after rebuilding from empty file", n)
	}
}
