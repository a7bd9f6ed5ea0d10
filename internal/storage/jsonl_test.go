package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/reference"
)

func TestReadAll_NonExistentFile(t *testing.T) {
	refs, err := ReadAll("/nonexistent/path/refs.jsonl")
	if err != nil {
		t.Fatalf("ReadAll() error = %v (should return nil for nonexistent file)", err)
	}
	if len(refs) != 0 {
		t.Errorf("ReadAll() returned %v, want empty", refs)
	}
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.jsonl")
	content := `{"id":"Smith2026","doi":"10.1234/test","title":"Test Paper","authors":[{"first":"John","last":"Smith"}],"published":{"year":2026},"source":{"type":"manual"}}

{"id":"Jones2025","title":"Other","published":{"year":2025},"source":{"type":"manual"}}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	refs, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("ReadAll() returned %d refs, want 2", len(refs))
	}
	if refs[0].DOI != "10.1234/test" {
		t.Errorf("DOI = %q, want 10.1234/test", refs[0].DOI)
	}
	if refs[1].DOI != "" {
		t.Errorf("DOI = %q, want empty", refs[1].DOI)
	}
}

func TestReadAll_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.jsonl")
	content := `{"id":"A","title":"ok","source":{"type":"manual"}}
{not json}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err := ReadAll(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadAll() error = %v, want error mentioning line 2", err)
	}
}

func TestWriteAllThenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.jsonl")
	refs := []reference.Reference{
		{ID: "A2020", Title: "A", Source: reference.ImportSource{Type: "manual"}},
		{ID: "B2021", Title: "B", Source: reference.ImportSource{Type: "manual"}},
	}
	if err := WriteAll(path, refs); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := Append(path, reference.Reference{ID: "C2022", Title: "C"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 3 || got[2].ID != "C2022" {
		t.Errorf("ReadAll() = %+v, want A2020, B2021, C2022", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only refs.jsonl (no temp files)", len(entries))
	}
}

func TestGenerateUniqueID(t *testing.T) {
	refs := []reference.Reference{{ID: "Zhang2018"}, {ID: "Zhang2018-2"}}

	tests := []struct {
		base string
		want string
	}{
		{"Smith2020", "Smith2020"},
		{"Zhang2018", "Zhang2018-3"},
	}
	for _, tt := range tests {
		if got := GenerateUniqueID(refs, tt.base); got != tt.want {
			t.Errorf("GenerateUniqueID(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestFindByDOI(t *testing.T) {
	refs := []reference.Reference{{ID: "A", DOI: "10.1/a"}, {ID: "B"}}

	if idx, ok := FindByDOI(refs, "10.1/a"); !ok || idx != 0 {
		t.Errorf("FindByDOI(10.1/a) = %d, %v", idx, ok)
	}
	if _, ok := FindByDOI(refs, ""); ok {
		t.Error("FindByDOI(\"\") matched a record without a DOI")
	}
}

func TestReadAllCitations_Validates(t *testing.T) {
	path := filepath.Join(t.TempDir(), CitationsFile)
	content := `{"id":"c1","source_id":"A","item":{"itemType":"book","title":"T"}}
{"id":"c2","source_id":"","item":{"itemType":"book"},"ocis":[]}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadAllCitations(path)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadAllCitations() error = %v, want invalid citation at line 2", err)
	}
}

func TestCitationsRoundTripKeepsEmptyOCIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), CitationsFile)
	in := []citation.Citation{
		citation.New("c1", "A", citation.Item{Type: citation.TypeBook, Title: "T"}),
	}
	if err := WriteAllCitations(path, in); err != nil {
		t.Fatalf("WriteAllCitations() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"ocis":[]`) {
		t.Errorf("file = %s, want an explicit empty ocis list", data)
	}

	got, err := ReadAllCitations(path)
	if err != nil {
		t.Fatalf("ReadAllCitations() error = %v", err)
	}
	if len(got) != 1 || got[0].OCIs == nil || len(got[0].OCIs) != 0 {
		t.Errorf("ReadAllCitations() = %+v", got)
	}
}
