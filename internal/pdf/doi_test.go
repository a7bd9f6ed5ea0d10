package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverDOI_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := DiscoverDOI(path); err == nil {
		t.Error("DiscoverDOI() should fail on a non-PDF file")
	}
}

func TestDiscoverDOI_MissingFile(t *testing.T) {
	if _, err := DiscoverDOI(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("DiscoverDOI() should fail on a missing file")
	}
}
