package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"RepoPath", RepoPath, "/test/repo/.citegraph"},
		{"ConfigPath", ConfigPath, "/test/repo/.citegraph/config.json"},
		{"RefsPath", RefsPath, "/test/repo/.citegraph/refs.jsonl"},
		{"CitationsPath", CitationsPath, "/test/repo/.citegraph/citations.jsonl"},
		{"CachePath", CachePath, "/test/repo/.citegraph/cache"},
		{"DBPath", DBPath, "/test/repo/.citegraph/cache/cite.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, RepoDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create %s file: %v", RepoDir, err)
	}

	if IsRepository(tmpDir) {
		t.Errorf("IsRepository() = true when %s is a file", RepoDir)
	}
}

func TestInitAndFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "src", "pkg")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}

	if _, err := FindRepository(nestedDir); err == nil {
		t.Error("FindRepository() should fail before init")
	}

	if err := Init(repoDir); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	for _, path := range []string{RefsPath(repoDir), CitationsPath(repoDir), ConfigPath(repoDir), CachePath(repoDir)} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Init() did not create %s: %v", path, err)
		}
	}
	if err := Init(repoDir); err == nil {
		t.Error("Init() should refuse an existing repository")
	}

	found, err := FindRepository(nestedDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(RepoPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{PDFRoot: "/path/to/pdfs"}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.PDFRoot != cfg.PDFRoot {
		t.Errorf("PDFRoot = %q, want %q", loaded.PDFRoot, cfg.PDFRoot)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(RepoPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestConfig_PDFPath(t *testing.T) {
	tests := []struct {
		name string
		root string
		rel  string
		want string
	}{
		{"relative", "/pdfs", "Papers/a.pdf", "/pdfs/Papers/a.pdf"},
		{"absolute", "/pdfs", "/elsewhere/a.pdf", "/elsewhere/a.pdf"},
		{"no root", "", "a.pdf", ""},
		{"no file", "/pdfs", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{PDFRoot: tt.root}
			if got := c.PDFPath(tt.rel); got != tt.want {
				t.Errorf("PDFPath(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestValidatePDFRoot(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"valid directory", tmpDir, false},
		{"non-existent path", "/nonexistent/path", true},
		{"file not directory", tmpFile, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePDFRoot(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePDFRoot(%q) error = %v, wantErr = %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
