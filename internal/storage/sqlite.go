package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citegraph/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRefFields contains the standard field list for SELECT queries.
const selectRefFields = `id, doi, title, venue,
	pub_year, pub_month, pub_day,
	pdf_path, source_type, source_id,
	authors_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS refs (
			id TEXT PRIMARY KEY,
			doi TEXT,
			title TEXT NOT NULL,
			venue TEXT,
			pub_year INTEGER,
			pub_month INTEGER,
			pub_day INTEGER,
			pdf_path TEXT,
			source_type TEXT NOT NULL,
			source_id TEXT,
			authors_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			id,
			title,
			authors_text
		);
	` + citationsSchema

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from the refs and
// citations JSONL files in a single transaction.
func (d *DB) RebuildFromJSONL(ctx context.Context, refsPath, citationsPath string) (refCount, citationCount int, err error) {
	refs, err := ReadAll(refsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading refs JSONL: %w", err)
	}
	citations, err := ReadAllCitations(citationsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading citations JSONL: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("rebuild: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"refs", "refs_fts", "citations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	if err := insertRefs(ctx, tx, refs); err != nil {
		return 0, 0, err
	}
	if err := insertCitations(ctx, tx, citations); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("rebuild: commit: %w", err)
	}
	return len(refs), len(citations), nil
}

func insertRefs(ctx context.Context, tx *sql.Tx, refs []reference.Reference) error {
	refsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO refs (
			id, doi, title, venue,
			pub_year, pub_month, pub_day,
			pdf_path, source_type, source_id,
			authors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO refs_fts (id, title, authors_text) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, ref := range refs {
		authorsJSON, err := json.Marshal(ref.Authors)
		if err != nil {
			return fmt.Errorf("marshaling authors for %s: %w", ref.ID, err)
		}

		_, err = refsStmt.ExecContext(ctx,
			ref.ID, nullableStringValue(ref.DOI), ref.Title, nullableStringValue(ref.Venue),
			ref.Published.Year, ref.Published.Month, ref.Published.Day,
			nullableStringValue(ref.PDFPath), ref.Source.Type, nullableStringValue(ref.Source.ID),
			string(authorsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting ref %s: %w", ref.ID, err)
		}

		if _, err := ftsStmt.ExecContext(ctx, ref.ID, ref.Title, formatAuthorsText(ref.Authors)); err != nil {
			return fmt.Errorf("inserting fts for %s: %w", ref.ID, err)
		}
	}
	return nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []reference.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.DisplayName())
	}
	return strings.Join(names, ", ")
}

// GetByID retrieves a reference by its ID. Returns nil, nil if absent.
func (d *DB) GetByID(id string) (*reference.Reference, error) {
	row := d.db.QueryRow(`SELECT `+selectRefFields+` FROM refs WHERE id = ?`, id)
	return scanReference(row)
}

// Search performs a full-text search over titles and authors.
func (d *DB) Search(query string, limit int) ([]reference.Reference, error) {
	rows, err := d.db.Query(`
		SELECT `+selectRefFields+`
		FROM refs
		WHERE id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// ListAll returns all references, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Reference, error) {
	query := `SELECT ` + selectRefFields + ` FROM refs ORDER BY id`
	var args []any

	if limit > 0 {
		query += " LIMIT ?"
		args = []any{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing refs: %w", err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// Count returns the total number of references.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanReference(s scanner) (*reference.Reference, error) {
	var ref reference.Reference
	var authorsJSON string
	var doi, venue, pdfPath, sourceID sql.NullString
	var pubYear, pubMonth, pubDay sql.NullInt64

	err := s.Scan(
		&ref.ID, &doi, &ref.Title, &venue,
		&pubYear, &pubMonth, &pubDay,
		&pdfPath, &ref.Source.Type, &sourceID,
		&authorsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ref.DOI = doi.String
	ref.Venue = venue.String
	ref.PDFPath = pdfPath.String
	ref.Source.ID = sourceID.String
	ref.Published.Year = int(pubYear.Int64)
	ref.Published.Month = int(pubMonth.Int64)
	ref.Published.Day = int(pubDay.Int64)

	if err := json.Unmarshal([]byte(authorsJSON), &ref.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", ref.ID, err)
	}
	return &ref, nil
}

func scanReferences(rows *sql.Rows) ([]reference.Reference, error) {
	var refs []reference.Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
