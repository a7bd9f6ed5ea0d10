package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/matsen/citegraph/internal/citation"
)

const citationsSchema = `
		CREATE TABLE IF NOT EXISTS citations (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			item_type TEXT NOT NULL,
			title TEXT,
			doi TEXT,
			item_json TEXT NOT NULL,
			ocis_json TEXT NOT NULL,
			created_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_citations_source ON citations(source_id, seq);
		CREATE INDEX IF NOT EXISTS idx_citations_doi ON citations(doi) WHERE doi IS NOT NULL;
`

const selectCitationFields = `id, source_id, item_json, ocis_json, created_at`

func insertCitations(ctx context.Context, tx *sql.Tx, citations []citation.Citation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO citations (id, source_id, seq, item_type, title, doi, item_json, ocis_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing citations insert: %w", err)
	}
	defer stmt.Close()

	for seq, c := range citations {
		itemJSON, err := json.Marshal(c.Item)
		if err != nil {
			return fmt.Errorf("marshaling item for citation %s: %w", c.ID, err)
		}
		ocis := c.OCIs
		if ocis == nil {
			ocis = []string{}
		}
		ocisJSON, err := json.Marshal(ocis)
		if err != nil {
			return fmt.Errorf("marshaling OCIs for citation %s: %w", c.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			c.ID, c.SourceID, seq, string(c.Item.Type),
			nullableStringValue(c.Item.Title), nullableStringValue(c.Item.DOI),
			string(itemJSON), string(ocisJSON), nullableStringValue(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting citation %s: %w", c.ID, err)
		}
	}
	return nil
}

// CitationsBySource returns the citations of one source record in the
// order they were added.
func (d *DB) CitationsBySource(sourceID string) ([]citation.Citation, error) {
	rows, err := d.db.Query(`
		SELECT `+selectCitationFields+`
		FROM citations
		WHERE source_id = ?
		ORDER BY seq
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying citations by source: %w", err)
	}
	defer rows.Close()

	return scanCitations(rows)
}

// CitationsOfDOI returns every citation whose cited item has the DOI.
func (d *DB) CitationsOfDOI(doi string) ([]citation.Citation, error) {
	rows, err := d.db.Query(`
		SELECT `+selectCitationFields+`
		FROM citations
		WHERE doi = ?
		ORDER BY source_id, seq
	`, doi)
	if err != nil {
		return nil, fmt.Errorf("querying citations by DOI: %w", err)
	}
	defer rows.Close()

	return scanCitations(rows)
}

// CitationCounts returns the number of citations per source record.
func (d *DB) CitationCounts() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT source_id, COUNT(*) FROM citations GROUP BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("counting citations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// CountCitations returns the total number of citations.
func (d *DB) CountCitations() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&count)
	return count, err
}

// scanCitations scans rows into a slice of citations.
func scanCitations(rows *sql.Rows) ([]citation.Citation, error) {
	var citations []citation.Citation
	for rows.Next() {
		var c citation.Citation
		var itemJSON, ocisJSON string
		var createdAt sql.NullString
		if err := rows.Scan(&c.ID, &c.SourceID, &itemJSON, &ocisJSON, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(itemJSON), &c.Item); err != nil {
			return nil, fmt.Errorf("parsing item JSON for citation %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(ocisJSON), &c.OCIs); err != nil {
			return nil, fmt.Errorf("parsing OCIs for citation %s: %w", c.ID, err)
		}
		c.CreatedAt = createdAt.String
		citations = append(citations, c)
	}
	return citations, rows.Err()
}
