package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matsen/citegraph/internal/citation"
)

// CitationsFile is the name of the citations JSONL file.
const CitationsFile = "citations.jsonl"

// ReadAllCitations reads all citations from a JSONL file.
// Returns an error if any citation fails validation (fail-fast).
func ReadAllCitations(path string) ([]citation.Citation, error) {
	var citations []citation.Citation
	err := readJSONL(path, func(lineNum int, line []byte) error {
		var c citation.Citation
		if err := json.Unmarshal(line, &c); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid citation at line %d: %w", lineNum, err)
		}
		if c.OCIs == nil {
			c.OCIs = []string{}
		}
		citations = append(citations, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading citations file: %w", err)
	}
	return citations, nil
}

// WriteAllCitations replaces the contents of a JSONL file with citations.
// The file is replaced atomically.
func WriteAllCitations(path string, citations []citation.Citation) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		for _, c := range citations {
			if err := writeJSONLine(w, c); err != nil {
				return fmt.Errorf("citation %s: %w", c.ID, err)
			}
		}
		return nil
	})
}
