// Package citation defines the citation graph types: cited items, the
// directed citation edges that point at them, and the raw provider
// reference entries they are resolved from.
package citation

import (
	"context"
	"errors"
	"time"
)

// Citation is a directed edge from a source record to the work it cites.
type Citation struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Item     Item   `json:"item"`

	// OCIs holds Open Citation Identifiers recording where the citation
	// metadata came from. Always empty (never nil) at creation.
	OCIs []string `json:"ocis"`

	CreatedAt string `json:"created_at,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("citation id is required")
	ErrEmptySourceID = errors.New("source_id is required")
	ErrEmptyItemType = errors.New("cited item type is required")
)

// New creates a citation from sourceID to item with an empty OCI list.
func New(id, sourceID string, item Item) Citation {
	return Citation{
		ID:       id,
		SourceID: sourceID,
		Item:     item,
		OCIs:     []string{},
	}
}

// Validate checks the fields every stored citation must carry.
func (c *Citation) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.SourceID == "" {
		return ErrEmptySourceID
	}
	if c.Item.Type == "" {
		return ErrEmptyItemType
	}
	return nil
}

// SetCreatedAt sets the CreatedAt timestamp to the current time if not already set.
func (c *Citation) SetCreatedAt() {
	if c.CreatedAt == "" {
		c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// Writer appends citations to source records inside a transaction.
type Writer interface {
	AddCitations(sourceID string, citations []Citation) error
}

// Store applies a unit of work atomically: either every AddCitations call
// made by fn is persisted, or none is.
type Store interface {
	Transact(ctx context.Context, fn func(w Writer) error) error
}

// GroupBySource returns citations keyed by source ID, preserving order.
func GroupBySource(citations []Citation) map[string][]Citation {
	out := make(map[string][]Citation)
	for _, c := range citations {
		out[c.SourceID] = append(out[c.SourceID], c)
	}
	return out
}
