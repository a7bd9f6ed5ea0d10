// Package enrich adds cited-reference lists from a bibliographic metadata
// provider to the citation graph of DOI-bearing source records.
//
// A run fetches every source's reference list concurrently, asks for
// confirmation, resolves each reference to a structured item (identifier
// lookup first, then heuristic field mapping) and merges the resulting
// citations in a single transaction.
package enrich

import (
	"context"

	"github.com/matsen/citegraph/internal/citation"
)

// Source is a transient handle on a host-owned record to enrich.
type Source struct {
	ID  string `json:"id"`
	DOI string `json:"doi,omitempty"`
}

// ReferenceProvider returns the raw reference list of the work with the
// given DOI. A work without references yields an empty list and no error.
type ReferenceProvider interface {
	References(ctx context.Context, doi string) ([]citation.RawReference, error)
}

// IdentifierKind names an identifier scheme understood by an
// IdentifierResolver.
type IdentifierKind string

const (
	KindDOI  IdentifierKind = "DOI"
	KindISBN IdentifierKind = "ISBN"
)

// Identifier is a typed persistent identifier.
type Identifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

func (id Identifier) String() string {
	return string(id.Kind) + ":" + id.Value
}

// Candidate is one item returned by an identifier lookup, in translator
// item JSON form.
type Candidate map[string]any

// LookupOptions controls an identifier lookup.
type LookupOptions struct {
	// Persist asks the resolver to save what it finds. Reference
	// resolution always passes false.
	Persist bool
}

// IdentifierResolver looks up candidate items for an identifier, best
// match first.
type IdentifierResolver interface {
	ResolveIdentifier(ctx context.Context, id Identifier, opts LookupOptions) ([]Candidate, error)
}

// Barrier is a one-time readiness precondition that must be met before an
// IdentifierResolver is first used.
type Barrier interface {
	Wait(ctx context.Context) error
}

// Status is the stage of a progress update.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusDone    Status = "done"
)

// Notifier is the host's progress and prompt surface. Enrich calls it from
// a single goroutine.
type Notifier interface {
	Update(status Status, message string)
	Alert(title, message string)
	Confirm(title, message string) bool
	Close()
}

// Localizer renders a message key with arguments in the user's language.
type Localizer interface {
	Text(key string, args ...any) string
}
