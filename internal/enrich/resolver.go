package enrich

import (
	"context"

	"github.com/matsen/citegraph/internal/citation"
)

// IdentifierLookup resolves an identifier to an item or a skip.
// *IdentifierAdapter is the production implementation.
type IdentifierLookup interface {
	ResolveIdentifier(ctx context.Context, id Identifier) (citation.Item, error)
}

// Resolver turns one raw reference entry into an item. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	ids IdentifierLookup
}

// NewResolver creates a Resolver that sends identifier-bearing entries to ids.
func NewResolver(ids IdentifierLookup) *Resolver {
	return &Resolver{ids: ids}
}

// Resolve picks the first applicable strategy: DOI lookup, then ISBN
// lookup, then heuristic field mapping. Any error it returns is a
// *SkipError.
//
// Crossref writes the ISBN under "ISBN" but older deposits use "isbn";
// presence and value are read through the same case-insensitive lookup so
// they cannot disagree.
func (r *Resolver) Resolve(ctx context.Context, ref citation.RawReference) (citation.Item, error) {
	if doi, ok := ref.String(citation.FieldDOI); ok {
		return r.ids.ResolveIdentifier(ctx, Identifier{Kind: KindDOI, Value: doi})
	}
	if isbn, ok := ref.Lookup(citation.FieldISBN); ok {
		return r.ids.ResolveIdentifier(ctx, Identifier{Kind: KindISBN, Value: isbn})
	}
	return MapHeuristically(ref)
}
