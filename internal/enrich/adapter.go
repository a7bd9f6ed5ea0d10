package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/citation"
)

// strippedFields are translator outputs that never belong on a cited item.
var strippedFields = []string{"notes", "seeAlso", "attachments"}

// IdentifierAdapter resolves a known identifier to an item through an
// external IdentifierResolver.
type IdentifierAdapter struct {
	resolver IdentifierResolver
	barrier  Barrier
	log      *zap.Logger
}

// NewIdentifierAdapter creates an adapter. barrier may be nil when the
// resolver has no readiness precondition; log may be nil.
func NewIdentifierAdapter(resolver IdentifierResolver, barrier Barrier, log *zap.Logger) *IdentifierAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentifierAdapter{resolver: resolver, barrier: barrier, log: log}
}

// ResolveIdentifier returns the item for the first candidate the resolver
// finds. A resolver failure or an empty result is reported as a skip
// wrapping ErrIdentifierNotResolved.
func (a *IdentifierAdapter) ResolveIdentifier(ctx context.Context, id Identifier) (citation.Item, error) {
	if a.barrier != nil {
		if err := a.barrier.Wait(ctx); err != nil {
			a.log.Error("identifier resolver not ready", zap.Stringer("identifier", id), zap.Error(err))
			return citation.Item{}, skip(ErrIdentifierNotResolved, "%s: resolver not ready: %v", id, err)
		}
	}

	candidates, err := a.resolver.ResolveIdentifier(ctx, id, LookupOptions{Persist: false})
	if err != nil {
		a.log.Debug("no items returned for identifier", zap.Stringer("identifier", id), zap.Error(err))
		return citation.Item{}, skip(ErrIdentifierNotResolved, "%s: %v", id, err)
	}
	if len(candidates) == 0 {
		a.log.Debug("no items returned for identifier", zap.Stringer("identifier", id))
		return citation.Item{}, skip(ErrIdentifierNotResolved, "%s: no candidates", id)
	}

	item, warnings, err := citation.ItemFromJSON(stripCandidate(candidates[0]))
	if err != nil {
		return citation.Item{}, skip(ErrIdentifierNotResolved, "%s: %v", id, err)
	}
	for _, w := range warnings {
		a.log.Warn("item field dropped", zap.Stringer("identifier", id), zap.String("warning", w))
	}
	return item, nil
}

// stripCandidate returns a copy of c without strippedFields.
func stripCandidate(c Candidate) map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, f := range strippedFields {
		delete(out, f)
	}
	return out
}
