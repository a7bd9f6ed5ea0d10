// Package translate resolves persistent identifiers (DOI, ISBN) to
// candidate items using external metadata services.
package translate

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/enrich"
)

// Translator resolves one kind of identifier.
type Translator interface {
	Kind() enrich.IdentifierKind
	Translate(ctx context.Context, value string, schema *Schema) ([]enrich.Candidate, error)
}

// Persister saves the candidates of a lookup made with Persist set.
type Persister interface {
	Persist(ctx context.Context, id enrich.Identifier, candidates []enrich.Candidate) error
}

// Registry dispatches identifier lookups to translators. Lookups require
// the item schema, which is loaded by the first Wait.
type Registry struct {
	translators map[enrich.IdentifierKind]Translator
	persister   Persister
	log         *zap.Logger

	loadSchema func() (*Schema, error)
	schema     atomic.Pointer[Schema]
	gate       *enrich.OnceGate
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTranslator registers t for its identifier kind, replacing any
// translator already registered for that kind.
func WithTranslator(t Translator) RegistryOption {
	return func(r *Registry) {
		r.translators[t.Kind()] = t
	}
}

// WithPersister sets where lookups made with Persist are saved.
func WithPersister(p Persister) RegistryOption {
	return func(r *Registry) {
		r.persister = p
	}
}

// WithSchemaLoader replaces the built-in item schema.
func WithSchemaLoader(load func() (*Schema, error)) RegistryOption {
	return func(r *Registry) {
		r.loadSchema = load
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates a Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		translators: make(map[enrich.IdentifierKind]Translator),
		log:         zap.NewNop(),
		loadSchema:  DefaultSchema,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.gate = enrich.NewOnceGate(r.init)
	return r
}

func (r *Registry) init(ctx context.Context) error {
	s, err := r.loadSchema()
	if err != nil {
		r.log.Error("loading item schema", zap.Error(err))
		return err
	}
	r.schema.Store(s)
	r.log.Debug("item schema loaded", zap.Int("version", s.Version), zap.Int("item_types", len(s.ItemTypes)))
	return nil
}

// Wait implements enrich.Barrier. The schema is loaded once per Registry.
func (r *Registry) Wait(ctx context.Context) error {
	if !r.gate.Ready() {
		r.log.Debug("waiting for item schema")
	}
	return r.gate.Wait(ctx)
}

// ResolveIdentifier implements enrich.IdentifierResolver.
func (r *Registry) ResolveIdentifier(ctx context.Context, id enrich.Identifier, opts enrich.LookupOptions) ([]enrich.Candidate, error) {
	schema := r.schema.Load()
	if schema == nil {
		return nil, ErrNotReady
	}
	t, ok := r.translators[id.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTranslator, id.Kind)
	}

	candidates, err := t.Translate(ctx, id.Value, schema)
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", id, err)
	}
	r.log.Debug("identifier translated", zap.Stringer("identifier", id), zap.Int("candidates", len(candidates)))

	if opts.Persist && r.persister != nil && len(candidates) > 0 {
		if err := r.persister.Persist(ctx, id, candidates); err != nil {
			return nil, fmt.Errorf("saving %s: %w", id, err)
		}
	}
	return candidates, nil
}
