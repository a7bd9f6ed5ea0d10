package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/crossref"
	"github.com/matsen/citegraph/internal/enrich"
	"github.com/matsen/citegraph/internal/reference"
	"github.com/matsen/citegraph/internal/storage"
	"github.com/matsen/citegraph/internal/translate"
)

// newCrossrefClient builds the Crossref client from the global config.
func newCrossrefClient(gcfg *config.GlobalConfig) *crossref.Client {
	opts := []crossref.ClientOption{
		crossref.WithMailto(config.GetMailto()),
		crossref.WithClientID(gcfg.ClientID),
		crossref.WithTimeout(gcfg.Timeout),
	}
	if gcfg.CrossrefURL != "" {
		opts = append(opts, crossref.WithBaseURL(gcfg.CrossrefURL))
	}
	if gcfg.RateLimit > 0 {
		opts = append(opts, crossref.WithRateLimit(gcfg.RateLimit))
	}
	return crossref.NewClient(opts...)
}

// newRegistry builds the identifier registry with DOI and ISBN translators.
// persister may be nil.
func newRegistry(gcfg *config.GlobalConfig, works *crossref.Client, persister translate.Persister) *translate.Registry {
	olOpts := []translate.OpenLibraryOption{translate.WithUserAgent(works.UserAgent())}
	if gcfg.OpenLibraryURL != "" {
		olOpts = append(olOpts, translate.WithOpenLibraryURL(gcfg.OpenLibraryURL))
	}
	if gcfg.Timeout > 0 {
		olOpts = append(olOpts, translate.WithOpenLibraryHTTPClient(&http.Client{Timeout: gcfg.Timeout}))
	}

	opts := []translate.RegistryOption{
		translate.WithTranslator(translate.NewDOITranslator(works)),
		translate.WithTranslator(translate.NewISBNTranslator(translate.NewOpenLibrary(olOpts...))),
		translate.WithRegistryLogger(zap.L().Named("translate")),
	}
	if persister != nil {
		opts = append(opts, translate.WithPersister(persister))
	}
	return translate.NewRegistry(opts...)
}

// libraryPersister stores the best candidate of a lookup as a new source
// record.
type libraryPersister struct {
	lib     *storage.Library
	added   []reference.Reference
	skipped []reference.Reference
}

func (p *libraryPersister) Persist(ctx context.Context, id enrich.Identifier, candidates []enrich.Candidate) error {
	item, warnings, err := citation.ItemFromJSON(map[string]any(candidates[0]))
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		zap.L().Debug("item conversion warnings", zap.Stringer("identifier", id), zap.Strings("warnings", warnings))
	}

	sourceType := "crossref"
	if id.Kind == enrich.KindISBN {
		sourceType = "openlibrary"
		if item.ISBN == "" {
			item.ISBN = id.Value
		}
	}
	ref := reference.FromItem(item, sourceType)
	if ref.Title == "" {
		return errors.New("item has no title")
	}

	added, skipped, err := p.lib.AddReferences(ctx, []reference.Reference{ref})
	if err != nil {
		return fmt.Errorf("adding reference: %w", err)
	}
	p.added = append(p.added, added...)
	p.skipped = append(p.skipped, skipped...)
	return nil
}

// exitCodeFor maps lookup and enrichment errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case crossref.IsNotFound(err), errors.Is(err, translate.ErrBookNotFound), errors.Is(err, storage.ErrUnknownSource):
		return ExitNotFound
	case crossref.IsRateLimited(err):
		return ExitRateLimited
	case crossref.IsUnavailable(err), errors.Is(err, enrich.ErrProviderUnavailable):
		return ExitAPIError
	case errors.Is(err, enrich.ErrNoEligibleSourceRecords):
		return ExitDataError
	default:
		var invalid *translate.InvalidIdentifierError
		if errors.As(err, &invalid) {
			return ExitDataError
		}
		return ExitError
	}
}
