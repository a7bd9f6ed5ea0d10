package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/doi"
	"github.com/matsen/citegraph/internal/enrich"
	"github.com/matsen/citegraph/internal/i18n"
	"github.com/matsen/citegraph/internal/pdf"
	"github.com/matsen/citegraph/internal/progress"
	"github.com/matsen/citegraph/internal/reference"
	"github.com/matsen/citegraph/internal/storage"
)

var (
	enrichAll         bool
	enrichYes         bool
	enrichDiscoverDOI bool
)

func init() {
	enrichCmd.Flags().BoolVar(&enrichAll, "all", false, "Enrich every reference in the library")
	enrichCmd.Flags().BoolVarP(&enrichYes, "yes", "y", false, "Add citations without asking for confirmation")
	enrichCmd.Flags().BoolVar(&enrichDiscoverDOI, "discover-doi", false, "Look for a DOI in the PDF of references that lack one")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [id...]",
	Short: "Add Crossref reference lists as citations",
	Long: `Fetch the cited-reference list of each selected reference from Crossref,
resolve every entry to a structured item and add the results as citations.

Entries with a DOI or ISBN are looked up; other structured entries are
mapped field by field; unstructured free-text entries are skipped. All
citations are saved in one write, or none are.

Without --yes, JSON output declines the confirmation and reports what would
be added; --human asks interactively.

Examples:
  cite enrich Zhang2018 Cormen2009
  cite enrich --all --yes
  cite enrich --all --discover-doi --human`,
	RunE: runEnrich,
}

// DiscoveredDOI records a DOI found in a reference's PDF.
type DiscoveredDOI struct {
	ID  string `json:"id"`
	DOI string `json:"doi"`
}

// EnrichResponse is the response for the enrich command.
type EnrichResponse struct {
	*enrich.Result
	Reason     string           `json:"reason,omitempty"`
	Discovered []DiscoveredDOI  `json:"discovered,omitempty"`
	Events     []progress.Event `json:"events,omitempty"`
}

func runEnrich(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	gcfg := mustLoadGlobalConfig()
	log := zap.L()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	lib := mustLibrary(repoRoot)
	refs, err := lib.References()
	if err != nil {
		exitWithError(ExitDataError, "reading references: %v", err)
	}
	selected, err := selectSources(refs, args, enrichAll)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	var discovered []DiscoveredDOI
	if enrichDiscoverDOI {
		discovered = discoverDOIs(lib, cfg, selected, log)
	}

	client := newCrossrefClient(gcfg)
	registry := newRegistry(gcfg, client, nil)
	adapter := enrich.NewIdentifierAdapter(registry, registry, log.Named("adapter"))

	var notifier enrich.Notifier
	recorder := progress.NewRecorder(enrichYes, log)
	if humanOutput {
		notifier = progress.NewTerminal(enrichYes)
	} else {
		notifier = recorder
	}

	orch := enrich.NewOrchestrator(client, enrich.NewResolver(adapter), lib, notifier,
		enrich.WithLogger(log.Named("enrich")),
		enrich.WithLocalizer(i18n.FromEnv()),
		enrich.WithFetchConcurrency(gcfg.FetchConcurrency),
		enrich.WithParseConcurrency(gcfg.ParseConcurrency),
	)

	res, err := orch.Enrich(ctx, toSources(selected))
	if res.State == enrich.StateDone {
		refreshCache(context.WithoutCancel(ctx), repoRoot)
	}

	resp := EnrichResponse{Result: res, Discovered: discovered, Events: recorder.Events()}
	if res.Reason != nil {
		resp.Reason = res.Reason.Error()
	}
	if humanOutput {
		printEnrichHuman(resp)
	} else {
		outputJSON(resp)
	}

	if err != nil {
		os.Exit(exitCodeFor(err))
	}
	if errors.Is(res.Reason, enrich.ErrNoReferences) && res.FetchFailures == res.Eligible {
		os.Exit(ExitAPIError)
	}
	return nil
}

// selectSources picks the references named by ids, or all of them.
func selectSources(refs []reference.Reference, ids []string, all bool) ([]reference.Reference, error) {
	if all {
		if len(ids) > 0 {
			return nil, errors.New("give reference ids or --all, not both")
		}
		return refs, nil
	}
	if len(ids) == 0 {
		return nil, errors.New("no references selected (give ids or --all)")
	}

	selected := make([]reference.Reference, 0, len(ids))
	for _, id := range ids {
		idx, ok := storage.FindByID(refs, id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrUnknownSource, id)
		}
		selected = append(selected, refs[idx])
	}
	return selected, nil
}

// toSources turns references into enrichment sources with clean DOIs.
// A DOI that does not parse counts as absent.
func toSources(refs []reference.Reference) []enrich.Source {
	sources := make([]enrich.Source, len(refs))
	for i, ref := range refs {
		sources[i] = enrich.Source{ID: ref.ID, DOI: doi.Clean(ref.DOI)}
	}
	return sources
}

// discoverDOIs fills in missing DOIs from reference PDFs and saves them.
// selected is updated in place.
func discoverDOIs(lib *storage.Library, cfg *config.Config, selected []reference.Reference, log *zap.Logger) []DiscoveredDOI {
	var found []DiscoveredDOI
	for i, ref := range selected {
		if ref.DOI != "" {
			continue
		}
		path := cfg.PDFPath(ref.PDFPath)
		if path == "" {
			continue
		}
		d, err := pdf.DiscoverDOI(path)
		if err != nil {
			log.Warn("reading PDF", zap.String("id", ref.ID), zap.String("path", path), zap.Error(err))
			continue
		}
		if d == "" {
			log.Debug("no DOI in PDF", zap.String("id", ref.ID))
			continue
		}
		ref.DOI = d
		if err := lib.UpdateReference(ref); err != nil {
			log.Warn("saving discovered DOI", zap.String("id", ref.ID), zap.Error(err))
			continue
		}
		selected[i] = ref
		found = append(found, DiscoveredDOI{ID: ref.ID, DOI: d})
	}
	return found
}

func printEnrichHuman(resp EnrichResponse) {
	for _, d := range resp.Discovered {
		fmt.Printf("Found DOI %s for %s\n", d.DOI, d.ID)
	}

	res := resp.Result
	fmt.Println()
	switch res.State {
	case enrich.StateDone:
		fmt.Printf("Added %d citations to %d of %d references\n", res.CitationsAdded, res.RecordsUpdated, res.Total)
	default:
		fmt.Printf("No citations added: %s\n", resp.Reason)
	}
	if res.FetchFailures > 0 {
		fmt.Printf("Crossref lookups failed for %d references\n", res.FetchFailures)
	}
	if n := res.Skipped(); n > 0 && res.State == enrich.StateDone {
		fmt.Printf("Skipped %d of %d reference entries:\n", n, res.Found())
		for _, out := range res.Outcomes {
			for _, sk := range out.Skips {
				key := sk.Key
				if key == "" {
					key = fmt.Sprintf("#%d", sk.Index+1)
				}
				fmt.Printf("  %s %s: %s\n", out.SourceID, key, sk.Reason)
			}
		}
	}
}
