package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/doi"
	"github.com/matsen/citegraph/internal/enrich"
	"github.com/matsen/citegraph/internal/reference"
	"github.com/matsen/citegraph/internal/translate"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <doi-or-isbn>...",
	Short: "Add references by DOI or ISBN",
	Long: `Add references to the library by looking them up on Crossref (DOI) or
Open Library (ISBN).

Identifiers may carry a https://doi.org/ or doi: prefix. References whose
DOI is already in the library are reported as skipped.

Examples:
  cite add 10.1093/sysbio/syy032
  cite add https://doi.org/10.1038/nature12373 978-0-262-03384-8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

// AddFailure is an identifier that could not be added.
type AddFailure struct {
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}

// AddResult is the response for the add command.
type AddResult struct {
	Added   []reference.Reference `json:"added"`
	Skipped []reference.Reference `json:"skipped"`
	Failed  []AddFailure          `json:"failed,omitempty"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	gcfg := mustLoadGlobalConfig()
	ctx := cmd.Context()
	log := zap.L()

	persister := &libraryPersister{lib: mustLibrary(repoRoot)}
	registry := newRegistry(gcfg, newCrossrefClient(gcfg), persister)
	if err := registry.Wait(ctx); err != nil {
		exitWithError(ExitError, "loading item schema: %v", err)
	}

	result := AddResult{Added: []reference.Reference{}, Skipped: []reference.Reference{}}
	lastCode := ExitSuccess
	for _, arg := range args {
		id, ok := parseIdentifier(arg)
		if !ok {
			result.Failed = append(result.Failed, AddFailure{Identifier: arg, Error: "not a DOI or ISBN"})
			lastCode = ExitDataError
			continue
		}
		if _, err := registry.ResolveIdentifier(ctx, id, enrich.LookupOptions{Persist: true}); err != nil {
			log.Warn("lookup failed", zap.Stringer("identifier", id), zap.Error(err))
			result.Failed = append(result.Failed, AddFailure{Identifier: arg, Error: err.Error()})
			lastCode = exitCodeFor(err)
		}
	}
	result.Added = append(result.Added, persister.added...)
	result.Skipped = append(result.Skipped, persister.skipped...)

	if len(result.Added) > 0 {
		refreshCache(ctx, repoRoot)
	}

	if humanOutput {
		for _, ref := range result.Added {
			fmt.Printf("Added: %s  %s\n", ref.ID, truncateString(ref.Title, ListTitleMaxLen))
		}
		for _, ref := range result.Skipped {
			fmt.Printf("Skipped (already present): %s\n", ref.DOI)
		}
		for _, f := range result.Failed {
			fmt.Printf("Failed: %s: %s\n", f.Identifier, f.Error)
		}
	} else {
		outputJSON(result)
	}

	if len(result.Added) == 0 && len(result.Skipped) == 0 && lastCode != ExitSuccess {
		os.Exit(lastCode)
	}
	return nil
}

// parseIdentifier recognises a DOI or an ISBN.
func parseIdentifier(s string) (enrich.Identifier, bool) {
	if d := doi.Clean(s); d != "" {
		return enrich.Identifier{Kind: enrich.KindDOI, Value: d}, true
	}
	if isbn := translate.CleanISBN(s); isbn != "" {
		return enrich.Identifier{Kind: enrich.KindISBN, Value: isbn}, true
	}
	return enrich.Identifier{}, false
}
