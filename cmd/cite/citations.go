package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/doi"
	"github.com/matsen/citegraph/internal/export"
)

var (
	citationsOfDOI  string
	citationsBibTeX bool
)

func init() {
	citationsCmd.Flags().StringVar(&citationsOfDOI, "doi", "", "List citations pointing at this DOI instead")
	citationsCmd.Flags().BoolVar(&citationsBibTeX, "bibtex", false, "Print the cited items as BibTeX")
	rootCmd.AddCommand(citationsCmd)
}

var citationsCmd = &cobra.Command{
	Use:   "citations [id]",
	Short: "Show the citations of a reference",
	Long: `Show the works a reference cites, in reference-list order.

With --doi, show every citation in the library that points at the given DOI.
With --bibtex, print the cited items as BibTeX entries.

Examples:
  cite citations Zhang2018
  cite citations --doi 10.1093/sysbio/syy032
  cite citations Zhang2018 --bibtex > zhang2018-refs.bib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCitations,
}

// CitationsResult is the response for the citations command.
type CitationsResult struct {
	SourceID  string              `json:"source_id,omitempty"`
	DOI       string              `json:"doi,omitempty"`
	Citations []citation.Citation `json:"citations"`
}

func runCitations(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (citationsOfDOI == "") {
		exitWithError(ExitError, "give either a reference id or --doi")
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var result CitationsResult
	var err error
	if citationsOfDOI != "" {
		clean := doi.Clean(citationsOfDOI)
		if clean == "" {
			exitWithError(ExitDataError, "invalid DOI: %s", citationsOfDOI)
		}
		result.DOI = clean
		result.Citations, err = db.CitationsOfDOI(clean)
	} else {
		id := args[0]
		ref, gerr := db.GetByID(id)
		if gerr != nil {
			exitWithError(ExitError, "looking up %s: %v", id, gerr)
		}
		if ref == nil {
			exitWithError(ExitNotFound, "reference not found: %s", id)
		}
		result.SourceID = id
		result.Citations, err = db.CitationsBySource(id)
	}
	if err != nil {
		exitWithError(ExitError, "querying citations: %v", err)
	}
	if result.Citations == nil {
		result.Citations = []citation.Citation{}
	}

	switch {
	case citationsBibTeX:
		items := make([]citation.Item, len(result.Citations))
		for i, c := range result.Citations {
			items[i] = c.Item
		}
		fmt.Print(export.ToBibTeXList(items))
	case humanOutput && len(result.Citations) == 0:
		fmt.Println("No citations")
	case humanOutput && result.DOI != "":
		fmt.Print(formatCitingSources(result.Citations))
	case humanOutput:
		for i, c := range result.Citations {
			fmt.Printf("%3d. %s\n", i+1, formatItemHuman(c.Item))
		}
	default:
		outputJSON(result)
	}
	return nil
}

// formatCitingSources lists citations under the source record that makes
// them, sources sorted by ID.
func formatCitingSources(cs []citation.Citation) string {
	bySource := citation.GroupBySource(cs)
	ids := make([]string, 0, len(bySource))
	for id := range bySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s (%d)\n", id, len(bySource[id]))
		for _, c := range bySource[id] {
			fmt.Fprintf(&b, "  - %s\n", formatItemHuman(c.Item))
		}
	}
	return b.String()
}
