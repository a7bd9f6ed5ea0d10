package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/reference"
)

var (
	listQuery string
	listLimit int
)

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Full-text search over titles and authors")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", DefaultListLimit, "Maximum number of references (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List references with their citation counts",
	Long: `List references in the library, optionally filtered by a full-text query.

Reads from the query database; run 'cite rebuild' after pulling changes.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// ListEntry is one reference in list output.
type ListEntry struct {
	ID        string             `json:"id"`
	DOI       string             `json:"doi,omitempty"`
	Title     string             `json:"title"`
	Authors   []reference.Author `json:"authors"`
	Year      int                `json:"year,omitempty"`
	Citations int                `json:"citations"`
}

// ListResult is the response for the list command.
type ListResult struct {
	References     []ListEntry `json:"references"`
	Total          int         `json:"total"`
	TotalCitations int         `json:"total_citations"`
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var refs []reference.Reference
	var err error
	if listQuery != "" {
		refs, err = db.Search(listQuery, listLimit)
	} else {
		refs, err = db.ListAll(listLimit)
	}
	if err != nil {
		exitWithError(ExitError, "listing references: %v", err)
	}

	counts, err := db.CitationCounts()
	if err != nil {
		exitWithError(ExitError, "counting citations: %v", err)
	}
	total, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting references: %v", err)
	}
	totalCitations, err := db.CountCitations()
	if err != nil {
		exitWithError(ExitError, "counting citations: %v", err)
	}

	result := ListResult{References: make([]ListEntry, 0, len(refs)), Total: total, TotalCitations: totalCitations}
	for _, ref := range refs {
		result.References = append(result.References, ListEntry{
			ID:        ref.ID,
			DOI:       ref.DOI,
			Title:     ref.Title,
			Authors:   ref.Authors,
			Year:      ref.Published.Year,
			Citations: counts[ref.ID],
		})
	}

	if humanOutput {
		for _, e := range result.References {
			fmt.Printf("%-20s %-*s %4d  %s\n", e.ID, ListTitleMaxLen, truncateString(e.Title, ListTitleMaxLen), e.Citations, formatAuthorsShort(e.Authors, 2))
		}
		fmt.Printf("\n%d of %d references, %d citations\n", len(result.References), result.Total, result.TotalCitations)
	} else {
		outputJSON(result)
	}
	return nil
}
