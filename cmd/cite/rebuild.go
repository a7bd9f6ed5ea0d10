package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL source files.

Use this after pulling changes from git or if the database becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string `json:"status"`
	References int    `json:"references"`
	Citations  int    `json:"citations"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	refsCount, citationsCount, err := rebuildCache(cmd.Context(), repoRoot)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d references and %d citations\n", refsCount, citationsCount)
	} else {
		outputJSON(RebuildResult{
			Status:     "rebuilt",
			References: refsCount,
			Citations:  citationsCount,
		})
	}
	return nil
}

// rebuildCache reloads the query database from the JSONL files.
func rebuildCache(ctx context.Context, repoRoot string) (refs, citations int, err error) {
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	refs, citations, err = db.RebuildFromJSONL(ctx, config.RefsPath(repoRoot), config.CitationsPath(repoRoot))
	if err != nil {
		return 0, 0, err
	}
	zap.L().Debug("query database rebuilt", zap.Int("references", refs), zap.Int("citations", citations))
	return refs, citations, nil
}

// refreshCache rebuilds the query database after a write. A failure only
// leaves the cache stale, so it is logged rather than returned.
func refreshCache(ctx context.Context, repoRoot string) {
	if _, _, err := rebuildCache(ctx, repoRoot); err != nil {
		zap.L().Warn("query database is stale; run 'cite rebuild'", zap.Error(err))
	}
}
