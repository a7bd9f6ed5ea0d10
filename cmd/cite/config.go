package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  cite config                          # Show all config
  cite config pdf-root                 # Get specific value
  cite config pdf-root /path/to/pdfs   # Set value

Keys:
  pdf-root     Folder that reference PDF paths are relative to

Crossref settings (mailto, rate_limit, timeout, ...) live in the global
config file, ~/.config/cite/config.yml.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	PDFRoot          string `json:"pdf_root"`
	GlobalConfigPath string `json:"global_config_path"`
	Mailto           string `json:"mailto,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		resp := ConfigResponse{
			PDFRoot:          cfg.PDFRoot,
			GlobalConfigPath: config.GlobalConfigPath(),
			Mailto:           config.GetMailto(),
		}
		if humanOutput {
			fmt.Printf("pdf-root: %s\n", resp.PDFRoot)
			fmt.Printf("mailto:   %s\n", resp.Mailto)
			fmt.Printf("global:   %s\n", resp.GlobalConfigPath)
		} else {
			outputJSON(resp)
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)
	if normalizedKey != "pdf-root" {
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if len(args) == 1 {
		if humanOutput {
			fmt.Println(cfg.PDFRoot)
		} else {
			outputJSON(map[string]string{"pdf_root": cfg.PDFRoot})
		}
		return nil
	}

	value := config.ExpandPath(args[1])
	if err := config.ValidatePDFRoot(value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg.PDFRoot = value

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: normalizedKey, Value: value})
	}
	return nil
}

// normalizeKey converts key formats (pdf-root, pdf_root, PDF-Root) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
