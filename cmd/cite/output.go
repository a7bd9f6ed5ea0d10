package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/citegraph/internal/citation"
	"github.com/matsen/citegraph/internal/reference"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for list command

	ListTitleMaxLen     = 50 // Used in list command output
	CitationTitleMaxLen = 70 // Used in citations command output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort lists author surnames with "et al." past maxCount.
func formatAuthorsShort(authors []reference.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a.Surname())
	}
	return strings.Join(names, ", ")
}

// formatCreators lists cited-item creators with "et al." past maxCount.
func formatCreators(creators []citation.Creator, maxCount int) string {
	var names []string
	for i, c := range creators {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, c.DisplayName())
	}
	return strings.Join(names, ", ")
}

// formatItemHuman formats a cited item as a one-line summary.
func formatItemHuman(item citation.Item) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(string(item.Type))
	sb.WriteString("] ")
	title := item.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(truncateString(title, CitationTitleMaxLen))
	if creators := formatCreators(item.Creators, 2); creators != "" {
		sb.WriteString(" / ")
		sb.WriteString(creators)
	}
	if item.Date != "" {
		sb.WriteString(" (")
		sb.WriteString(item.Date)
		sb.WriteString(")")
	}
	if item.DOI != "" {
		sb.WriteString(" doi:")
		sb.WriteString(item.DOI)
	}
	return sb.String()
}
