// Package doi cleans and recognises Digital Object Identifiers.
package doi

import (
	"regexp"
	"strings"
)

// pattern matches 10.XXXX/... where XXXX is 4-9 digits.
var pattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

var prefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// Clean normalizes a DOI for lookups and comparison: surrounding
// whitespace, resolver URL and "doi:" prefixes are removed and the result
// is lowercased. Returns "" if what remains is not a DOI.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	s = strings.ToLower(s)
	if !Valid(s) {
		return ""
	}
	return s
}

// Valid performs basic structural validation on an already-clean DOI.
func Valid(s string) bool {
	if len(s) < 10 || !strings.HasPrefix(s, "10.") {
		return false
	}
	slash := strings.Index(s, "/")
	return slash != -1 && slash < len(s)-1 && !strings.ContainsAny(s, " \t\n")
}

// Find returns the first DOI appearing in free text, or "".
func Find(text string) string {
	for _, match := range pattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if Valid(match) {
			return strings.ToLower(match)
		}
	}
	return ""
}
