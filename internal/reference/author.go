package reference

import "strings"

// Author is a credited author. Organisations and unsplit names use Name.
type Author struct {
	First string `json:"first,omitempty"` // Given name(s)
	Last  string `json:"last,omitempty"`  // Family name
	Name  string `json:"name,omitempty"`
}

// DisplayName returns "First Last", or Name when the name is unsplit.
func (a Author) DisplayName() string {
	if a.Last == "" {
		return a.Name
	}
	if a.First == "" {
		return a.Last
	}
	return a.First + " " + a.Last
}

// Surname returns the family name, or the last word of an unsplit name.
func (a Author) Surname() string {
	if a.Last != "" {
		return a.Last
	}
	if fields := strings.Fields(a.Name); len(fields) > 0 {
		return strings.TrimSuffix(fields[len(fields)-1], ",")
	}
	return ""
}
