// Package export renders cited items in BibTeX.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/citegraph/internal/citation"
)

var entryTypes = map[citation.ItemType]string{
	citation.TypeJournalArticle:  "article",
	citation.TypeBook:            "book",
	citation.TypeBookSection:     "incollection",
	citation.TypeConferencePaper: "inproceedings",
	citation.TypeReport:          "techreport",
	citation.TypeThesis:          "phdthesis",
	citation.TypePreprint:        "unpublished",
}

// ToBibTeX converts a cited item to a BibTeX entry with the given key.
func ToBibTeX(key string, item citation.Item) string {
	entryType := entryType(item.Type)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
		}
	}

	field("author", formatCreators(item.Creators, citation.RoleAuthor))
	field("editor", formatCreators(item.Creators, "editor"))
	field("title", escapeLatex(item.Title))

	// Container title
	switch entryType {
	case "article":
		field("journal", escapeLatex(item.PublicationTitle))
	case "incollection", "inproceedings":
		field("booktitle", escapeLatex(item.PublicationTitle))
	}

	field("year", Year(item.Date))
	field("volume", item.Volume)
	field("number", item.Issue)
	field("pages", strings.ReplaceAll(item.Pages, "-", "--"))
	field("publisher", escapeLatex(item.Publisher))
	field("doi", item.DOI)
	field("isbn", item.ISBN)
	field("url", item.URL)

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts items to BibTeX entries with unique keys.
func ToBibTeXList(items []citation.Item) string {
	used := make(map[string]int)
	entries := make([]string, 0, len(items))
	for _, item := range items {
		key := Key(item)
		used[key]++
		if n := used[key]; n > 1 {
			// Zhang2018, Zhang2018b, Zhang2018c, ...
			key += string(rune('a' + n - 1))
		}
		entries = append(entries, ToBibTeX(key, item))
	}
	return strings.Join(entries, "\n")
}

// Key returns a LastnameYEAR citation key for an item, e.g. "Zhang2018".
func Key(item citation.Item) string {
	key := "item"
	for _, c := range item.Creators {
		if name := keyPart(surname(c)); name != "" {
			key = name
			break
		}
	}
	return key + Year(item.Date)
}

// Year extracts a four-digit year from a date string, or "".
func Year(date string) string {
	for i := 0; i+4 <= len(date); i++ {
		s := date[i : i+4]
		if n, err := strconv.Atoi(s); err == nil && n > 999 {
			return s
		}
	}
	return ""
}

func entryType(t citation.ItemType) string {
	if e, ok := entryTypes[t]; ok {
		return e
	}
	return "misc"
}

func surname(c citation.Creator) string {
	if c.Last != "" {
		return c.Last
	}
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func keyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatCreators formats creators with role in BibTeX style: "Last, First and Last, First"
func formatCreators(creators []citation.Creator, role string) string {
	var formatted []string
	for _, c := range creators {
		if c.Role != role {
			continue
		}
		switch {
		case c.Last != "" && c.First != "":
			formatted = append(formatted, escapeLatex(c.Last+", "+c.First))
		case c.Last != "":
			formatted = append(formatted, escapeLatex(c.Last))
		case c.Name != "":
			// Braces keep an undivided name together.
			formatted = append(formatted, "{"+escapeLatex(c.Name)+"}")
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
