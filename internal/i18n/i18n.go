// Package i18n renders enrichment notifications in the user's language.
package i18n

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/matsen/citegraph/internal/enrich"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		enrich.MsgNoDOITitle:             "No DOI",
		enrich.MsgNoDOIMessage:           "None of the selected records has a DOI.",
		enrich.MsgLoading:                "Fetching references from Crossref...",
		enrich.MsgErrorGettingReferences: "Could not get references from Crossref.",
		enrich.MsgNoReferences:           "Crossref has no references for the selected records.",
		enrich.MsgConfirmTitle:           "Add citations",
		enrich.MsgConfirmMessage:         "%[1]d of %[2]d selected records have references (%[3]d in total). Add them as citations?",
		enrich.MsgParsing:                "Parsing references...",
		enrich.MsgParsingProgress:        "Parsing references (%d/%d)...",
		enrich.MsgErrorParsingReferences: "Could not parse references.",
		enrich.MsgErrorSavingCitations:   "Could not save citations.",
		enrich.MsgDone:                   "Citations added.",
	},
	language.German: {
		enrich.MsgNoDOITitle:             "Keine DOI",
		enrich.MsgNoDOIMessage:           "Keiner der ausgewählten Einträge hat eine DOI.",
		enrich.MsgLoading:                "Literaturangaben werden von Crossref abgerufen...",
		enrich.MsgErrorGettingReferences: "Literaturangaben konnten nicht von Crossref abgerufen werden.",
		enrich.MsgNoReferences:           "Crossref kennt keine Literaturangaben für die ausgewählten Einträge.",
		enrich.MsgConfirmTitle:           "Zitationen hinzufügen",
		enrich.MsgConfirmMessage:         "%[1]d von %[2]d ausgewählten Einträgen haben Literaturangaben (insgesamt %[3]d). Als Zitationen hinzufügen?",
		enrich.MsgParsing:                "Literaturangaben werden verarbeitet...",
		enrich.MsgParsingProgress:        "Literaturangaben werden verarbeitet (%d/%d)...",
		enrich.MsgErrorParsingReferences: "Literaturangaben konnten nicht verarbeitet werden.",
		enrich.MsgErrorSavingCitations:   "Zitationen konnten nicht gespeichert werden.",
		enrich.MsgDone:                   "Zitationen hinzugefügt.",
	},
	language.French: {
		enrich.MsgNoDOITitle:             "Aucun DOI",
		enrich.MsgNoDOIMessage:           "Aucune des notices sélectionnées n'a de DOI.",
		enrich.MsgLoading:                "Récupération des références depuis Crossref...",
		enrich.MsgErrorGettingReferences: "Impossible de récupérer les références depuis Crossref.",
		enrich.MsgNoReferences:           "Crossref n'a aucune référence pour les notices sélectionnées.",
		enrich.MsgConfirmTitle:           "Ajouter les citations",
		enrich.MsgConfirmMessage:         "%[1]d notices sur %[2]d ont des références (%[3]d au total). Les ajouter comme citations ?",
		enrich.MsgParsing:                "Analyse des références...",
		enrich.MsgParsingProgress:        "Analyse des références (%d/%d)...",
		enrich.MsgErrorParsingReferences: "Impossible d'analyser les références.",
		enrich.MsgErrorSavingCitations:   "Impossible d'enregistrer les citations.",
		enrich.MsgDone:                   "Citations ajoutées.",
	},
}

var (
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
)

func init() {
	cat = catalog.NewBuilder(catalog.Fallback(language.English))
	// English first so the matcher falls back to it.
	supported = []language.Tag{language.English, language.German, language.French}
	for _, tag := range supported {
		for key, msg := range messages[tag] {
			if err := cat.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: %s %s: %v", tag, key, err))
			}
		}
	}
	matcher = language.NewMatcher(supported)
}

// Localizer implements enrich.Localizer on a message catalog.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the best supported match of the given
// language preferences, e.g. "de-CH" or "fr,en;q=0.8".
func New(prefs ...string) *Localizer {
	tag, _ := language.MatchStrings(matcher, prefs...)
	base, _ := tag.Base()
	tag, _ = language.Compose(base)
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// FromEnv picks the language from LC_ALL, LC_MESSAGES or LANG.
func FromEnv() *Localizer {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			return New(posixLocale(v))
		}
	}
	return New()
}

// Tag returns the language messages are rendered in.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Text renders key with args. Unknown keys are returned with their
// arguments appended.
func (l *Localizer) Text(key string, args ...any) string {
	if _, ok := messages[language.English][key]; !ok {
		if len(args) == 0 {
			return key
		}
		return key + " " + fmt.Sprint(args...)
	}
	return l.printer.Sprintf(key, args...)
}

// posixLocale turns "de_DE.UTF-8" into "de-DE".
func posixLocale(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return "en"
	}
	return strings.ReplaceAll(s, "_", "-")
}
