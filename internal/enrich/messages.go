package enrich

import (
	"fmt"
	"strings"
)

// Message keys passed to the Localizer.
const (
	MsgNoDOITitle             = "citegraph.crossref.get-citations.no-doi-title"
	MsgNoDOIMessage           = "citegraph.crossref.get-citations.no-doi-message"
	MsgLoading                = "citegraph.crossref.get-citations.loading"
	MsgErrorGettingReferences = "citegraph.crossref.get-citations.error-getting-references"
	MsgNoReferences           = "citegraph.crossref.get-citations.no-references"
	MsgConfirmTitle           = "citegraph.crossref.get-citations.confirm-title"
	MsgConfirmMessage         = "citegraph.crossref.get-citations.confirm-message"
	MsgParsing                = "citegraph.crossref.get-citations.parsing"
	MsgParsingProgress        = "citegraph.crossref.get-citations.parsing-progress"
	MsgErrorParsingReferences = "citegraph.crossref.get-citations.error-parsing-references"
	MsgErrorSavingCitations   = "citegraph.crossref.get-citations.error-saving-citations"
	MsgDone                   = "citegraph.crossref.get-citations.done"
)

// keyLocalizer renders the bare key followed by its arguments. Used when
// no Localizer is configured.
type keyLocalizer struct{}

func (keyLocalizer) Text(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return key + " [" + strings.Join(parts, ", ") + "]"
}
