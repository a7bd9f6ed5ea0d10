// Package crossref provides a client for the Crossref REST API.
package crossref

import (
	"fmt"

	"github.com/matsen/citegraph/internal/citation"
)

// WorkResponse is the envelope returned by GET /works/{doi}.
type WorkResponse struct {
	Status      string `json:"status"`
	MessageType string `json:"message-type"`
	Message     *Work  `json:"message"`
}

// Work is the subset of a Crossref work record this package uses.
type Work struct {
	DOI            string                  `json:"DOI"`
	Type           string                  `json:"type"`
	Title          []string                `json:"title,omitempty"`
	ContainerTitle []string                `json:"container-title,omitempty"`
	Volume         string                  `json:"volume,omitempty"`
	Issue          string                  `json:"issue,omitempty"`
	Page           string                  `json:"page,omitempty"`
	Publisher      string                  `json:"publisher,omitempty"`
	ISBN           []string                `json:"ISBN,omitempty"`
	URL            string                  `json:"URL,omitempty"`
	Issued         DateParts               `json:"issued,omitempty"`
	Published      DateParts               `json:"published,omitempty"`
	Author         []Contributor           `json:"author,omitempty"`
	Editor         []Contributor           `json:"editor,omitempty"`
	Link           []Link                  `json:"link,omitempty"`
	ReferenceCount int                     `json:"reference-count,omitempty"`
	Reference      []citation.RawReference `json:"reference,omitempty"`
}

// Contributor is an author or editor of a work.
type Contributor struct {
	Given    string `json:"given,omitempty"`
	Family   string `json:"family,omitempty"`
	Name     string `json:"name,omitempty"` // Organisations carry only a name
	ORCID    string `json:"ORCID,omitempty"`
	Sequence string `json:"sequence,omitempty"`
}

// Link is a full-text link attached to a work.
type Link struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type,omitempty"`
}

// DateParts is Crossref's partial date, e.g. {"date-parts": [[2018, 5]]}.
type DateParts struct {
	Parts [][]int `json:"date-parts,omitempty"`
}

// String formats the date as YYYY, YYYY-MM or YYYY-MM-DD.
func (d DateParts) String() string {
	if len(d.Parts) == 0 || len(d.Parts[0]) == 0 || d.Parts[0][0] == 0 {
		return ""
	}
	p := d.Parts[0]
	switch len(p) {
	case 1:
		return fmt.Sprintf("%04d", p[0])
	case 2:
		return fmt.Sprintf("%04d-%02d", p[0], p[1])
	default:
		return fmt.Sprintf("%04d-%02d-%02d", p[0], p[1], p[2])
	}
}

// Date returns the best available publication date.
func (w *Work) Date() string {
	if s := w.Published.String(); s != "" {
		return s
	}
	return w.Issued.String()
}

// FirstTitle returns the first title, or "".
func (w *Work) FirstTitle() string {
	if len(w.Title) == 0 {
		return ""
	}
	return w.Title[0]
}

// FirstContainerTitle returns the first container (journal, book) title, or "".
func (w *Work) FirstContainerTitle() string {
	if len(w.ContainerTitle) == 0 {
		return ""
	}
	return w.ContainerTitle[0]
}
