package citation

import (
	"errors"
	"fmt"
	"sort"
)

// ItemType is the bibliographic type of a cited item.
type ItemType string

const (
	TypeJournalArticle  ItemType = "journalArticle"
	TypeBook            ItemType = "book"
	TypeBookSection     ItemType = "bookSection"
	TypeConferencePaper ItemType = "conferencePaper"
	TypeReport          ItemType = "report"
	TypeThesis          ItemType = "thesis"
	TypePreprint        ItemType = "preprint"
	TypeDataset         ItemType = "dataset"
	TypeWebpage         ItemType = "webpage"
	TypeDocument        ItemType = "document"
)

// RoleAuthor is the creator role used for reference authors.
const RoleAuthor = "author"

// Item is a structured bibliographic record for a cited work.
// Absent fields are left empty and omitted on encoding.
type Item struct {
	Type     ItemType  `json:"itemType"`
	Title    string    `json:"title,omitempty"`
	Date     string    `json:"date,omitempty"`
	Volume   string    `json:"volume,omitempty"`
	Issue    string    `json:"issue,omitempty"`
	Pages    string    `json:"pages,omitempty"`
	Creators []Creator `json:"creators,omitempty"`

	// Populated by identifier lookups only.
	PublicationTitle string `json:"publicationTitle,omitempty"`
	Publisher        string `json:"publisher,omitempty"`
	DOI              string `json:"DOI,omitempty"`
	ISBN             string `json:"ISBN,omitempty"`
	URL              string `json:"url,omitempty"`
}

// Creator is a person credited on an item. Name holds a single
// undifferentiated display name; First/Last are set when the source
// splits names.
type Creator struct {
	Role  string `json:"creatorType"`
	Name  string `json:"name,omitempty"`
	First string `json:"firstName,omitempty"`
	Last  string `json:"lastName,omitempty"`
}

// DisplayName returns the name to show for the creator.
func (c Creator) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.First == "" {
		return c.Last
	}
	if c.Last == "" {
		return c.First
	}
	return c.First + " " + c.Last
}

// ErrMissingItemType is returned by ItemFromJSON when itemType is absent or empty.
var ErrMissingItemType = errors.New("item JSON has no itemType")

// ItemFromJSON builds an Item from translator item JSON. Keys that have no
// Item field are reported as warnings, in sorted order.
func ItemFromJSON(data map[string]any) (Item, []string, error) {
	var item Item
	var warnings []string

	typ, ok := stringValue(data["itemType"])
	if !ok || typ == "" {
		return Item{}, nil, ErrMissingItemType
	}
	item.Type = ItemType(typ)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := data[key]
		var dst *string
		switch key {
		case "itemType":
			continue
		case "creators":
			creators, warn := creatorsFromJSON(value)
			item.Creators = creators
			warnings = append(warnings, warn...)
			continue
		case "title":
			dst = &item.Title
		case "date":
			dst = &item.Date
		case "volume":
			dst = &item.Volume
		case "issue":
			dst = &item.Issue
		case "pages":
			dst = &item.Pages
		case "publicationTitle":
			dst = &item.PublicationTitle
		case "publisher":
			dst = &item.Publisher
		case "DOI":
			dst = &item.DOI
		case "ISBN":
			dst = &item.ISBN
		case "url":
			dst = &item.URL
		default:
			warnings = append(warnings, fmt.Sprintf("unknown field %q for item type %s", key, typ))
			continue
		}
		if s, ok := stringValue(value); ok {
			*dst = s
		} else if value != nil {
			warnings = append(warnings, fmt.Sprintf("field %q has non-scalar value", key))
		}
	}

	return item, warnings, nil
}

func creatorsFromJSON(value any) ([]Creator, []string) {
	list, ok := value.([]any)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return nil, []string{"creators is not a list"}
	}

	var creators []Creator
	var warnings []string
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("creator %d is not an object", i))
			continue
		}
		var c Creator
		c.Role, _ = stringValue(m["creatorType"])
		c.Name, _ = stringValue(m["name"])
		c.First, _ = stringValue(m["firstName"])
		c.Last, _ = stringValue(m["lastName"])
		if c.Role == "" {
			c.Role = RoleAuthor
		}
		if c.DisplayName() == "" {
			warnings = append(warnings, fmt.Sprintf("creator %d has no name", i))
			continue
		}
		creators = append(creators, c)
	}
	return creators, warnings
}
