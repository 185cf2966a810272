package export

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style
// Language) format. The field names follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
// Implements: prd009-ads-search R4.7.
type CSLItem struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Title          string   `yaml:"title"`
	ContainerTitle string   `yaml:"container-title,omitempty"`
	Abstract       string   `yaml:"abstract,omitempty"`
	Issued         *CSLDate `yaml:"issued,omitempty"`
	Keyword        string   `yaml:"keyword,omitempty"`
	URL            string   `yaml:"URL,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes the result set as a CSL-YAML list.
func WriteCSL(rs types.ResultSet, w io.Writer) error {
	items := make([]CSLItem, len(rs.Papers))
	for i, p := range rs.Papers {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Paper to a CSLItem. ADS records carry
// publication year only, so issued has a single date part.
func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:             p.Bibcode,
		Type:           "article-journal",
		Title:          p.Title,
		ContainerTitle: p.Pub,
		Abstract:       p.Abstract,
		Keyword:        strings.Join(p.Keywords, ", "),
		URL:            p.ADSURL(),
	}
	if p.Year != 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{p.Year}}}
	}
	return item
}
