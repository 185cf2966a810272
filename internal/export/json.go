// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// jsonDocument is the JSON export shape: a metadata block describing
// the search followed by the full paper list.
type jsonDocument struct {
	Metadata jsonMetadata `json:"metadata"`
	Papers   []jsonPaper  `json:"papers"`
}

type jsonMetadata struct {
	Query       string    `json:"query"`
	TotalFound  int       `json:"total_found"`
	Returned    int       `json:"returned"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// jsonPaper adds the derived landing-page URL to the serialized paper.
type jsonPaper struct {
	types.Paper
	URL string `json:"url"`
}

// WriteJSON writes the result set as indented JSON with a metadata
// header block.
func WriteJSON(rs types.ResultSet, w io.Writer) error {
	doc := jsonDocument{
		Metadata: jsonMetadata{
			Query:       rs.Query,
			TotalFound:  rs.TotalFound,
			Returned:    len(rs.Papers),
			RetrievedAt: rs.Retrieved,
		},
		Papers: make([]jsonPaper, len(rs.Papers)),
	}
	for i, p := range rs.Papers {
		doc.Papers[i] = jsonPaper{Paper: p, URL: p.ADSURL()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
