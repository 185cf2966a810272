// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders result sets to CSV, JSON, BibTeX, and CSL,
// and reads its own CSV output back for reprocessing.
// Implements: prd009-ads-search (R4);
//
//	docs/ARCHITECTURE § Output Formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// csvHeader is the column order of exported CSV files. ReadCSV requires
// exactly this header.
var csvHeader = []string{
	"bibcode", "title", "year", "pub", "abstract", "keyword",
	"citation_count", "BibTeX", "ADS URL",
}

// keywordSeparator joins multi-valued keywords into one CSV cell.
const keywordSeparator = "; "

// WriteCSV writes the result set as CSV. Every metadata field is
// carried in full so the file reloads without loss; a zero year becomes
// an empty cell.
func WriteCSV(rs types.ResultSet, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, p := range rs.Papers {
		year := ""
		if p.Year != 0 {
			year = strconv.Itoa(p.Year)
		}
		rec := []string{
			p.Bibcode,
			p.Title,
			year,
			p.Pub,
			p.Abstract,
			strings.Join(p.Keywords, keywordSeparator),
			strconv.Itoa(p.CitationCount),
			p.BibTeX,
			p.ADSURL(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing CSV record %s: %w", p.Bibcode, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
