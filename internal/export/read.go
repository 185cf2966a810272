// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// ReadCSV parses a file written by WriteCSV back into a result set. The
// header must match exactly; the ADS URL column is derived from the
// bibcode and is not read back.
func ReadCSV(r io.Reader) (types.ResultSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return types.ResultSet{}, fmt.Errorf("empty CSV: missing header")
	}
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return types.ResultSet{}, fmt.Errorf("unexpected CSV column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	var rs types.ResultSet
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.ResultSet{}, fmt.Errorf("reading CSV record %d: %w", n, err)
		}

		p := types.Paper{
			Bibcode:  rec[0],
			Title:    rec[1],
			Pub:      rec[3],
			Abstract: rec[4],
			BibTeX:   rec[7],
		}
		if rec[2] != "" {
			y, err := strconv.Atoi(rec[2])
			if err != nil {
				return types.ResultSet{}, fmt.Errorf("record %d: invalid year %q", n, rec[2])
			}
			p.Year = y
		}
		if rec[5] != "" {
			p.Keywords = strings.Split(rec[5], keywordSeparator)
		}
		if rec[6] != "" {
			c, err := strconv.Atoi(rec[6])
			if err != nil {
				return types.ResultSet{}, fmt.Errorf("record %d: invalid citation count %q", n, rec[6])
			}
			p.CitationCount = c
		}
		rs.Papers = append(rs.Papers, p)
	}

	rs.TotalFound = len(rs.Papers)
	return rs, nil
}
