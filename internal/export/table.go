// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// FormatTable writes the result set as a human-readable table.
func FormatTable(rs types.ResultSet, w io.Writer) {
	if len(rs.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-19s  %-52s  %-4s  %6s\n",
		"Rank", "Bibcode", "Title", "Year", "Cites")
	fmt.Fprintln(w, strings.Repeat("-", 93))

	for i, p := range rs.Papers {
		year := ""
		if p.Year != 0 {
			year = strconv.Itoa(p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-19s  %-52s  %-4s  %6d\n",
			i+1, p.Bibcode, truncate(p.Title, 52), year, p.CitationCount)
	}

	fmt.Fprintf(w, "\n%d of %d matching records\n", len(rs.Papers), rs.TotalFound)
}

// FormatStats writes a one-line summary of the result set.
func FormatStats(rs types.ResultSet, w io.Writer) {
	s := rs.Stats()
	if s.Papers == 0 {
		return
	}
	fmt.Fprintf(w, "%d records", s.Papers)
	if s.MinYear != 0 {
		fmt.Fprintf(w, ", years %d-%d", s.MinYear, s.MaxYear)
	}
	fmt.Fprintf(w, ", citations %d-%d (mean %.1f)\n",
		s.MinCitations, s.MaxCitations, s.AvgCitations)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
