// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ResultSet accumulates the records retrieved for one search. Papers are
// ordered by page offset ascending, then by in-page order, and are
// deduplicated by bibcode (first occurrence wins).
type ResultSet struct {
	// Papers holds the records in final output order.
	Papers []Paper `json:"papers" yaml:"papers"`

	// TotalFound is the server-reported number of matching records. It
	// may exceed len(Papers) when a result cap was applied.
	TotalFound int `json:"total_found" yaml:"total_found"`

	// Query is the ADS query string that produced the set.
	Query string `json:"query" yaml:"query"`

	// Retrieved is when the set was fetched.
	Retrieved time.Time `json:"retrieved" yaml:"retrieved"`
}

// Stats summarizes the citation and year spread of a result set.
type Stats struct {
	Papers       int     `json:"papers" yaml:"papers"`
	AvgCitations float64 `json:"avg_citations" yaml:"avg_citations"`
	MinCitations int     `json:"min_citations" yaml:"min_citations"`
	MaxCitations int     `json:"max_citations" yaml:"max_citations"`

	// MinYear and MaxYear span the publication years present in the
	// set. Records with a zero year are excluded; both are zero when
	// no record carries a year.
	MinYear int `json:"min_year" yaml:"min_year"`
	MaxYear int `json:"max_year" yaml:"max_year"`
}

// Stats computes summary statistics over the set.
func (rs ResultSet) Stats() Stats {
	st := Stats{Papers: len(rs.Papers)}
	if len(rs.Papers) == 0 {
		return st
	}

	var citationSum int
	st.MinCitations = rs.Papers[0].CitationCount
	for _, p := range rs.Papers {
		citationSum += p.CitationCount
		if p.CitationCount < st.MinCitations {
			st.MinCitations = p.CitationCount
		}
		if p.CitationCount > st.MaxCitations {
			st.MaxCitations = p.CitationCount
		}

		if p.Year == 0 {
			continue
		}
		if st.MinYear == 0 || p.Year < st.MinYear {
			st.MinYear = p.Year
		}
		if p.Year > st.MaxYear {
			st.MaxYear = p.Year
		}
	}
	st.AvgCitations = float64(citationSum) / float64(len(rs.Papers))

	return st
}
