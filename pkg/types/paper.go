// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ads-finder pipeline.
// Implements: prd009-ads-search (Paper, R4.1);
//
//	prd010-paper-library (LibraryConfig).
package types

// adsAbstractBase is the public landing-page prefix for a bibcode.
const adsAbstractBase = "https://ui.adsabs.harvard.edu/abs/"

// Paper holds the bibliographic metadata for one ADS record. A Paper is
// built from a single element of the API's response.docs array and is
// not modified afterwards, except for BibTeX enrichment.
type Paper struct {
	// Bibcode is the ADS canonical identifier (e.g. "2021ApJ...919..136K").
	Bibcode string `json:"bibcode" yaml:"bibcode"`

	// Title is the paper title. ADS returns it as a one-element array;
	// only the first element is kept.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Year is the publication year, or zero when the record carries none.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Pub is the publication venue (journal or conference name).
	Pub string `json:"pub,omitempty" yaml:"pub,omitempty"`

	// Abstract is the abstract text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Keywords lists the record's subject keywords in source order.
	Keywords []string `json:"keyword,omitempty" yaml:"keyword,omitempty"`

	// CitationCount is the number of citations ADS has recorded.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// BibTeX is the citation entry from the export endpoint. Empty
	// unless BibTeX enrichment was requested.
	BibTeX string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`
}

// ADSURL returns the public abstract page for the record.
func (p Paper) ADSURL() string {
	return adsAbstractBase + p.Bibcode + "/abstract"
}
