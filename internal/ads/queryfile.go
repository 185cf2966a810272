// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ads

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results.
// The researcher can save a search to a file and re-export or rerun it
// later without spending API quota on the same query again.
// Implements: prd009-ads-search R1.6, R4.6.
type QueryFile struct {
	Query   QueryParams     `yaml:"query"`
	Config  QueryFileConfig `yaml:"config"`
	Results []types.Paper   `yaml:"results"`
	Summary QuerySummary    `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Terms        []string `yaml:"terms"`
	Fields       []string `yaml:"fields,omitempty"`
	Author       string   `yaml:"author,omitempty"`
	YearFrom     int      `yaml:"year_from,omitempty"`
	YearTo       int      `yaml:"year_to,omitempty"`
	MinCitations int      `yaml:"min_citations,omitempty"`
	RefereedOnly bool     `yaml:"refereed_only,omitempty"`
	Collection   string   `yaml:"collection,omitempty"`
}

// QueryFileConfig stores the retrieval settings that produced the results.
type QueryFileConfig struct {
	Rows       int    `yaml:"rows"`
	MaxResults int    `yaml:"max_results"`
	Sort       string `yaml:"sort"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	TotalFound int      `yaml:"total_found"`
	Retrieved  int      `yaml:"retrieved"`
	PageErrors []string `yaml:"page_errors,omitempty"`

	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves query parameters, results, and a summary to a
// YAML file.
func WriteQueryFile(path string, query Query, cfg types.SearchConfig, rs types.ResultSet, pageErrors []string) error {
	qf := QueryFile{
		Query: QueryParams{
			Terms:        query.Terms,
			Fields:       query.Fields,
			Author:       query.Author,
			YearFrom:     query.YearFrom,
			YearTo:       query.YearTo,
			MinCitations: query.MinCitations,
			RefereedOnly: query.RefereedOnly,
			Collection:   query.Collection,
		},
		Config: QueryFileConfig{
			Rows:       cfg.Rows,
			MaxResults: cfg.MaxResults,
			Sort:       cfg.Sort,
		},
		Results: rs.Papers,
		Summary: QuerySummary{
			TotalFound: rs.TotalFound,
			Retrieved:  len(rs.Papers),
			PageErrors: pageErrors,
			Timestamp:  time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ResultSet rebuilds the saved results for re-export. The query string
// is reconstructed from the stored parameters.
func (qf *QueryFile) ResultSet() types.ResultSet {
	queryStr, _ := qf.Query.ToQuery().Build()
	return types.ResultSet{
		Query:      queryStr,
		Papers:     qf.Results,
		TotalFound: qf.Summary.TotalFound,
		Retrieved:  qf.Summary.Timestamp,
	}
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() Query {
	return Query{
		Terms:        p.Terms,
		Fields:       p.Fields,
		Author:       p.Author,
		YearFrom:     p.YearFrom,
		YearTo:       p.YearTo,
		MinCitations: p.MinCitations,
		RefereedOnly: p.RefereedOnly,
		Collection:   p.Collection,
	}
}
