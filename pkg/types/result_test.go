// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"testing"
)

func TestADSURL(t *testing.T) {
	p := Paper{Bibcode: "2021ApJ...919..136K"}
	want := "https://ui.adsabs.harvard.edu/abs/2021ApJ...919..136K/abstract"
	if got := p.ADSURL(); got != want {
		t.Errorf("ADSURL() = %q, want %q", got, want)
	}
}

func TestResultSetStats(t *testing.T) {
	tests := []struct {
		name   string
		papers []Paper
		want   Stats
	}{
		{
			name:   "empty set",
			papers: nil,
			want:   Stats{},
		},
		{
			name: "single paper",
			papers: []Paper{
				{Bibcode: "2020A", Year: 2020, CitationCount: 12},
			},
			want: Stats{Papers: 1, AvgCitations: 12, MinCitations: 12, MaxCitations: 12, MinYear: 2020, MaxYear: 2020},
		},
		{
			name: "citation spread",
			papers: []Paper{
				{Bibcode: "A", Year: 2018, CitationCount: 5},
				{Bibcode: "B", Year: 2021, CitationCount: 0},
				{Bibcode: "C", Year: 2019, CitationCount: 10},
			},
			want: Stats{Papers: 3, AvgCitations: 5, MinCitations: 0, MaxCitations: 10, MinYear: 2018, MaxYear: 2021},
		},
		{
			name: "zero years excluded from range",
			papers: []Paper{
				{Bibcode: "A", Year: 0, CitationCount: 3},
				{Bibcode: "B", Year: 2015, CitationCount: 7},
			},
			want: Stats{Papers: 2, AvgCitations: 5, MinCitations: 3, MaxCitations: 7, MinYear: 2015, MaxYear: 2015},
		},
		{
			name: "no years at all",
			papers: []Paper{
				{Bibcode: "A", CitationCount: 2},
			},
			want: Stats{Papers: 1, AvgCitations: 2, MinCitations: 2, MaxCitations: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResultSet{Papers: tt.papers}.Stats()
			if got.Papers != tt.want.Papers ||
				got.MinCitations != tt.want.MinCitations ||
				got.MaxCitations != tt.want.MaxCitations ||
				got.MinYear != tt.want.MinYear ||
				got.MaxYear != tt.want.MaxYear {
				t.Errorf("Stats() = %+v, want %+v", got, tt.want)
			}
			if math.Abs(got.AvgCitations-tt.want.AvgCitations) > 0.001 {
				t.Errorf("AvgCitations = %f, want %f", got.AvgCitations, tt.want.AvgCitations)
			}
		})
	}
}
