// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"time"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// exportLimit caps a library export. High enough to cover any library
// this tool realistically accumulates.
const exportLimit = 100000

// ExportSet runs a library search without the result cap and wraps the
// matches as a result set suitable for the export writers.
func (s *Store) ExportSet(ctx context.Context, opts QueryOptions) (types.ResultSet, error) {
	opts.MaxResults = exportLimit
	papers, err := s.Search(ctx, opts)
	if err != nil {
		return types.ResultSet{}, err
	}
	return types.ResultSet{
		Query:      opts.Query,
		Papers:     papers,
		TotalFound: len(papers),
		Retrieved:  time.Now(),
	}, nil
}
