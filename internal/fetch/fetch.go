// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves complete result sets from the ADS API by
// fanning out page requests under a concurrency cap and reassembling
// the records in plan order.
// Implements: prd009-ads-search (R2, R3, R5);
//
//	docs/ARCHITECTURE § Parallel Retrieval.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/pkg/types"
)

// defaultConcurrency bounds simultaneous page requests when the
// configuration does not set one.
const defaultConcurrency = 5

// Client is the subset of the ADS client the fetcher uses. *ads.Client
// satisfies it; tests substitute an in-memory fake.
type Client interface {
	Search(ctx context.Context, query string, start, rows int, sort string) (ads.Page, error)
	Total(ctx context.Context, query, sort string) (int, error)
	ExportBibTeX(ctx context.Context, bibcodes []string) (map[string]string, error)
}

// Result holds the assembled result set and per-page retrieval
// statistics.
type Result struct {
	Set          types.ResultSet
	PagesPlanned int
	PagesFetched int
	PageErrors   []string
	DupsRemoved  int
}

// Partial reports whether some pages failed while others delivered
// records.
func (r Result) Partial() bool {
	return len(r.PageErrors) > 0 && len(r.Set.Papers) > 0
}

// Run plans pages for the query, fetches them concurrently, and
// assembles the records in plan order. Individual page failures are
// reported to w and recorded in the result; the run itself fails only
// when the key is rejected, the context ends, or every page fails.
func Run(ctx context.Context, client Client, query ads.Query, cfg types.SearchConfig, w io.Writer) (Result, error) {
	if cfg.MaxResults < 0 {
		return Result{}, fmt.Errorf("%w: max results must be non-negative, got %d", ads.ErrInvalidRequest, cfg.MaxResults)
	}
	if cfg.Rows > ads.MaxRows {
		return Result{}, fmt.Errorf("%w: rows per page cannot exceed %d, got %d", ads.ErrInvalidRequest, ads.MaxRows, cfg.Rows)
	}

	built, err := query.Build()
	if err != nil {
		return Result{}, err
	}

	total, err := client.Total(ctx, built, cfg.Sort)
	if err != nil {
		return Result{}, fmt.Errorf("counting matches: %w", err)
	}

	res := Result{Set: types.ResultSet{TotalFound: total, Query: built, Retrieved: time.Now()}}
	if total == 0 {
		return res, nil
	}

	pages := ads.Pages(total, cfg.MaxResults, cfg.Rows)
	res.PagesPlanned = len(pages)

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)
	papersByPage := make([][]types.Paper, len(pages))
	pageErrs := make([]string, len(pages))

	for i, pr := range pages {
		i, pr := i, pr
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			page, err := client.Search(gctx, built, pr.Start, pr.Rows, cfg.Sort)
			if err != nil {
				if fatal(err) {
					return err
				}
				pageErrs[i] = fmt.Sprintf("page %d (start %d): %v", i+1, pr.Start, err)
				fmt.Fprintf(w, "warning: %s\n", pageErrs[i])
				return nil
			}
			papersByPage[i] = page.Papers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []types.Paper
	for i := range pages {
		if pageErrs[i] != "" {
			res.PageErrors = append(res.PageErrors, pageErrs[i])
			continue
		}
		res.PagesFetched++
		all = append(all, papersByPage[i]...)
	}

	deduped, removed := dedupeByBibcode(all)
	res.DupsRemoved = removed

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}
	res.Set.Papers = deduped

	if res.PagesFetched == 0 {
		return res, fmt.Errorf("all %d page requests failed", len(pages))
	}
	return res, nil
}

// fatal reports errors that should abort the whole fan-out rather than
// skip one page: a rejected API key fails every page the same way, and
// a finished context means the caller gave up.
func fatal(err error) bool {
	var se *ads.StatusError
	if errors.As(err, &se) && se.AuthFailed() {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// dedupeByBibcode drops repeated bibcodes, keeping the first
// occurrence. Overlapping pages can repeat records when the server
// index shifts between page requests.
func dedupeByBibcode(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]bool, len(papers))
	var deduped []types.Paper
	removed := 0
	for _, p := range papers {
		if seen[p.Bibcode] {
			removed++
			continue
		}
		seen[p.Bibcode] = true
		deduped = append(deduped, p)
	}
	return deduped, removed
}

// bibtexBatchSize bounds how many bibcodes one export request carries.
const bibtexBatchSize = 100

// EnrichBibTeX fills Paper.BibTeX in place via the export endpoint,
// batching bibcodes to bound request size. A failed batch is reported
// to w and skipped; auth failures and context cancellation abort.
func EnrichBibTeX(ctx context.Context, client Client, papers []types.Paper, w io.Writer) error {
	byBibcode := make(map[string]*types.Paper, len(papers))
	var bibcodes []string
	for i := range papers {
		if papers[i].Bibcode == "" {
			continue
		}
		byBibcode[papers[i].Bibcode] = &papers[i]
		bibcodes = append(bibcodes, papers[i].Bibcode)
	}

	for start := 0; start < len(bibcodes); start += bibtexBatchSize {
		end := start + bibtexBatchSize
		if end > len(bibcodes) {
			end = len(bibcodes)
		}
		batch := bibcodes[start:end]

		entries, err := client.ExportBibTeX(ctx, batch)
		if err != nil {
			if fatal(err) {
				return err
			}
			fmt.Fprintf(w, "warning: BibTeX export for %d records failed: %v\n", len(batch), err)
			continue
		}
		for bib, entry := range entries {
			byBibcode[bib].BibTeX = entry
		}
	}
	return nil
}
