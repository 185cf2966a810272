// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/ads-finder/pkg/types"
)

// QueryOptions filters a library search. A zero value for any field
// leaves that filter off. Query is matched against titles, abstracts,
// and keywords; when empty, only the filters apply.
type QueryOptions struct {
	Query        string
	YearFrom     int
	YearTo       int
	MinCitations int
	MaxResults   int
}

// Search returns papers matching the options. Full-text matches are
// ordered by relevance; filter-only searches by citation count, then
// year.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]types.Paper, error) {
	var query strings.Builder
	var args []any

	const columns = `p.bibcode, p.title, p.year, p.pub, p.abstract, p.keywords, p.citation_count, p.bibtex`

	if opts.Query != "" {
		query.WriteString(`SELECT ` + columns + `
			FROM papers_fts JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		query.WriteString(`SELECT ` + columns + `
			FROM papers p WHERE 1=1`)
	}

	if opts.YearFrom > 0 {
		query.WriteString(` AND p.year >= ?`)
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo > 0 {
		query.WriteString(` AND p.year <= ?`)
		args = append(args, opts.YearTo)
	}
	if opts.MinCitations > 0 {
		query.WriteString(` AND p.citation_count >= ?`)
		args = append(args, opts.MinCitations)
	}

	if opts.Query != "" {
		query.WriteString(` ORDER BY papers_fts.rank`)
	} else {
		query.WriteString(` ORDER BY p.citation_count DESC, p.year DESC`)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}
	query.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Run summarizes one stored search: the query that ran, how many of
// its papers are in the library, and when it last added any.
type Run struct {
	Query     string
	Papers    int
	LastAdded time.Time
}

// Runs returns recent search runs, most recent first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, count(*), max(added_at) FROM papers
		 GROUP BY query ORDER BY max(added_at) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var lastAdded string
		if err := rows.Scan(&r.Query, &r.Papers, &lastAdded); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.LastAdded, err = time.Parse(time.RFC3339, lastAdded)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanPapers(rows *sql.Rows) ([]types.Paper, error) {
	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		var keywordsJSON string
		err := rows.Scan(&p.Bibcode, &p.Title, &p.Year, &p.Pub,
			&p.Abstract, &keywordsJSON, &p.CitationCount, &p.BibTeX)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if keywordsJSON != "" {
			if err := json.Unmarshal([]byte(keywordsJSON), &p.Keywords); err != nil {
				return nil, fmt.Errorf("parsing keywords for %s: %w", p.Bibcode, err)
			}
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}
