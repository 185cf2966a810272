// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists retrieved papers in a local SQLite database
// with a full-text index over titles, abstracts, and keywords.
// Implements: prd010-paper-library (R1-R5);
//
//	docs/ARCHITECTURE § Paper Library.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ads-finder/pkg/types"
)

const dbFile = "library.db"

// Store manages the paper library SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the library database at
// cfg.LibraryDir/library.db. It creates the schema if it does not
// exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.LibraryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(cfg.LibraryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			bibcode TEXT PRIMARY KEY,
			title TEXT,
			year INTEGER,
			pub TEXT,
			abstract TEXT,
			keywords TEXT,
			citation_count INTEGER,
			bibtex TEXT,
			query TEXT,
			added_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_citations ON papers(citation_count)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, keywords, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
				INSERT INTO papers_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// AddSummary holds counts from a library add run.
type AddSummary struct {
	Added   int
	Updated int
}

// Total returns the number of papers processed.
func (a AddSummary) Total() int {
	return a.Added + a.Updated
}

// Add upserts every paper in the result set, recording the query that
// found it and the time it was stored. Re-adding a bibcode refreshes
// its metadata; an existing BibTeX entry survives unless the new record
// carries one.
func (s *Store) Add(ctx context.Context, rs types.ResultSet) (AddSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AddSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existsStmt, err := tx.PrepareContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM papers WHERE bibcode = ?)`)
	if err != nil {
		return AddSummary{}, fmt.Errorf("preparing existence check: %w", err)
	}
	defer existsStmt.Close()

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (bibcode, title, year, pub, abstract, keywords, citation_count, bibtex, query, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(bibcode) DO UPDATE SET
			title=excluded.title, year=excluded.year, pub=excluded.pub,
			abstract=excluded.abstract, keywords=excluded.keywords,
			citation_count=excluded.citation_count,
			bibtex=CASE WHEN excluded.bibtex != '' THEN excluded.bibtex ELSE papers.bibtex END,
			query=excluded.query, added_at=excluded.added_at`)
	if err != nil {
		return AddSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer insertStmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	var summary AddSummary

	for _, p := range rs.Papers {
		if p.Bibcode == "" {
			continue
		}

		var exists bool
		if err := existsStmt.QueryRowContext(ctx, p.Bibcode).Scan(&exists); err != nil {
			return AddSummary{}, fmt.Errorf("checking %s: %w", p.Bibcode, err)
		}

		keywordsJSON, _ := json.Marshal(p.Keywords)
		_, err := insertStmt.ExecContext(ctx,
			p.Bibcode, p.Title, p.Year, p.Pub, p.Abstract,
			string(keywordsJSON), p.CitationCount, p.BibTeX,
			rs.Query, now,
		)
		if err != nil {
			return AddSummary{}, fmt.Errorf("upserting %s: %w", p.Bibcode, err)
		}

		if exists {
			summary.Updated++
		} else {
			summary.Added++
		}
	}

	if err := tx.Commit(); err != nil {
		return AddSummary{}, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

// Count returns the number of papers in the library.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// Remove deletes a paper by bibcode. It reports whether a row was
// removed.
func (s *Store) Remove(ctx context.Context, bibcode string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE bibcode = ?`, bibcode)
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", bibcode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
