// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/pkg/types"
)

// --- mock client ---

type mockClient struct {
	mu    sync.Mutex
	total int

	totalErr error
	page     func(start, rows int) ([]types.Paper, error)
	export   func(bibcodes []string) (map[string]string, error)
	delay    time.Duration

	totalCalls  int
	searchCalls int
	exportCalls [][]string
	inFlight    int
	maxInFlight int
}

func (m *mockClient) Total(_ context.Context, _, _ string) (int, error) {
	m.mu.Lock()
	m.totalCalls++
	m.mu.Unlock()
	return m.total, m.totalErr
}

func (m *mockClient) Search(_ context.Context, _ string, start, rows int, _ string) (ads.Page, error) {
	m.mu.Lock()
	m.searchCalls++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	papers, err := m.page(start, rows)
	if err != nil {
		return ads.Page{}, err
	}
	return ads.Page{Papers: papers, NumFound: m.total, Start: start}, nil
}

func (m *mockClient) ExportBibTeX(_ context.Context, bibcodes []string) (map[string]string, error) {
	m.mu.Lock()
	m.exportCalls = append(m.exportCalls, bibcodes)
	m.mu.Unlock()

	if m.export != nil {
		return m.export(bibcodes)
	}
	entries := make(map[string]string, len(bibcodes))
	for _, b := range bibcodes {
		entries[b] = "@ARTICLE{" + b + ",\n}"
	}
	return entries, nil
}

func testBibcode(i int) string {
	return fmt.Sprintf("2021Test....%04dA", i)
}

func makePapers(start, n int) []types.Paper {
	papers := make([]types.Paper, n)
	for i := range papers {
		papers[i] = types.Paper{
			Bibcode:       testBibcode(start + i),
			Title:         fmt.Sprintf("Test Paper %d", start+i),
			Year:          2021,
			CitationCount: start + i,
		}
	}
	return papers
}

// serveTotal returns a page function that slices a corpus of total
// sequentially numbered papers.
func serveTotal(total int) func(start, rows int) ([]types.Paper, error) {
	return func(start, rows int) ([]types.Paper, error) {
		n := rows
		if start+n > total {
			n = total - start
		}
		return makePapers(start, n), nil
	}
}

func testQuery() ads.Query {
	return ads.Query{Terms: []string{"quenching"}}
}

// --- Run ---

func TestRunFetchesAllPagesInOrder(t *testing.T) {
	m := &mockClient{total: 230, page: serveTotal(230)}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 100, Concurrency: 3}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Set.TotalFound != 230 {
		t.Errorf("TotalFound = %d, want 230", res.Set.TotalFound)
	}
	if len(res.Set.Papers) != 230 {
		t.Fatalf("len(Papers) = %d, want 230", len(res.Set.Papers))
	}
	if res.PagesPlanned != 3 || res.PagesFetched != 3 {
		t.Errorf("pages = %d planned / %d fetched, want 3/3", res.PagesPlanned, res.PagesFetched)
	}
	// Records must follow plan order regardless of page completion order.
	for _, i := range []int{0, 99, 100, 199, 200, 229} {
		if res.Set.Papers[i].Bibcode != testBibcode(i) {
			t.Errorf("Papers[%d].Bibcode = %q, want %q", i, res.Set.Papers[i].Bibcode, testBibcode(i))
		}
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected warnings: %s", buf.String())
	}
}

func TestRunRespectsMaxResults(t *testing.T) {
	var maxRowsSeen int
	m := &mockClient{total: 1000}
	m.page = func(start, rows int) ([]types.Paper, error) {
		m.mu.Lock()
		if rows > maxRowsSeen {
			maxRowsSeen = rows
		}
		m.mu.Unlock()
		return makePapers(start, rows), nil
	}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 5, MaxResults: 10}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Set.Papers) != 10 {
		t.Errorf("len(Papers) = %d, want 10", len(res.Set.Papers))
	}
	if res.PagesPlanned != 2 {
		t.Errorf("PagesPlanned = %d, want 2", res.PagesPlanned)
	}
	// The cap must shape the requests, not just trim afterwards.
	if m.searchCalls != 2 {
		t.Errorf("searchCalls = %d, want 2", m.searchCalls)
	}
	if maxRowsSeen > 5 {
		t.Errorf("maxRowsSeen = %d, want <= 5", maxRowsSeen)
	}
}

func TestRunDeduplicates(t *testing.T) {
	m := &mockClient{total: 4}
	m.page = func(start, rows int) ([]types.Paper, error) {
		// Overlapping pages repeat the record at the boundary.
		if start == 0 {
			return []types.Paper{
				{Bibcode: testBibcode(0)},
				{Bibcode: testBibcode(1)},
			}, nil
		}
		return []types.Paper{
			{Bibcode: testBibcode(1)},
			{Bibcode: testBibcode(2)},
		}, nil
	}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 2}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Set.Papers) != 3 {
		t.Fatalf("len(Papers) = %d, want 3", len(res.Set.Papers))
	}
	if res.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", res.DupsRemoved)
	}
	for i := 0; i < 3; i++ {
		if res.Set.Papers[i].Bibcode != testBibcode(i) {
			t.Errorf("Papers[%d].Bibcode = %q, want %q", i, res.Set.Papers[i].Bibcode, testBibcode(i))
		}
	}
}

func TestRunPartialPageFailure(t *testing.T) {
	m := &mockClient{total: 300}
	m.page = func(start, rows int) ([]types.Paper, error) {
		if start == 100 {
			return nil, &ads.StatusError{StatusCode: 502}
		}
		return serveTotal(300)(start, rows)
	}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 100}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Set.Papers) != 200 {
		t.Fatalf("len(Papers) = %d, want 200", len(res.Set.Papers))
	}
	if res.PagesFetched != 2 {
		t.Errorf("PagesFetched = %d, want 2", res.PagesFetched)
	}
	if len(res.PageErrors) != 1 || !strings.Contains(res.PageErrors[0], "start 100") {
		t.Errorf("PageErrors = %v", res.PageErrors)
	}
	if !res.Partial() {
		t.Error("Partial() = false, want true")
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Errorf("no warning written, got %q", buf.String())
	}
	// Surviving pages keep plan order: page 1 then page 3.
	if res.Set.Papers[0].Bibcode != testBibcode(0) {
		t.Errorf("Papers[0].Bibcode = %q", res.Set.Papers[0].Bibcode)
	}
	if res.Set.Papers[100].Bibcode != testBibcode(200) {
		t.Errorf("Papers[100].Bibcode = %q, want %q", res.Set.Papers[100].Bibcode, testBibcode(200))
	}
}

func TestRunAllPagesFail(t *testing.T) {
	m := &mockClient{total: 300}
	m.page = func(start, rows int) ([]types.Paper, error) {
		return nil, &ads.StatusError{StatusCode: 502}
	}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 100}, &buf)
	if err == nil {
		t.Fatal("expected error when every page fails")
	}
	if !strings.Contains(err.Error(), "all 3 page requests failed") {
		t.Errorf("error = %v", err)
	}
	if len(res.PageErrors) != 3 {
		t.Errorf("PageErrors = %v, want 3 entries", res.PageErrors)
	}
	if res.Partial() {
		t.Error("Partial() = true with no records")
	}
}

func TestRunAuthFailureAborts(t *testing.T) {
	m := &mockClient{total: 300}
	m.page = func(start, rows int) ([]types.Paper, error) {
		return nil, &ads.StatusError{StatusCode: 401}
	}
	var buf bytes.Buffer

	_, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 100}, &buf)
	if err == nil {
		t.Fatal("expected error")
	}
	var se *ads.StatusError
	if !errors.As(err, &se) || !se.AuthFailed() {
		t.Errorf("error = %v, want auth StatusError", err)
	}
}

func TestRunTotalError(t *testing.T) {
	m := &mockClient{totalErr: &ads.StatusError{StatusCode: 500}}
	var buf bytes.Buffer

	_, err := Run(context.Background(), m, testQuery(), types.SearchConfig{}, &buf)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "counting matches") {
		t.Errorf("error = %v", err)
	}
}

func TestRunEmptyQuery(t *testing.T) {
	m := &mockClient{total: 100, page: serveTotal(100)}
	var buf bytes.Buffer

	_, err := Run(context.Background(), m, ads.Query{}, types.SearchConfig{}, &buf)
	if !errors.Is(err, ads.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
	if m.totalCalls != 0 || m.searchCalls != 0 {
		t.Errorf("calls = %d total / %d search, want none before validation", m.totalCalls, m.searchCalls)
	}
}

func TestRunConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.SearchConfig
	}{
		{"negative max results", types.SearchConfig{MaxResults: -1}},
		{"rows above API maximum", types.SearchConfig{Rows: ads.MaxRows + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockClient{total: 100, page: serveTotal(100)}
			var buf bytes.Buffer

			_, err := Run(context.Background(), m, testQuery(), tt.cfg, &buf)
			if !errors.Is(err, ads.ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
			if m.totalCalls != 0 {
				t.Errorf("totalCalls = %d, want 0", m.totalCalls)
			}
		})
	}
}

func TestRunNoMatches(t *testing.T) {
	m := &mockClient{total: 0}
	var buf bytes.Buffer

	res, err := Run(context.Background(), m, testQuery(), types.SearchConfig{}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Set.Papers) != 0 {
		t.Errorf("len(Papers) = %d, want 0", len(res.Set.Papers))
	}
	if res.PagesPlanned != 0 {
		t.Errorf("PagesPlanned = %d, want 0", res.PagesPlanned)
	}
	if !strings.Contains(res.Set.Query, "quenching") {
		t.Errorf("Query = %q, should carry the built query", res.Set.Query)
	}
	if m.searchCalls != 0 {
		t.Errorf("searchCalls = %d, want 0", m.searchCalls)
	}
}

func TestRunConcurrencyLimit(t *testing.T) {
	m := &mockClient{total: 600, page: serveTotal(600), delay: 20 * time.Millisecond}
	var buf bytes.Buffer

	_, err := Run(context.Background(), m, testQuery(), types.SearchConfig{Rows: 100, Concurrency: 2}, &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.searchCalls != 6 {
		t.Errorf("searchCalls = %d, want 6", m.searchCalls)
	}
	if m.maxInFlight > 2 {
		t.Errorf("maxInFlight = %d, want <= 2", m.maxInFlight)
	}
}

// --- EnrichBibTeX ---

func TestEnrichBibTeX(t *testing.T) {
	m := &mockClient{}
	papers := makePapers(0, 3)
	var buf bytes.Buffer

	if err := EnrichBibTeX(context.Background(), m, papers, &buf); err != nil {
		t.Fatalf("EnrichBibTeX: %v", err)
	}
	if len(m.exportCalls) != 1 {
		t.Fatalf("exportCalls = %d, want 1", len(m.exportCalls))
	}
	for i, p := range papers {
		want := "@ARTICLE{" + testBibcode(i)
		if !strings.HasPrefix(p.BibTeX, want) {
			t.Errorf("papers[%d].BibTeX = %q, want prefix %q", i, p.BibTeX, want)
		}
	}
}

func TestEnrichBibTeXBatches(t *testing.T) {
	m := &mockClient{}
	papers := makePapers(0, 205)
	var buf bytes.Buffer

	if err := EnrichBibTeX(context.Background(), m, papers, &buf); err != nil {
		t.Fatalf("EnrichBibTeX: %v", err)
	}
	if len(m.exportCalls) != 3 {
		t.Fatalf("exportCalls = %d, want 3", len(m.exportCalls))
	}
	for i, wantLen := range []int{100, 100, 5} {
		if len(m.exportCalls[i]) != wantLen {
			t.Errorf("batch %d size = %d, want %d", i, len(m.exportCalls[i]), wantLen)
		}
	}
	for _, i := range []int{0, 100, 204} {
		if papers[i].BibTeX == "" {
			t.Errorf("papers[%d].BibTeX empty after enrichment", i)
		}
	}
}

func TestEnrichBibTeXPartialBatchFailure(t *testing.T) {
	m := &mockClient{}
	papers := makePapers(0, 150)
	m.export = func(bibcodes []string) (map[string]string, error) {
		if bibcodes[0] == testBibcode(100) {
			return nil, &ads.StatusError{StatusCode: 503}
		}
		entries := make(map[string]string, len(bibcodes))
		for _, b := range bibcodes {
			entries[b] = "@ARTICLE{" + b + ",\n}"
		}
		return entries, nil
	}
	var buf bytes.Buffer

	if err := EnrichBibTeX(context.Background(), m, papers, &buf); err != nil {
		t.Fatalf("EnrichBibTeX: %v", err)
	}
	if papers[0].BibTeX == "" {
		t.Error("papers[0].BibTeX empty, first batch should succeed")
	}
	if papers[100].BibTeX != "" {
		t.Errorf("papers[100].BibTeX = %q, failed batch should stay empty", papers[100].BibTeX)
	}
	if !strings.Contains(buf.String(), "BibTeX export") {
		t.Errorf("no warning written, got %q", buf.String())
	}
}

func TestEnrichBibTeXAuthFailureAborts(t *testing.T) {
	m := &mockClient{}
	m.export = func(bibcodes []string) (map[string]string, error) {
		return nil, &ads.StatusError{StatusCode: 401}
	}
	papers := makePapers(0, 5)
	var buf bytes.Buffer

	err := EnrichBibTeX(context.Background(), m, papers, &buf)
	var se *ads.StatusError
	if !errors.As(err, &se) || !se.AuthFailed() {
		t.Errorf("error = %v, want auth StatusError", err)
	}
}
