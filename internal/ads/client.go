// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ads is a client for the NASA ADS Search API. It builds
// field-scoped query strings, fetches result pages with retry and
// request spacing, and exports BibTeX citations.
// Implements: prd009-ads-search (R1-R3, R5);
//
//	docs/ARCHITECTURE § ADS Client.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/ads-finder/internal/httputil"
	"github.com/pdiddy/ads-finder/pkg/types"
)

// API endpoints. Declared as vars so tests can substitute an httptest
// server.
var (
	adsSearchBase = "https://api.adsabs.harvard.edu/v1/search/query"
	adsExportBase = "https://api.adsabs.harvard.edu/v1/export/bibtex"
)

// searchFields is the fl parameter sent with every search request.
const searchFields = "bibcode,title,year,pub,abstract,keyword,citation_count"

// DefaultSort orders results by publication date, newest first.
const DefaultSort = "date desc"

const (
	defaultTimeout         = 30 * time.Second
	defaultRequestInterval = 100 * time.Millisecond
)

// Client issues authenticated requests against the ADS API. Consecutive
// requests are spaced by a token-bucket limiter, and rate-limited or
// transiently failing requests are retried before an error surfaces.
type Client struct {
	httpClient *http.Client
	token      string
	userAgent  string
	maxRetries int
	limiter    *rate.Limiter

	// quota holds the last X-RateLimit-Remaining value seen, or -1.
	quota atomic.Int64
}

// NewClient validates the API key and returns a ready Client.
func NewClient(token string, cfg types.SearchConfig) (*Client, error) {
	if err := ValidateAPIKey(token); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = defaultRequestInterval
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
	c.quota.Store(-1)
	return c, nil
}

// QuotaRemaining returns the most recent X-RateLimit-Remaining value
// the API reported, or -1 when no response has carried one. ADS allows
// 5000 queries per day.
func (c *Client) QuotaRemaining() int64 {
	return c.quota.Load()
}

// Page holds one page of search results plus the server's pagination
// metadata.
type Page struct {
	Papers   []types.Paper
	NumFound int
	Start    int
}

// Search fetches one page of results for an already-built query string.
// A rows value of zero retrieves no records and is useful for counting
// matches; see Total.
func (c *Client) Search(ctx context.Context, query string, start, rows int, sort string) (Page, error) {
	if query == "" {
		return Page{}, fmt.Errorf("%w: empty query string", ErrInvalidRequest)
	}
	if start < 0 {
		return Page{}, fmt.Errorf("%w: start must be non-negative, got %d", ErrInvalidRequest, start)
	}
	if rows < 0 || rows > MaxRows {
		return Page{}, fmt.Errorf("%w: rows must be between 0 and %d, got %d", ErrInvalidRequest, MaxRows, rows)
	}
	if sort == "" {
		sort = DefaultSort
	}

	params := url.Values{
		"q":     {query},
		"fl":    {searchFields},
		"rows":  {strconv.Itoa(rows)},
		"start": {strconv.Itoa(start)},
		"sort":  {sort},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, adsSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.do(ctx, req)
	if err != nil {
		return Page{}, fmt.Errorf("ADS search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, statusError(resp)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Page{}, fmt.Errorf("parsing ADS response: %w", err)
	}

	page := Page{NumFound: sr.Response.NumFound, Start: sr.Response.Start}
	for _, doc := range sr.Response.Docs {
		// Records without a bibcode cannot be identified or exported.
		if doc.Bibcode == "" {
			continue
		}
		page.Papers = append(page.Papers, doc.toPaper())
	}
	return page, nil
}

// Total returns the server-reported number of matching records without
// retrieving any of them (a rows=0 request).
func (c *Client) Total(ctx context.Context, query, sort string) (int, error) {
	page, err := c.Search(ctx, query, 0, 0, sort)
	if err != nil {
		return 0, err
	}
	return page.NumFound, nil
}

// ExportBibTeX fetches BibTeX entries for the given bibcodes and returns
// them keyed by bibcode. Entries the server omits are absent from the
// map.
func (c *Client) ExportBibTeX(ctx context.Context, bibcodes []string) (map[string]string, error) {
	if len(bibcodes) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(exportRequest{Bibcode: bibcodes})
	if err != nil {
		return nil, fmt.Errorf("encoding export request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, adsExportBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ADS export request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var er exportResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing ADS export response: %w", err)
	}

	return splitBibTeX(er.Export, bibcodes), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// do spaces the request through the limiter, executes it with retry,
// and records the quota header from the response.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return nil, err
	}

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, convErr := strconv.ParseInt(v, 10, 64); convErr == nil {
			c.quota.Store(n)
		}
	}
	return resp, nil
}

// statusError reads a snippet of the response body and wraps it in a
// StatusError. ADS error bodies carry a JSON {"error": ...} object.
func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(snippet)}
}

func errorMessage(body []byte) string {
	var wrapped struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		switch v := wrapped.Error.(type) {
		case string:
			return v
		case map[string]any:
			if msg, ok := v["msg"].(string); ok {
				return msg
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// splitBibTeX cuts the concatenated export blob into entries and maps
// each back to the bibcode it names.
func splitBibTeX(export string, bibcodes []string) map[string]string {
	entries := make(map[string]string)
	if export == "" {
		return entries
	}

	for _, chunk := range strings.Split(export, "@") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		for _, bib := range bibcodes {
			if strings.Contains(chunk, bib) {
				entries[bib] = "@" + strings.TrimSpace(chunk)
				break
			}
		}
	}
	return entries
}

// ADS API JSON structures.
type searchResponse struct {
	Response struct {
		NumFound int      `json:"numFound"`
		Start    int      `json:"start"`
		Docs     []adsDoc `json:"docs"`
	} `json:"response"`
}

type adsDoc struct {
	Bibcode       string   `json:"bibcode"`
	Title         []string `json:"title"`
	Year          string   `json:"year"`
	Pub           string   `json:"pub"`
	Abstract      string   `json:"abstract"`
	Keyword       []string `json:"keyword"`
	CitationCount int      `json:"citation_count"`
}

// toPaper flattens a wire doc into a Paper. ADS sends year as a string
// and title as an array; both are normalized here. An unparseable year
// leaves Year at zero.
func (d adsDoc) toPaper() types.Paper {
	p := types.Paper{
		Bibcode:       d.Bibcode,
		Pub:           d.Pub,
		Abstract:      d.Abstract,
		Keywords:      d.Keyword,
		CitationCount: d.CitationCount,
	}
	if len(d.Title) > 0 {
		p.Title = d.Title[0]
	}
	if y, err := strconv.Atoi(strings.TrimSpace(d.Year)); err == nil {
		p.Year = y
	}
	return p
}

type exportRequest struct {
	Bibcode []string `json:"bibcode"`
}

type exportResponse struct {
	Export string `json:"export"`
}
