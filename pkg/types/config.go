package types

import "time"

// HTTPConfig holds shared HTTP settings for requests against the ADS API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ads-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for search execution and pagination.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Rows is the page size requested per API call (default 100, max 2000).
	Rows int `json:"rows" yaml:"rows"`

	// MaxResults caps the total number of records retrieved across all
	// pages. Zero means all matches.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Concurrency bounds the number of page requests in flight (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Sort is the ADS sort expression (default "date desc").
	Sort string `json:"sort" yaml:"sort"`

	// MaxRetries is the number of retry attempts for rate-limited and
	// transient server failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestInterval is the minimum delay between consecutive API
	// calls (default 100ms). ADS enforces a daily quota of 5000
	// queries, so requests are spaced rather than fired back-to-back.
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`
}

// LibraryConfig holds settings for the local paper catalog.
type LibraryConfig struct {
	// LibraryDir is the directory holding the catalog database (library.db).
	LibraryDir string `json:"library_dir" yaml:"library_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
