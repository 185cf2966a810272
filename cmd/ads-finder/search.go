// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/internal/export"
	"github.com/pdiddy/ads-finder/internal/fetch"
	"github.com/pdiddy/ads-finder/internal/library"
	"github.com/pdiddy/ads-finder/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ads-finder/0.1"
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search ADS and export matching records",
	Long: `Search queries the ADS API for records matching the given terms,
fetches all result pages with bounded parallelism, and prints a result
table. With --output the merged records are written to a file instead
(CSV by default; see --format).

Each term is matched as a phrase against the title, abstract, and full
text; --fields narrows the match targets. Filters (--author,
--year-from/--year-to, --min-citations, --refereed, --collection) are
combined with AND.

A failed page aborts the run with no output file unless --partial is
given, which exports the fetched pages and still exits non-zero.`,
	Example: `  ads-finder search "quenched galaxy" --year-from 2015 --refereed -o quenched.csv
  ads-finder search "dark energy" --fields title --min-citations 100 --bibtex -o de.bib -f bibtex
  ads-finder search --from-query saved.yaml -o again.json -f json`,
	RunE: runSearch,
}

func init() {
	registerQueryFlags(searchCmd)
	registerRetrievalFlags(searchCmd)

	searchCmd.Flags().Bool("bibtex", false, "fetch BibTeX entries for all records")
	searchCmd.Flags().StringP("output", "o", "", "output file path (default: print a table)")
	searchCmd.Flags().StringP("format", "f", "csv", "output format: csv, json, bibtex, or csl")
	searchCmd.Flags().Bool("partial", false, "export fetched pages even when some page requests failed")

	searchCmd.Flags().String("save-query", "", "save query parameters and results to a YAML file")
	searchCmd.Flags().String("from-query", "", "re-export results from a saved query file (no API calls)")

	searchCmd.Flags().Bool("no-library", false, "do not record retrieved papers in the local library")
	searchCmd.Flags().String("library-dir", "library", "directory holding the local paper library")

	rootCmd.AddCommand(searchCmd)
}

// registerRetrievalFlags adds the pagination and HTTP flags shared by
// search and config.
func registerRetrievalFlags(cmd *cobra.Command) {
	cmd.Flags().Int("rows", 100, "records per API page (1-2000)")
	cmd.Flags().Int("max-results", 0, "cap on total records retrieved (0 = all matches)")
	cmd.Flags().Int("concurrency", 0, "parallel page requests (default 5)")
	cmd.Flags().String("sort", "", `result order (default "date desc")`)
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().Int("retries", 0, "retry attempts for rate-limited and 5xx responses (default 3)")
}

// registerQueryFlags adds the query-building flags shared by search
// and count.
func registerQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("fields", nil, "record fields terms match against: title, abstract, full (default all)")
	cmd.Flags().String("author", "", `restrict to an author (e.g. "Kim, J.")`)
	cmd.Flags().Int("year-from", 0, "earliest publication year")
	cmd.Flags().Int("year-to", 0, "latest publication year")
	cmd.Flags().Int("min-citations", 0, "minimum citation count")
	cmd.Flags().Bool("refereed", false, "refereed publications only")
	cmd.Flags().String("collection", "", "ADS collection: astronomy, physics, or general")
}

// queryFromFlags builds the ADS query from command-line flags and
// positional terms. Validation happens in Query.Build.
func queryFromFlags(cmd *cobra.Command, args []string) ads.Query {
	fields, _ := cmd.Flags().GetStringSlice("fields")
	author, _ := cmd.Flags().GetString("author")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	minCitations, _ := cmd.Flags().GetInt("min-citations")
	refereed, _ := cmd.Flags().GetBool("refereed")
	collection, _ := cmd.Flags().GetString("collection")

	return ads.Query{
		Terms:        args,
		Fields:       fields,
		Author:       author,
		YearFrom:     yearFrom,
		YearTo:       yearTo,
		MinCitations: minCitations,
		RefereedOnly: refereed,
		Collection:   collection,
	}
}

// searchConfigFromFlags resolves retrieval settings with flag > config
// file > default precedence.
func searchConfigFromFlags(cmd *cobra.Command) types.SearchConfig {
	timeout := durationSetting(cmd, "timeout", "timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Rows:        intSetting(cmd, "rows", "rows"),
		MaxResults:  intSetting(cmd, "max-results", "max_results"),
		Concurrency: intSetting(cmd, "concurrency", "concurrency"),
		Sort:        stringSetting(cmd, "sort", "sort"),
		MaxRetries:  intSetting(cmd, "retries", "max_retries"),

		// Config-file-only knob; the client applies its default when unset.
		RequestInterval: viper.GetDuration("request_interval"),
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	fromQuery, _ := cmd.Flags().GetString("from-query")

	if fromQuery != "" {
		if len(args) > 0 {
			return fmt.Errorf("cannot combine --from-query with search terms")
		}
		qf, err := ads.ReadQueryFile(fromQuery)
		if err != nil {
			return err
		}
		return writeResults(qf.ResultSet(), output, format)
	}

	query := queryFromFlags(cmd, args)
	cfg := searchConfigFromFlags(cmd)

	key, err := resolveAPIKey(cmd)
	if err != nil {
		return err
	}
	client, err := ads.NewClient(key, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := fetch.Run(ctx, client, query, cfg, os.Stderr)
	if err != nil {
		return err
	}

	partial, _ := cmd.Flags().GetBool("partial")
	if len(res.PageErrors) > 0 && !partial {
		return fmt.Errorf("%d of %d page requests failed; rerun with --partial to keep the fetched records",
			len(res.PageErrors), res.PagesPlanned)
	}

	if withBibTeX, _ := cmd.Flags().GetBool("bibtex"); withBibTeX {
		if err := fetch.EnrichBibTeX(ctx, client, res.Set.Papers, os.Stderr); err != nil {
			return err
		}
	}

	if err := writeResults(res.Set, output, format); err != nil {
		return err
	}
	if res.DupsRemoved > 0 {
		fmt.Printf("%d duplicate records removed\n", res.DupsRemoved)
	}
	if quota := client.QuotaRemaining(); quota >= 0 {
		fmt.Printf("API quota remaining: %d\n", quota)
	}

	if saveQuery, _ := cmd.Flags().GetString("save-query"); saveQuery != "" {
		if err := ads.WriteQueryFile(saveQuery, query, cfg, res.Set, res.PageErrors); err != nil {
			return err
		}
		fmt.Printf("Query saved to %s\n", saveQuery)
	}

	noLibrary, _ := cmd.Flags().GetBool("no-library")
	if !noLibrary && len(res.Set.Papers) > 0 {
		libDir := stringSetting(cmd, "library-dir", "library_dir")
		if err := updateLibrary(ctx, libDir, res.Set); err != nil {
			return err
		}
	}

	if res.Partial() {
		return fmt.Errorf("%d of %d page requests failed (partial results exported)",
			len(res.PageErrors), res.PagesPlanned)
	}
	return nil
}

// writeResults saves the set to a file, or prints a table when no
// output path is given.
func writeResults(rs types.ResultSet, output, format string) error {
	if output == "" {
		export.FormatTable(rs, os.Stdout)
		export.FormatStats(rs, os.Stdout)
		return nil
	}
	if err := export.Save(rs, output, format); err != nil {
		return err
	}
	fmt.Printf("Saved %d of %d matching records to %s\n", len(rs.Papers), rs.TotalFound, output)
	export.FormatStats(rs, os.Stdout)
	return nil
}

func updateLibrary(ctx context.Context, dir string, rs types.ResultSet) error {
	store, err := library.NewStore(types.LibraryConfig{LibraryDir: dir})
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer store.Close()

	summary, err := store.Add(ctx, rs)
	if err != nil {
		return fmt.Errorf("updating library: %w", err)
	}
	fmt.Printf("Library: %d added, %d updated\n", summary.Added, summary.Updated)
	return nil
}
