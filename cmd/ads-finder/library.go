// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/internal/export"
	"github.com/pdiddy/ads-finder/internal/library"
	"github.com/pdiddy/ads-finder/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local paper library (search, list, export)",
	Long: `Library manages a local SQLite catalog of retrieved papers. Every
successful search adds its records to the catalog (disable with
--no-library), so earlier results stay queryable offline without
spending API quota.`,
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library with full-text search and filters",
	Long: `Search matches the query against stored titles, abstracts, and
keywords using full-text search, optionally narrowed by year and
citation filters. Without a query the most cited papers matching the
filters are shown.`,
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.Search(cmd.Context(), libraryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	export.FormatTable(types.ResultSet{Papers: papers, TotalFound: len(papers)}, os.Stdout)
	return nil
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent search runs stored in the library",
	RunE:  runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-56s  %6s  %s\n", "Query", "Papers", "Last added")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 76))
	for _, r := range runs {
		query := r.Query
		if len(query) > 56 {
			query = query[:53] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-56s  %6d  %s\n",
			query, r.Papers, r.LastAdded.Format("2006-01-02"))
	}

	total, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("\n%d papers in library\n", total)
	return nil
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library papers to CSV, JSON, BibTeX, or CSL",
	Long: `Export writes library papers to a file in any of the search output
formats, without touching the API. Supports the same query and filter
flags as library search for partial exports.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return fmt.Errorf("output path required: use --output")
	}
	format, _ := cmd.Flags().GetString("format")

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rs, err := store.ExportSet(cmd.Context(), libraryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}
	if err := export.Save(rs, output, format); err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s\n", len(rs.Papers), output)
	return nil
}

// --- add subcommand ---

var libraryAddCmd = &cobra.Command{
	Use:   "add file",
	Short: "Import records from a CSV export or saved query file",
	Long: `Add reads a previous CSV export or a saved query YAML file and
records its papers in the library. Re-imported papers refresh their
metadata in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryAdd,
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	rs, err := readImportFile(args[0])
	if err != nil {
		return err
	}

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Add(cmd.Context(), rs)
	if err != nil {
		return err
	}
	fmt.Printf("Library: %d added, %d updated\n", summary.Added, summary.Updated)
	return nil
}

func readImportFile(path string) (types.ResultSet, error) {
	switch filepath.Ext(path) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return types.ResultSet{}, fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()
		return export.ReadCSV(f)
	case ".yaml", ".yml":
		qf, err := ads.ReadQueryFile(path)
		if err != nil {
			return types.ResultSet{}, err
		}
		return qf.ResultSet(), nil
	}
	return types.ResultSet{}, fmt.Errorf("unsupported import file %q (use .csv or .yaml)", path)
}

// --- remove subcommand ---

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove bibcode [bibcode...]",
	Short: "Remove papers from the library by bibcode",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLibraryRemove,
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	removed := 0
	for _, bibcode := range args {
		ok, err := store.Remove(cmd.Context(), bibcode)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: not in library: %s\n", bibcode)
			continue
		}
		removed++
	}
	fmt.Printf("Removed %d paper(s)\n", removed)
	return nil
}

// --- shared helpers ---

func openLibrary(cmd *cobra.Command) (*library.Store, error) {
	dir := stringSetting(cmd, "library-dir", "library_dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return library.NewStore(types.LibraryConfig{
		LibraryDir: dir,
		MaxResults: maxResults,
	})
}

func libraryOptsFromFlags(cmd *cobra.Command, args []string) library.QueryOptions {
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	minCitations, _ := cmd.Flags().GetInt("min-citations")
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:        strings.Join(args, " "),
		YearFrom:     yearFrom,
		YearTo:       yearTo,
		MinCitations: minCitations,
		MaxResults:   limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("library-dir", "library", "directory holding the library database")
	libraryCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	// Search flags.
	librarySearchCmd.Flags().Int("year-from", 0, "earliest publication year")
	librarySearchCmd.Flags().Int("year-to", 0, "latest publication year")
	librarySearchCmd.Flags().Int("min-citations", 0, "minimum citation count")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	// List flags.
	libraryListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use default)")

	// Export flags.
	libraryExportCmd.Flags().StringP("output", "o", "", "output file path")
	libraryExportCmd.Flags().StringP("format", "f", "csv", "output format: csv, json, bibtex, or csl")
	libraryExportCmd.Flags().Int("year-from", 0, "earliest publication year")
	libraryExportCmd.Flags().Int("year-to", 0, "latest publication year")
	libraryExportCmd.Flags().Int("min-citations", 0, "minimum citation count")

	// Wire subcommands.
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)

	rootCmd.AddCommand(libraryCmd)
}
