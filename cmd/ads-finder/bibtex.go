package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/pkg/types"
)

var bibtexCmd = &cobra.Command{
	Use:   "bibtex bibcode [bibcode...]",
	Short: "Fetch BibTeX entries for explicit bibcodes",
	Long: `Bibtex exports citation entries for the given bibcodes through the ADS
export API and prints them, or writes them to a file with --output.
Bibcodes the API returns no entry for are reported on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBibTeX,
}

func init() {
	bibtexCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	bibtexCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(bibtexCmd)
}

func runBibTeX(cmd *cobra.Command, args []string) error {
	for _, bibcode := range args {
		if err := ads.ValidateBibcode(bibcode); err != nil {
			return err
		}
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
	}

	key, err := resolveAPIKey(cmd)
	if err != nil {
		return err
	}
	client, err := ads.NewClient(key, cfg)
	if err != nil {
		return err
	}

	entries, err := client.ExportBibTeX(cmd.Context(), args)
	if err != nil {
		return err
	}

	// Assemble in argument order; report anything the API skipped.
	var found []string
	for _, bibcode := range args {
		entry, ok := entries[bibcode]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: no BibTeX entry returned for %s\n", bibcode)
			continue
		}
		found = append(found, entry)
	}
	if len(found) == 0 {
		return fmt.Errorf("no BibTeX entries returned for %d bibcode(s)", len(args))
	}

	text := strings.Join(found, "\n\n") + "\n"
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing BibTeX file: %w", err)
	}
	fmt.Printf("Saved %d entries to %s\n", len(found), output)
	return nil
}
