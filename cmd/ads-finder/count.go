package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ads-finder/internal/ads"
	"github.com/pdiddy/ads-finder/pkg/types"
)

var countCmd = &cobra.Command{
	Use:   "count [terms...]",
	Short: "Count matching records without retrieving them",
	Long: `Count runs the query with a zero-row page and prints how many records
match, plus a rough retrieval-time estimate. Useful for sizing a search
before spending the daily API quota on it.`,
	RunE: runCount,
}

func init() {
	registerQueryFlags(countCmd)
	countCmd.Flags().Int("rows", 100, "page size assumed for the retrieval estimate")
	countCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	query := queryFromFlags(cmd, args)
	queryStr, err := query.Build()
	if err != nil {
		return err
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

	total, err := client.Total(cmd.Context(), queryStr, "")
	if err != nil {
		return err
	}

	if total == 0 {
		fmt.Println("No records match.")
		return nil
	}

	rows, _ := cmd.Flags().GetInt("rows")
	pages := len(ads.Pages(total, 0, rows))
	fmt.Printf("%d records match.\n", total)
	fmt.Printf("Retrieval would take %d page requests (approximately %ds or less).\n",
		pages, pages)
	if quota := client.QuotaRemaining(); quota >= 0 {
		fmt.Printf("API quota remaining: %d\n", quota)
	}
	return nil
}
