package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ads-finder/internal/ads"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Config prints the effective settings after merging defaults, the
config file, environment variables, and flags. The API key is masked.`,
	RunE: runConfig,
}

func init() {
	registerRetrievalFlags(configCmd)
	configCmd.Flags().String("library-dir", "library", "directory holding the library database")

	rootCmd.AddCommand(configCmd)
}

// configView is the yaml-rendered form of the resolved settings.
// Durations are strings so they print as "30s" rather than nanoseconds.
type configView struct {
	APIKey          string `yaml:"api_key"`
	Rows            int    `yaml:"rows"`
	MaxResults      int    `yaml:"max_results"`
	Concurrency     int    `yaml:"concurrency"`
	Sort            string `yaml:"sort"`
	MaxRetries      int    `yaml:"max_retries"`
	Timeout         string `yaml:"timeout"`
	RequestInterval string `yaml:"request_interval"`
	UserAgent       string `yaml:"user_agent"`
	LibraryDir      string `yaml:"library_dir"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := searchConfigFromFlags(cmd)

	// Show the values the client and fetcher would actually use.
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}
	if cfg.Sort == "" {
		cfg.Sort = ads.DefaultSort
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestInterval == 0 {
		cfg.RequestInterval = 100 * time.Millisecond
	}

	key, err := resolveAPIKey(cmd)
	masked := "(not set)"
	if err == nil {
		masked = maskKey(key)
	}

	view := configView{
		APIKey:          masked,
		Rows:            cfg.Rows,
		MaxResults:      cfg.MaxResults,
		Concurrency:     cfg.Concurrency,
		Sort:            cfg.Sort,
		MaxRetries:      cfg.MaxRetries,
		Timeout:         cfg.Timeout.String(),
		RequestInterval: cfg.RequestInterval.String(),
		UserAgent:       defaultUserAgent,
		LibraryDir:      stringSetting(cmd, "library-dir", "library_dir"),
	}

	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Printf("# from %s\n", file)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// maskKey hides all but the last four characters of the API key.
func maskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return "***" + key[len(key)-4:]
}
