// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ads-finder CLI.
// Implements: prd009-ads-search, prd010-paper-library (CLI surface).
// See docs/ARCHITECTURE § Command Interface, § Project Structure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ads-finder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// resolveAPIKey returns the ADS API key from, in order: the --api-key
// flag, the --api-key-file flag, the ADS_FINDER_API_KEY or
// NASA_ADS_API_KEY environment (via viper, which also covers the
// api_key config entry), and .secrets/ads-api-key.
func resolveAPIKey(cmd *cobra.Command) (string, error) {
	if key, _ := cmd.Flags().GetString("api-key"); key != "" {
		return key, nil
	}
	if path, _ := cmd.Flags().GetString("api-key-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading API key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if key := viper.GetString("api_key"); key != "" {
		return key, nil
	}
	if key, ok := loadedSecrets[secrets.APIKeyFile]; ok {
		return key, nil
	}
	return "", fmt.Errorf("no API key configured: use --api-key, ADS_FINDER_API_KEY, api_key in the config file, or .secrets/%s", secrets.APIKeyFile)
}

// rootCmd is the base command for the ads-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "ads-finder",
	Short: "Query NASA ADS for bibliographic metadata",
	Long: `ads-finder queries the NASA Astrophysics Data System (ADS) search API
for papers matching keywords, authors, year ranges, and citation filters.
Results are fetched page by page with bounded parallelism, merged in page
order, and written to CSV, JSON, BibTeX, or CSL YAML.

Retrieved records can be kept in a local SQLite library for offline
full-text search and re-export, since the ADS API enforces a daily
query quota.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ads-finder.yaml or ~/.config/ads-finder/config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "NASA ADS API key (overrides environment and config file)")
	rootCmd.PersistentFlags().String("api-key-file", "", "file containing the NASA ADS API key")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ads-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ads-finder"))
		}
	}

	viper.SetEnvPrefix("ADS_FINDER")
	viper.AutomaticEnv()
	viper.BindEnv("api_key", "ADS_FINDER_API_KEY", "NASA_ADS_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// --- flag/config precedence helpers ---

// intSetting returns the flag value when set on the command line, the
// config value when present in the config file or environment, and the
// flag default otherwise.
func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		os.Exit(1)
	}
}
