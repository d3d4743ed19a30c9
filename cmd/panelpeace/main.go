// Package main provides the panelpeace command: the API server and a
// terminal client for it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/panel-peace/internal/apiclient"
	"github.com/jonathan/panel-peace/internal/config"
	"github.com/jonathan/panel-peace/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	apiURL      string
	sessionPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "panelpeace",
	Short: "Panel Peace comic production tracker",
	Long: `Panel Peace tracks comic projects through their production workflow: plot, script, pencils, inks, colors, letters and cover.

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the API server (defaults to PANELPEACE_API_URL or config)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Path to the session database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed output")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, environment and flags, in
// increasing priority.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PANELPEACE_API_URL"); v != "" {
		cfg.APIURL = v
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("session") {
		cfg.SessionPath = sessionPath
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openClient builds an API client over the configured session store. The
// returned func releases the store.
func openClient(ctx context.Context, cfg config.Config) (*apiclient.Client, func(), error) {
	var (
		store   apiclient.SessionStore
		release = func() {}
	)
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		store = apiclient.NewMemoryStore()
	default:
		sqlite, err := apiclient.OpenSQLiteStore(ctx, cfg.SessionPath)
		if err != nil {
			return nil, nil, err
		}
		store = sqlite
		release = func() { _ = sqlite.Close() }
	}
	return apiclient.New(cfg.APIURL, apiclient.NewSession(store)), release, nil
}

// withClient loads config, opens a client and runs fn with it.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, release, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, client, observability.NewPrinter(cmd.OutOrStdout(), cfg.Verbose))
}

func say(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
