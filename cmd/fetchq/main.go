package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fetchq/fetchq/internal/config"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	log.SetFlags(0) // Remove timestamps from logger
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds flag values shared by every subcommand.
type rootOptions struct {
	configFile   string
	baseURL      string
	token        string
	pollInterval time.Duration
	timeout      time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "fetchq",
		Short:        "Queue file downloads on a backend and track them to completion",
		Long: `fetchq submits file-download jobs to a backend that fetches them
out-of-band and tracks their progress by polling the backend's shared
status endpoint until all work is done.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "backend base URL (or FETCHQ_BASE_URL)")
	flags.StringVar(&opts.token, "token", "", "bearer token (or FETCHQ_TOKEN)")
	flags.DurationVar(&opts.pollInterval, "poll-interval", 0, "delay between status polls (default 1s)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 30s)")

	cmd.AddCommand(newSubmitCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))

	return cmd
}

// loadConfig layers file, environment, and flag values.
func (o *rootOptions) loadConfig() (config.Config, error) {
	// A local .env is optional; missing files are fine.
	_ = godotenv.Load()

	cfg := config.Default()
	if o.configFile != "" {
		fileCfg, err := config.LoadFromFile(o.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(config.Config{
		BaseURL:        o.baseURL,
		Token:          o.token,
		PollInterval:   o.pollInterval,
		RequestTimeout: o.timeout,
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
