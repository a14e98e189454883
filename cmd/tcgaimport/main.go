package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nishad/tcgaimport/internal/config"
	"github.com/nishad/tcgaimport/internal/logging"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	logLevel   string
	noColor    bool
	quiet      bool
)

// Shared state set up before every command
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tcgaimport",
	Short: "Convert TCGA archives into analysis-ready tables",
	Long: `tcgaimport turns mirrored TCGA data archives into genomic matrices,
segment tables and clinical matrices, each with a JSON metadata sidecar.

Archives are located in a local mirror by the URLs listed in a request
file's provenance, extracted into a scratch workspace and converted
according to the platform's extraction rules.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: `  # Build every output of one archive request
  tcgaimport build request.json

  # Build many requests with 8 workers
  tcgaimport batch --workers 8 requests/*.json

  # Verify mirrored archives against their .md5 files
  tcgaimport checksum request.json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		if configPath == "" {
			configPath = config.GetConfigPath()
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $TCGAIMPORT_CONFIG or ~/.config/tcgaimport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checksumCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
