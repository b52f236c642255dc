// Command genomectl builds and serves the repository Genome: a typed
// graph of a codebase's files, symbols, flows, concepts, history, and
// risk, queryable by a human over the CLI or by an agent over the
// stdio Serving Layer.
package main

import (
	"fmt"
	"os"

	"github.com/genomectl/repogenome/internal/cliui"
	"github.com/genomectl/repogenome/internal/config"
	genomeerrors "github.com/genomectl/repogenome/internal/errors"
	"github.com/genomectl/repogenome/internal/logging"
	"github.com/genomectl/repogenome/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	repoRoot    string
	verbose     bool
	noColor     bool
	quiet       bool
	metricsAddr string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		cliui.Error("%v", err)
		os.Exit(genomeerrors.ExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "genomectl",
	Short:   "Build and serve a repository's Genome graph",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cliui.SetNoColor(noColor || quiet)

		level := logging.INFO
		if verbose {
			level = logging.DEBUG
		}
		if err := logging.Initialize(logging.Config{Level: level, JSONFormat: quiet}); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logging.Warn("failed to load config, using defaults", "error", err)
			cfg = config.Default()
		}

		if repoRoot == "" {
			repoRoot, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve repo root: %w", err)
			}
		}

		telemetry.Init()
		if metricsAddr != "" {
			telemetry.ServeHTTP(metricsAddr)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: .repogenome/genome.yaml)")
	rootCmd.PersistentFlags().StringVar(&repoRoot, "repo", "", "repository root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output and color, emit JSON logs")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics at this address (e.g. :9090), disabled by default")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}
