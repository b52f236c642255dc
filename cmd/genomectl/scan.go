package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/genomectl/repogenome/internal/cliui"
	"github.com/spf13/cobra"
)

var incrementalFlag bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Build (or refresh) the Genome for the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}

		if incrementalFlag {
			if data, err := os.ReadFile(repoRoot + "/" + persistPath()); err == nil {
				_ = e.Load(data)
			}
		}

		bar := cliui.NewSpinner("scanning "+repoRoot, quiet)
		stats, err := e.Scan(context.Background(), incrementalFlag)
		cliui.Finish(bar)
		if err != nil {
			return err
		}

		if quiet {
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(stats)
		}

		cliui.Success("scanned %s: %d nodes, %d edges", repoRoot, stats.NodeCount, stats.EdgeCount)
		if stats.DiagnosticsN > 0 {
			cliui.Warning("%d diagnostics emitted during analysis", stats.DiagnosticsN)
		}
		if stats.Partial {
			cliui.Warning("scan is partial: some files could not be analyzed")
		}
		fmt.Printf("persisted to %s\n", persistPath())
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&incrementalFlag, "incremental", false, "only re-analyze files whose fingerprint changed since the last scan")
}
