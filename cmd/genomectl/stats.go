package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for the persisted Genome",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(repoRoot + "/" + persistPath())
		if err != nil {
			return fmt.Errorf("no persisted genome at %s; run scan first: %w", persistPath(), err)
		}
		if err := e.Load(data); err != nil {
			return err
		}

		view, err := e.Stats()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	},
}
