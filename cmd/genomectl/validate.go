package main

import (
	"fmt"
	"os"

	"github.com/genomectl/repogenome/internal/cliui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the persisted Genome against its closed-world invariants",
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

		ok, violations := e.Validate()
		if ok {
			cliui.Success("genome is valid")
			return nil
		}

		cliui.Error("%d invariant violations found", len(violations))
		for _, v := range violations {
			fmt.Printf("  [%s] %s: %s\n", v.Invariant, v.NodeID, v.Detail)
		}
		os.Exit(3)
		return nil
	},
}
