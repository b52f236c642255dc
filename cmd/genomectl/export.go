package main

import (
	"fmt"
	"os"

	"github.com/genomectl/repogenome/internal/cliui"
	"github.com/genomectl/repogenome/internal/exportfmt"
	"github.com/spf13/cobra"
)

var exportFormat string
var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted Genome to graphml, dot, csv, cypher, or plantuml",
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

		out := exportOut
		if out == "" {
			out = "genome." + exportFormat
		}
		path, n, err := e.Export(exportfmt.Format(exportFormat), out)
		if err != nil {
			return err
		}
		cliui.Success("wrote %d bytes to %s", n, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "graphml", "graphml|dot|csv|cypher|plantuml")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: genome.<format>)")
}
