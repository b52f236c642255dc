package main

import (
	"context"
	"os"

	"github.com/genomectl/repogenome/internal/cliui"
	"github.com/genomectl/repogenome/internal/serving"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Genome over the stdio Agent Contract protocol",
	Long: `Starts the stdio transport and dispatches newline-framed
{id, kind, name, payload} request messages to the tool and resource
tables, enforcing the Agent Contract's load-before-mutate and
impact-before-edit rules per request message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}

		if data, rerr := os.ReadFile(repoRoot + "/" + persistPath()); rerr == nil {
			if lerr := e.Load(data); lerr != nil {
				cliui.Warning("failed to load persisted genome, starting empty: %v", lerr)
			}
		}

		h := serving.NewHandler()
		serving.RegisterTools(h, e)
		serving.RegisterResources(h, e)

		transport := serving.NewStdioTransport(os.Stdin, os.Stdout, h)
		return transport.Serve(context.Background())
	},
}
