// Package braidcmder
package braidcmder

import (
	configcmder "github.com/braidhq/braid/cmd/braid/config"
	seedcmder "github.com/braidhq/braid/cmd/braid/seed"
	servecmder "github.com/braidhq/braid/cmd/braid/serve"
	statuscmder "github.com/braidhq/braid/cmd/braid/status"
	versioncmder "github.com/braidhq/braid/cmd/version"
	"github.com/spf13/cobra"
)

const braidLongDesc string = `Braid is a causal event memory for your agents.

Events are embedded, linked to their most plausible cause, and retrieved as
chronological narratives.

Run services using:
  braid serve          Run the REST API (and MCP SSE server when a port is set)
  braid serve api      Run just the REST API server
  braid serve mcp      Run just the MCP tool server (stdio or SSE)`

const braidShortDesc string = "Braid - Causal Event Memory"

func NewBraidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "braid",
		Short: braidShortDesc,
		Long:  braidLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .braid/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
