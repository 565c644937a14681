// Package mcpcmder provides the MCP braid server cobra command.
package mcpcmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/braidhq/braid/api/mcp"
	"github.com/braidhq/braid/pkg/config"
	"github.com/braidhq/braid/pkg/logger"
	memoryutils "github.com/braidhq/braid/pkg/memory/utils"
	"github.com/braidhq/braid/pkg/preprocess"
)

type mcpCommander struct {
	port   int
	dbPath string
	debug  bool
	logger *zap.Logger
	cfg    *config.Config
}

const mcpLongDesc string = `Run the braid MCP tool server.

The transport is selected by the port: a positive port serves HTTP/SSE
(GET /, GET /sse, POST /messages); port 0 reads framed protocol messages
from standard input and writes responses to standard output.

Examples:
  braid serve mcp                 Serve over stdio
  braid serve mcp --port 3210     Serve over HTTP/SSE`

const mcpShortDesc string = "Run the braid MCP tool server"

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagMCPPort,
				config.FlagDBPath,
			})
			cmder.cfg = config.FromViper(v)

			return cmder.run(cmd)
		},
	}

	config.AddIntFlag(cmd, fs, config.FlagMCPPort, &cmder.port)
	config.AddStringFlag(cmd, fs, config.FlagDBPath, &cmder.dbPath)

	return cmd
}

func (c *mcpCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	core, err := memoryutils.NewCoreFromConfig(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer core.Close()

	server, err := mcp.NewServer(mcp.Config{
		Core: core,
		Preprocessor: preprocess.New(preprocess.Config{
			Enabled:             c.cfg.Preprocessor.Enabled,
			ConfidenceThreshold: c.cfg.Preprocessor.ConfidenceThreshold,
			SuggestionTopK:      c.cfg.Preprocessor.SuggestionTopK,
		}),
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	if c.cfg.MCP.Port > 0 {
		return server.RunSSE(cmd.Context(), c.cfg.MCP.Port)
	}

	c.logger.Info("no port configured, serving MCP over stdio")
	return server.RunStdio()
}
