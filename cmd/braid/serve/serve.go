// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/braidhq/braid/api"
	"github.com/braidhq/braid/api/mcp"
	apicmder "github.com/braidhq/braid/cmd/braid/serve/api"
	mcpcmder "github.com/braidhq/braid/cmd/braid/serve/mcp"
	"github.com/braidhq/braid/pkg/config"
	"github.com/braidhq/braid/pkg/logger"
	memoryutils "github.com/braidhq/braid/pkg/memory/utils"
	"github.com/braidhq/braid/pkg/preprocess"
)

type ServeCommander struct {
	apiListen string
	mcpPort   int
	dbPath    string
	debug     bool
	logger    *zap.Logger
	cfg       *config.Config
}

const serveLongDesc string = `Run braid services.

Use subcommands to run individual services or all services together:
  braid serve          Run the REST API (and MCP SSE server when a port is set)
  braid serve api      Run just the REST API server
  braid serve mcp      Run just the MCP tool server (stdio or SSE)`

const serveShortDesc string = "Run braid services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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
				config.FlagAPIListen,
				config.FlagMCPPort,
				config.FlagDBPath,
			})
			cmder.cfg = config.FromViper(v)

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &cmder.apiListen)
	config.AddIntFlag(cmd, fs, config.FlagMCPPort, &cmder.mcpPort)
	config.AddStringFlag(cmd, fs, config.FlagDBPath, &cmder.dbPath)

	cmd.AddCommand(apicmder.NewAPICmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	core, err := memoryutils.NewCoreFromConfig(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer core.Close()

	apiServer := api.NewServer(api.Config{
		ListenAddr:            c.cfg.API.Listen,
		APIKey:                c.cfg.API.APIKey,
		CORSOrigins:           c.cfg.API.CORSOrigins,
		RateLimitEventsPerMin: c.cfg.API.RateLimitEventsPerMin,
		RateLimitQueryPerMin:  c.cfg.API.RateLimitQueryPerMin,
	}, core, c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// The MCP SSE server only runs alongside the API when a port is set;
	// stdio mode would fight the terminal.
	mcpCtx, cancelMCP := context.WithCancel(ctx)
	defer cancelMCP()

	if c.cfg.MCP.Port > 0 {
		mcpServer, err := mcp.NewServer(mcp.Config{
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

		go func() {
			if err := mcpServer.RunSSE(mcpCtx, c.cfg.MCP.Port); err != nil {
				errChan <- fmt.Errorf("MCP server error: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancelMCP()
		apiServer.Shutdown()
		return nil
	}
}
