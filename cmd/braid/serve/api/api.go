// Package apicmder provides the REST API braid server cobra command.
package apicmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/braidhq/braid/api"
	"github.com/braidhq/braid/pkg/config"
	"github.com/braidhq/braid/pkg/logger"
	memoryutils "github.com/braidhq/braid/pkg/memory/utils"
)

type apiCommander struct {
	listen string
	dbPath string
	debug  bool
	logger *zap.Logger
	cfg    *config.Config
}

const apiLongDesc string = `Run the braid REST API server for adding events and querying narratives.`

const apiShortDesc string = "Run the braid REST API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
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
				config.FlagDBPath,
			})
			cmder.cfg = config.FromViper(v)

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, fs, config.FlagDBPath, &cmder.dbPath)

	return cmd
}

func (c *apiCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	core, err := memoryutils.NewCoreFromConfig(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer core.Close()

	server := api.NewServer(api.Config{
		ListenAddr:            c.cfg.API.Listen,
		APIKey:                c.cfg.API.APIKey,
		CORSOrigins:           c.cfg.API.CORSOrigins,
		RateLimitEventsPerMin: c.cfg.API.RateLimitEventsPerMin,
		RateLimitQueryPerMin:  c.cfg.API.RateLimitQueryPerMin,
	}, core, c.logger)

	c.logger.Info("starting API server",
		zap.String("listen", c.cfg.API.Listen),
	)

	return server.Run()
}
