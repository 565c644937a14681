// Package configcmder provides the config command for managing persistent
// braid configuration stored in the .braid/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent braid configuration.

Configuration is stored as config.toml in the .braid/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.db_path,
  engine.similarity_threshold, engine.soft_link_threshold,
  engine.max_potential_causes, engine.time_decay_hours,
  engine.max_consequence_depth, engine.embedding_cache_size,
  embedding.provider, embedding.target, embedding.model,
  judge.provider, judge.target, judge.model, judge.temperature,
  api.listen, api.cors_origins, mcp.port

Use subcommands to get, set, or list configuration values:
  braid config set <key> <value>    Set a configuration value
  braid config get <key>            Get a configuration value
  braid config list                 List all configuration values

Examples:
  braid config set judge.model gpt-4o-mini
  braid config set engine.similarity_threshold 0.6
  braid config get storage.db_path
  braid config list`

const configShortDesc string = "Manage persistent braid configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
