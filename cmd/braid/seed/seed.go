// Package seedcmder provides the seed command for batch-ingesting events
// from a newline-delimited text file.
package seedcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/braidhq/braid/pkg/cliui"
	"github.com/braidhq/braid/pkg/config"
	"github.com/braidhq/braid/pkg/logger"
	"github.com/braidhq/braid/pkg/memory"
	memoryutils "github.com/braidhq/braid/pkg/memory/utils"
)

const seedLongDesc string = `Batch-ingest events from a file.

Reads the file as one event per line (blank lines are skipped) and adds each
through the full ingest path: embedding, causal linking, persistence.
Individual failures are reported but never abort the batch.

Examples:
  braid seed events.txt
  braid seed events.txt --db ./causal_memory.db`

const seedShortDesc string = "Batch-ingest events from a file"

type seedCommander struct {
	dbPath string
	debug  bool
	cfg    *config.Config
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}
	fs := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagDBPath})
			cmder.cfg = config.FromViper(v)

			return cmder.run(cmd.Context(), args[0])
		},
	}

	config.AddStringFlag(cmd, fs, config.FlagDBPath, &cmder.dbPath)

	return cmd
}

func (c *seedCommander) run(ctx context.Context, path string) error {
	texts, err := readLines(path)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no events found in %s", path)
	}

	log := logger.NewLogger(c.debug)
	defer log.Sync()

	core, err := memoryutils.NewCoreFromConfig(c.cfg, log)
	if err != nil {
		return err
	}
	defer core.Close()

	var result memory.BatchResult
	if err := cliui.Step(os.Stdout, fmt.Sprintf("Ingesting %d events", len(texts)), func() error {
		result = core.AddEventsBatch(ctx, texts)
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Ingested %s events %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(result.Successful)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d failed of %d)", result.Failed, result.Total)),
	)

	for _, itemErr := range result.Errors {
		fmt.Printf("  %s line %d: %s\n", cliui.FailMark, itemErr.Index+1, itemErr.Message)
	}

	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return lines, nil
}
