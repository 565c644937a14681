// Package statuscmder provides the status command for checking a running
// braid server's health and store statistics.
package statuscmder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/braidhq/braid/api"
	"github.com/braidhq/braid/pkg/cliui"
)

const statusLongDesc string = `Show the health and store statistics of a running braid server.

Examples:
  braid status
  braid status --target http://localhost:8000`

const statusShortDesc string = "Show server health and stats"

type statusCommander struct {
	target string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.target, "target", "t", "http://localhost:8000", "Base URL of the braid API server")

	return cmd
}

func (c *statusCommander) run() error {
	client := &http.Client{Timeout: 5 * time.Second}

	var health api.HealthResponse
	if err := getJSON(client, c.target+"/health", &health); err != nil {
		return fmt.Errorf("fetching health: %w", err)
	}

	fmt.Printf("\n  %s  %s %s\n",
		cliui.KeyStyle.Render("Status:  "),
		cliui.Mark(healthErr(health)),
		cliui.ValueStyle.Render(health.Status),
	)
	fmt.Printf("  %s  %s\n",
		cliui.KeyStyle.Render("Version: "),
		cliui.ValueStyle.Render(health.Version),
	)

	var stats api.StatsResponse
	if err := getJSON(client, c.target+"/stats", &stats); err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}

	fmt.Printf("  %s  %s total, %s linked, %s orphans %s\n\n",
		cliui.KeyStyle.Render("Events:  "),
		cliui.NameStyle.Render(strconv.FormatInt(stats.TotalEvents, 10)),
		cliui.NameStyle.Render(strconv.FormatInt(stats.LinkedEvents, 10)),
		cliui.NameStyle.Render(strconv.FormatInt(stats.OrphanEvents, 10)),
		cliui.DimStyle.Render(fmt.Sprintf("(%.0f%% chained)", stats.ChainCoverage*100)),
	)

	return nil
}

func healthErr(health api.HealthResponse) error {
	if health.DatabaseConnected {
		return nil
	}
	return fmt.Errorf("database disconnected")
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
