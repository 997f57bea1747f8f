// Package statscmder provides the session statistics command.
package statscmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/cliui"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/config"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/postgres"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/sqlite"
)

type statsCommander struct {
	sessionID   string
	backend     string
	sqlitePath  string
	postgresURL string

	cfg *config.Config
}

const statsLongDesc string = `Show deduplication statistics for a capture session.

Reports the total number of captured chat requests, how many were unique,
and how many duplicate inserts the store prevented.`

const statsShortDesc string = "Show session deduplication statistics"

var statsFlags = []string{
	config.FlagStorageBackend,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, statsFlags)

			cmder.cfg, err = config.Load(v)
			return err
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Session ID to report on (e.g. 20250115_142233)")
	_ = cmd.MarkFlagRequired("session")

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresURL)

	return cmd
}

func (c *statsCommander) run() error {
	ctx := context.Background()

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	stats, err := driver.Stats(ctx, c.sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return fmt.Errorf("store unavailable: %w", err)
		}
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Fprintln(os.Stdout, cliui.RenderStats(stats))

	return nil
}

func (c *statsCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.cfg.Storage.Backend {
	case "sqlite":
		return sqlite.NewDriver(ctx, c.cfg.Storage.SQLitePath)
	case "postgres":
		return postgres.NewDriver(ctx, c.cfg.Storage.PostgresURL)
	default:
		return nil, fmt.Errorf("stats requires a persistent backend, got %q", c.cfg.Storage.Backend)
	}
}
