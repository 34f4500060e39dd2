package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/config"
	pgpostgres "github.com/kailas-cloud/linkdex/internal/db/postgres"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the Postgres schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(pgpostgres.Up), string(pgpostgres.Down)},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires database.driver %q, got %q",
					config.DriverPostgres, cfg.Database.Driver)
			}

			dir := pgpostgres.Direction(args[0])
			if err := pgpostgres.Migrate(cfg.Database.URL, dir, steps); err != nil {
				return err
			}
			logger.Info("Migrations applied", zap.String("direction", string(dir)), zap.Int("steps", steps))
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply (0 means all)")
	return cmd
}
