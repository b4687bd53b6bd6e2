package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !db.IsSQL(cfg.DB.Driver) {
				return fmt.Errorf("driver %q has no schema to migrate", cfg.DB.Driver)
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			version, err := db.Migrate(cmd.Context(), database, cfg.DB.Driver, log)
			if err != nil {
				return err
			}

			log.Info("migrations complete",
				logger.String("driver", cfg.DB.Driver),
				logger.Int("version", int(version)),
			)
			return nil
		},
	}
}
