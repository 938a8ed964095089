package main

import (
	"github.com/spf13/cobra"

	"research-agenda/backend/internal/app"
	"research-agenda/backend/pkg/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "执行全部未应用的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(configFile)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Migrate(cmd.Context())
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			db, err := a.Store.DB(cmd.Context())
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return database.RollbackMigrations(sqlDB, steps, a.Logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚步数")
	cmd.AddCommand(down)

	return cmd
}
