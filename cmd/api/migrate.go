package main

import (
	"jotter/internal/database"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or revert the postgres backend schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if args[0] == "down" {
			if err := db.Rollback(); err != nil {
				return err
			}
			log.Info("migrations reverted")
			return nil
		}
		if err := db.Migrate(); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
