package main

import (
	"github.com/spf13/cobra"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones del esquema estrella",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.RunMigrations(settings.DB, logger)
	},
}
