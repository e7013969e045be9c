package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
)

var (
	configPath string
	verbose    bool
	useSecret  bool

	logger   *zap.Logger
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "horarios",
	Short: "ETL de horarios de clase a un esquema estrella en PostgreSQL",
	Long: `Extrae los horarios publicados (PDF analizados con Textract), los normaliza
a una clase por día, resuelve dimensiones y carga la tabla de hechos en una
sola transacción. Expone consultas de docentes, materias y edificios por web.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = config.NewLogger(verbose); err != nil {
			return err
		}
		if settings, err = config.Load(configPath); err != nil {
			return err
		}
		if useSecret || settings.AWS.SecretID != "" {
			return applySecret(cmd.Context())
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultSettingsPath, "ruta de settings.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "logs de depuración y SQL de gorm")
	rootCmd.PersistentFlags().BoolVar(&useSecret, "secret", false, "sobrescribir conexiones con el secreto de AWS Secrets Manager")

	rootCmd.AddCommand(migrateCmd, extractCmd, etlCmd, slotsCmd, serveCmd, workerCmd)
}

// applySecret sobrescribe base de datos, S3 y RabbitMQ con el secreto de la aplicación.
func applySecret(ctx context.Context) error {
	secret, err := config.LoadSecretManager(ctx, settings.AWS.Region, settings.AWS.SecretID, logger)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	settings.ApplySecret(*secret)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
