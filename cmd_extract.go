package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

var extractOut string

var extractCmd = &cobra.Command{
	Use:   "extract <s3-key>...",
	Short: "Analiza PDF de horarios en S3 con Textract y escribe el CSV de staging",
	Long: `Cada key debe terminar en _<PROGRAMA> antes de la extensión
(por ejemplo uploads/horario_ITI.pdf) para asignar el programa académico.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := newDocumentSource(cmd.Context())
		if err != nil {
			return err
		}
		records, err := docs.Extract(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := extractOut
		if out == "" {
			out = settings.ETL.StagingPath
		}
		if err := source.WriteStagingFile(out, records); err != nil {
			return err
		}
		logger.Info("staging escrito", zap.String("ruta", out), zap.Int("registros", len(records)))
		fmt.Fprintf(cmd.OutOrStdout(), "%d registros escritos en %s\n", len(records), out)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "ruta del CSV (por defecto etl.staging_path)")
}
