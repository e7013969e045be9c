package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

var (
	etlCSV          string
	etlS3Keys       []string
	etlRefreshSlots bool
	etlPublish      bool
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Corridas de carga al almacén",
}

var etlRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Normaliza y carga el CSV de staging (o documentos de S3) al almacén",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			records []domain.RawRecord
			origin  string
			err     error
		)
		if len(etlS3Keys) > 0 {
			docs, err := newDocumentSource(ctx)
			if err != nil {
				return err
			}
			if records, err = docs.Extract(ctx, etlS3Keys); err != nil {
				return err
			}
			origin = "s3://" + settings.AWS.Bucket + "/" + strings.Join(etlS3Keys, ",")
		} else {
			origin = etlCSV
			if origin == "" {
				origin = settings.ETL.StagingPath
			}
			if records, err = source.ReadStagingFile(origin); err != nil {
				return err
			}
		}

		db, err := openDB(ctx)
		if err != nil {
			return err
		}

		var notifier etl.Notifier
		if etlPublish && mqEnabled() {
			conn, pub, events, err := newPublisher()
			if err != nil {
				return err
			}
			defer conn.Close()
			defer pub.Close()
			notifier = events
		}

		svc, err := newEtlService(db, notifier, nil)
		if err != nil {
			return err
		}
		report, err := svc.Run(ctx, slices.Values(records), etl.RunOptions{Source: origin, RefreshSlots: etlRefreshSlots})
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func printReport(w io.Writer, r etl.RunReport) {
	fmt.Fprintf(w, "corrida %s (%s)\n", r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  leídos: %d  emitidos: %d\n", r.Read, r.Emitted)
	for _, reason := range slices.Sorted(maps.Keys(r.Rejected)) {
		fmt.Fprintf(w, "  rechazados (%s): %d\n", reason, r.Rejected[reason])
	}
	fmt.Fprintf(w, "  docentes: %d  asignaturas: %d  grupos: %d  espacios: %d\n", r.Teachers, r.Subjects, r.Groups, r.Spaces)
	fmt.Fprintf(w, "  hechos: %d  reemplazados: %d\n", r.Facts, r.Replaced)
	if r.Slots != nil {
		fmt.Fprintf(w, "  slots: %d (de %d hechos)\n", r.Slots.Slots, r.Slots.Facts)
	}
}

func init() {
	etlRunCmd.Flags().StringVar(&etlCSV, "csv", "", "CSV de staging (por defecto etl.staging_path)")
	etlRunCmd.Flags().StringSliceVar(&etlS3Keys, "s3", nil, "keys de S3 a extraer en lugar del CSV")
	etlRunCmd.Flags().BoolVar(&etlRefreshSlots, "refresh-slots", false, "regenerar fact_clase_slot tras la carga")
	etlRunCmd.Flags().BoolVar(&etlPublish, "publish", false, "publicar el evento de carga terminada en RabbitMQ")
	etlRunCmd.MarkFlagsMutuallyExclusive("csv", "s3")

	etlCmd.AddCommand(etlRunCmd)
}
