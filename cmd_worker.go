package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/consumer"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume eventos de documentos subidos y corre extracción + carga",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		docs, err := newDocumentSource(ctx)
		if err != nil {
			return err
		}

		pubConn, pub, events, err := newPublisher()
		if err != nil {
			return err
		}
		defer pubConn.Close()
		defer pub.Close()

		etlSvc, err := newEtlService(db, events, nil)
		if err != nil {
			return err
		}

		conn, err := config.RabbitConn(settings.MQ)
		if err != nil {
			return err
		}
		defer conn.Close()

		listener := consumer.NewListener(docs, etlSvc, settings.ETL.StagingPath, logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- listener.Start(conn, settings.MQ.Queue)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("deteniendo worker", zap.String("queue", settings.MQ.Queue))
			listener.Close()
			return nil
		}
	},
}
