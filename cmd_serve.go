package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	httpserver "github.com/jovas-007/Olap-practica-jovas/internal/http"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el formulario web de consultas, la API de subida y /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		var (
			notifier etl.Notifier
			events   eventservice.EventPublisher
		)
		if mqEnabled() {
			conn, pub, mq, err := newPublisher()
			if err != nil {
				return err
			}
			defer conn.Close()
			defer pub.Close()
			notifier, events = mq, mq
		} else {
			logger.Warn("mq.host vacío: las subidas no se encolarán")
		}

		etlSvc, err := newEtlService(db, notifier, reg)
		if err != nil {
			return err
		}

		deps := httpserver.Deps{
			Query:       newQueryService(db),
			Store:       repository.NewWarehouseRepo(db, logger, settings.ETL.BatchSize),
			Etl:         etlSvc,
			StagingPath: settings.ETL.StagingPath,
			MaxUploadMB: settings.AWS.MaxUploadMB,
			Gatherer:    reg,
			Log:         logger,
		}
		if settings.AWS.Bucket != "" {
			up, err := config.S3ConfigService(ctx, settings.ToS3Config(), settings.AWS.MaxUploadMB)
			if err != nil {
				return err
			}
			deps.Upload = service.NewS3Svc(*up, events, logger)
		}

		srv := &http.Server{
			Addr:              settings.App.Addr,
			Handler:           httpserver.NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("API escuchando", zap.String("addr", srv.Addr), zap.String("periodo", settings.Periodo), zap.String("plan", settings.Plan))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("deteniendo servidor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
