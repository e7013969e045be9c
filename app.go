package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wagslane/go-rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jovas-007/Olap-practica-jovas/internal/config"
	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/query"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/textract"
)

func openDB(ctx context.Context) (*gorm.DB, error) {
	return config.NewPostgresDB(ctx, settings.DB, verbose, logger)
}

func scope() repository.Scope {
	return repository.Scope{Periodo: settings.Periodo, Plan: settings.Plan}
}

// newEtlService arma el pipeline sobre la base abierta. notifier puede ser nil.
func newEtlService(db *gorm.DB, notifier etl.Notifier, reg prometheus.Registerer) (*etl.EtlService, error) {
	metrics := etl.NewMetrics(reg)
	normalizer, err := etl.NewNormalizer(settings, logger, metrics)
	if err != nil {
		return nil, err
	}
	warehouse := repository.NewWarehouseRepo(db, logger, settings.ETL.BatchSize)
	slots := repository.NewSlotRepo(db, logger, settings.ETL.SlotMinutes, settings.ETL.BatchSize)
	return etl.NewEtlService(normalizer, warehouse, slots, notifier, metrics, logger), nil
}

func newQueryService(db *gorm.DB) *query.Service {
	slots := repository.NewSlotRepo(db, logger, settings.ETL.SlotMinutes, settings.ETL.BatchSize)
	return query.NewService(repository.NewQueryRepo(db), slots, scope(), settings.ETL.StagingPath, logger)
}

func newDocumentSource(ctx context.Context) (*source.DocumentSource, error) {
	if settings.AWS.Bucket == "" {
		return nil, fmt.Errorf("aws.bucket (S3_BUCKET) requerido para extraer documentos")
	}
	analyzer, err := textract.NewTextractService(ctx, settings.AWS.Region, logger)
	if err != nil {
		return nil, err
	}
	parser, err := source.NewTableParser(settings.SalonPattern, logger)
	if err != nil {
		return nil, err
	}
	return source.NewDocumentSource(analyzer, parser, settings.AWS.Bucket, settings.Programas,
		settings.AWS.TextractConcurrency, logger), nil
}

// mqEnabled indica si hay broker configurado.
func mqEnabled() bool {
	return settings.MQ.Host != ""
}

// newPublisher abre la conexión y el publisher de eventos. El llamador cierra ambos.
func newPublisher() (*rabbitmq.Conn, *rabbitmq.Publisher, *eventservice.MQPublisher, error) {
	conn, err := config.RabbitConn(settings.MQ)
	if err != nil {
		return nil, nil, nil, err
	}
	pub, err := rabbitmq.NewPublisher(conn, eventservice.PublisherOptions()...)
	if err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("crear publisher: %w", err)
	}
	pub.NotifyReturn(func(r rabbitmq.Return) {
		logger.Warn("mensaje devuelto por el broker",
			zap.String("routing_key", r.RoutingKey),
			zap.String("reply", r.ReplyText))
	})
	return conn, pub, eventservice.NewMQPublisher(pub, logger), nil
}
