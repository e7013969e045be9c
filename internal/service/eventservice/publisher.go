package eventservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wagslane/go-rabbitmq"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
)

// Publisher es la parte de *rabbitmq.Publisher que se usa aquí.
type Publisher interface {
	PublishWithContext(ctx context.Context, data []byte, routingKeys []string, optionFuncs ...func(*rabbitmq.PublishOptions)) error
}

type EventPublisher interface {
	PublishScheduleUploaded(ctx context.Context, e ScheduleUploadedEvent) error
	PublishLoadCompleted(ctx context.Context, e LoadCompletedEvent) error
}

type MQPublisher struct {
	pub Publisher
	log *zap.Logger
}

func NewMQPublisher(pub Publisher, log *zap.Logger) *MQPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQPublisher{pub: pub, log: log}
}

func (p *MQPublisher) PublishScheduleUploaded(ctx context.Context, e ScheduleUploadedEvent) error {
	fillBase(&e.BaseEvent, "schedule.uploaded")
	return p.publishJSON(ctx, ScheduleUploadedTopic, e.BaseEvent, e)
}

func (p *MQPublisher) PublishLoadCompleted(ctx context.Context, e LoadCompletedEvent) error {
	fillBase(&e.BaseEvent, "load.completed")
	return p.publishJSON(ctx, LoadCompletedTopic, e.BaseEvent, e)
}

// RunCompleted publica el reporte de una corrida ETL terminada.
func (p *MQPublisher) RunCompleted(ctx context.Context, report etl.RunReport) error {
	e := LoadCompletedEvent{
		BaseEvent: BaseEvent{CorrelationID: report.RunID.String(), Source: "etl"},
		RunID:     report.RunID,
		Fuente:    report.Source,
		Leidos:    report.Read,
		Emitidos:  report.Emitted,
		Rechazos:  report.Rejected,
		Hechos:    report.Facts,
		Reemplazo: report.Replaced,
	}
	if report.Slots != nil {
		e.Slots = report.Slots.Slots
	}
	return p.PublishLoadCompleted(ctx, e)
}

func (p *MQPublisher) publishJSON(ctx context.Context, routingKey string, base BaseEvent, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", base.EventType, err)
	}

	p.log.Info("publicando evento",
		zap.String("routing_key", routingKey),
		zap.String("event_id", base.EventID),
		zap.String("correlation_id", base.CorrelationID))

	err = p.pub.PublishWithContext(ctx, body, []string{routingKey},
		rabbitmq.WithPublishOptionsExchange(ExchangeName),
		rabbitmq.WithPublishOptionsContentType("application/json"),
		rabbitmq.WithPublishOptionsPersistentDelivery,
		rabbitmq.WithPublishOptionsMessageID(base.EventID),
		rabbitmq.WithPublishOptionsTimestamp(base.OccurredAt),
		rabbitmq.WithPublishOptionsHeaders(rabbitmq.Table{
			"type":          base.EventType,
			"version":       base.Version,
			"correlationId": base.CorrelationID,
		}),
	)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", routingKey, err)
	}
	return nil
}

func fillBase(b *BaseEvent, eventType string) {
	if b.EventID == "" {
		b.EventID = uuid.New().String()
	}
	if b.EventType == "" {
		b.EventType = eventType
	}
	if b.Version == "" {
		b.Version = "1"
	}
	if b.OccurredAt.IsZero() {
		b.OccurredAt = time.Now().UTC()
	}
}
