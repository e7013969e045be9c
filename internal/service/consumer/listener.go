package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/wagslane/go-rabbitmq"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
)

type Extractor interface {
	Extract(ctx context.Context, keys []string) ([]domain.RawRecord, error)
}

type Runner interface {
	Run(ctx context.Context, src iter.Seq[domain.RawRecord], opts etl.RunOptions) (etl.RunReport, error)
}

type Listener struct {
	consumer    *rabbitmq.Consumer
	extractor   Extractor
	runner      Runner
	stagingPath string
	timeout     time.Duration
	log         *zap.Logger
}

func NewListener(extractor Extractor, runner Runner, stagingPath string, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{
		extractor:   extractor,
		runner:      runner,
		stagingPath: stagingPath,
		timeout:     30 * time.Minute,
		log:         log,
	}
}

// Start crea el consumidor sobre la cola y bloquea atendiendo mensajes.
func (l *Listener) Start(conn *rabbitmq.Conn, queue string) error {
	c, err := rabbitmq.NewConsumer(conn, queue,
		eventservice.ConsumerOptions(1, eventservice.ScheduleUploadedTopic)...)
	if err != nil {
		return fmt.Errorf("error creando consumidor: %w", err)
	}
	l.consumer = c

	l.log.Info("listener iniciado, esperando mensajes", zap.String("queue", queue))
	return c.Run(l.Handle)
}

func (l *Listener) Close() {
	if l.consumer != nil {
		l.consumer.Close()
	}
}

// Handle despacha cada entrega según su routing key.
func (l *Listener) Handle(d rabbitmq.Delivery) rabbitmq.Action {
	l.log.Info("mensaje recibido", zap.String("routing_key", d.RoutingKey), zap.String("message_id", d.MessageId))

	switch d.RoutingKey {
	case eventservice.ScheduleUploadedTopic:
		var event eventservice.ScheduleUploadedEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			l.log.Error("error parseando ScheduleUploadedEvent", zap.Error(err))
			return rabbitmq.NackDiscard
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		err := l.handleScheduleUploaded(ctx, event)
		switch {
		case err == nil:
			return rabbitmq.Ack
		case errors.Is(err, etl.ErrRunInProgress):
			l.log.Warn("corrida en curso, se reencola el mensaje", zap.String("event_id", event.EventID))
			return rabbitmq.NackRequeue
		default:
			l.log.Error("error procesando horarios", zap.String("event_id", event.EventID), zap.Error(err))
			return rabbitmq.NackDiscard
		}
	default:
		l.log.Warn("no hay handler para routing key", zap.String("routing_key", d.RoutingKey))
		return rabbitmq.NackDiscard
	}
}
