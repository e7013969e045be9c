package eventservice

import "github.com/wagslane/go-rabbitmq"

const (
	ExchangeKindTopic = "topic"
	ExchangeName      = "horarios.events"
)

const (
	ScheduleUploadedTopic = "horarios.schedule.uploaded"
	LoadCompletedTopic    = "horarios.load.completed"
)

// PublisherOptions declara el exchange topic durable al crear el publisher.
func PublisherOptions() []func(*rabbitmq.PublisherOptions) {
	return []func(*rabbitmq.PublisherOptions){
		rabbitmq.WithPublisherOptionsLogging,
		rabbitmq.WithPublisherOptionsExchangeName(ExchangeName),
		rabbitmq.WithPublisherOptionsExchangeKind(ExchangeKindTopic),
		rabbitmq.WithPublisherOptionsExchangeDurable,
		rabbitmq.WithPublisherOptionsExchangeDeclare,
		rabbitmq.WithPublisherOptionsConfirm,
	}
}

// ConsumerOptions enlaza la cola durable del worker a las routing keys dadas.
func ConsumerOptions(concurrency int, routingKeys ...string) []func(*rabbitmq.ConsumerOptions) {
	opts := []func(*rabbitmq.ConsumerOptions){
		rabbitmq.WithConsumerOptionsLogging,
		rabbitmq.WithConsumerOptionsExchangeName(ExchangeName),
		rabbitmq.WithConsumerOptionsExchangeKind(ExchangeKindTopic),
		rabbitmq.WithConsumerOptionsExchangeDurable,
		rabbitmq.WithConsumerOptionsExchangeDeclare,
		rabbitmq.WithConsumerOptionsQueueDurable,
		rabbitmq.WithConsumerOptionsConcurrency(max(concurrency, 1)),
	}
	for _, rk := range routingKeys {
		opts = append(opts, rabbitmq.WithConsumerOptionsRoutingKey(rk))
	}
	return opts
}
