// Package kafka publishes order events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher sends OrderCreated events keyed by order id, so events for one order stay ordered.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewProducerConfig is the producer configuration used for order events.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0
	return config
}

// NewPublisher dials brokers with a synchronous producer.
func NewPublisher(brokers []string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, err
	}
	return NewPublisherWithProducer(producer, logger), nil
}

// NewPublisherWithProducer wraps an existing producer, such as a sarama mock.
func NewPublisherWithProducer(producer sarama.SyncProducer, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{producer: producer, topic: domain.OrderCreatedTopic, logger: logger}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka publisher not configured")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
			{Key: []byte("event_type"), Value: []byte(p.topic)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("topic", p.topic),
			slog.Int64("order.id", event.OrderID),
			slog.String("error", err.Error()),
		)
		return err
	}
	p.logger.InfoContext(ctx, "order event published",
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.Int64("order.id", event.OrderID),
	)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
