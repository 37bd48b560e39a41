package notifications

import (
	"context"
	"fmt"
	"time"

	"tourly/internal/orders"
	"tourly/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer publishes booking events to Kafka. It satisfies the publisher
// interfaces of both the holds service and the order pipeline.
type Producer interface {
	PublishOrderCommitted(ctx context.Context, order *orders.Order, passengerCount int) error
	PublishRequestSubmitted(ctx context.Context, userID, tourID uuid.UUID, passengerCount int) error
	PublishHoldExpired(ctx context.Context, holdID, userID uuid.UUID, seatCount int) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// ProducerConfig contains configuration for the Kafka event producer
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultProducerConfig returns a default producer configuration
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-events",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

// NewProducer creates a Kafka event producer. All in-sync replicas must
// ack, writes are idempotent, and messages hash-partition by user.
func NewProducer(config *ProducerConfig, log *logger.Logger) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{producer: producer, config: config, log: log}, nil
}

func (p *kafkaProducer) PublishOrderCommitted(ctx context.Context, order *orders.Order, passengerCount int) error {
	event := NewBookingEvent(EventOrderCommitted, order.UserID, order.TourID)
	event.OrderID = &order.ID
	event.ReferenceNo = order.ReferenceNo
	event.DepartureDate = order.DepartureDate
	event.PassengerCount = passengerCount
	event.TotalPrice = order.TotalPrice
	return p.publish(ctx, event)
}

func (p *kafkaProducer) PublishRequestSubmitted(ctx context.Context, userID, tourID uuid.UUID, passengerCount int) error {
	event := NewBookingEvent(EventRequestSubmitted, userID, tourID)
	event.PassengerCount = passengerCount
	return p.publish(ctx, event)
}

func (p *kafkaProducer) PublishHoldExpired(ctx context.Context, holdID, userID uuid.UUID, seatCount int) error {
	event := NewBookingEvent(EventHoldExpired, userID, uuid.Nil)
	event.HoldID = &holdID
	event.PassengerCount = seatCount
	return p.publish(ctx, event)
}

func (p *kafkaProducer) publish(ctx context.Context, event *BookingEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	p.log.Info("booking event published",
		"topic", p.config.Topic,
		"type", string(event.Type),
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// HealthCheck verifies the producer can still round-trip a message.
func (p *kafkaProducer) HealthCheck(ctx context.Context) error {
	event := NewBookingEvent("health.check", uuid.Nil, uuid.Nil)
	payload, err := event.ToJSON()
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder("health"),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}
