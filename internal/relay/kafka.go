package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mrzor/file-tracer/internal/etw"
)

// DefaultProduceTimeout bounds one synchronous produce.
const DefaultProduceTimeout = 5 * time.Second

// KafkaProducer is the producing side of a Kafka client.
type KafkaProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// NewKafkaClient creates a franz-go client producing to topic by default.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("file-tracer"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

// KafkaSubscriber produces every event to one topic.
type KafkaSubscriber struct {
	producer KafkaProducer
	topic    string
	timeout  time.Duration
}

// NewKafkaSubscriber creates a subscriber producing to topic.
func NewKafkaSubscriber(producer KafkaProducer, topic string) *KafkaSubscriber {
	return &KafkaSubscriber{
		producer: producer,
		topic:    topic,
		timeout:  DefaultProduceTimeout,
	}
}

// Handle is a publisher.Subscriber.
func (s *KafkaSubscriber) Handle(ev *etw.Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	record := &kgo.Record{
		Topic: s.topic,
		Key:   partitionKey(ev),
		Value: data,
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", s.topic, err)
	}
	return nil
}
