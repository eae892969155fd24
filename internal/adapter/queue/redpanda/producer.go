// Package redpanda publishes profile events to Redpanda (Kafka API).
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

// TopicProfileExtracted is the default topic for completed extractions.
const TopicProfileExtracted = "profile.extracted"

// syncProducer is the subset of *kgo.Client the Producer needs.
type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Producer implements domain.EventPublisher.
type Producer struct {
	client     syncProducer
	topic      string
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

var _ domain.EventPublisher = (*Producer)(nil)

// NewProducer connects to brokers, makes sure the topic exists and returns a
// Producer whose client is traced with kotel hooks.
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("topic", topic))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = TopicProfileExtracted
	}

	tracer := kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))
	kot := kotel.NewKotel(kotel.WithTracer(tracer))

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.WithHooks(kot.Hooks()...),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.DialTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
		// the broker may auto-create or the topic may already be provisioned
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
	return newProducer(client, topic), nil
}

func newProducer(client syncProducer, topic string) *Producer {
	return &Producer{
		client:     client,
		topic:      topic,
		maxRetries: 3,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 200 * time.Millisecond
			bo.MaxInterval = 2 * time.Second
			return bo
		},
	}
}

// PublishProfileExtracted produces ev keyed by the document hash, retrying
// transient failures with exponential backoff.
func (p *Producer) PublishProfileExtracted(ctx context.Context, ev domain.ProfileExtractedEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=redpanda.Publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.DocumentSHA256),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("profile.extracted")},
			{Key: "profile_id", Value: []byte(ev.ID)},
			{Key: "method", Value: []byte(ev.Method)},
		},
	}

	attempt := 0
	op := func() error {
		attempt++
		return p.client.ProduceSync(ctx, record).FirstErr()
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		slog.Error("failed to produce profile event",
			slog.String("profile_id", ev.ID),
			slog.String("topic", p.topic),
			slog.Int("attempts", attempt),
			slog.Any("error", err))
		return fmt.Errorf("op=redpanda.Publish: %w", err)
	}
	slog.Debug("profile event produced", slog.String("profile_id", ev.ID), slog.String("topic", p.topic))
	return nil
}

// Ping checks that at least one broker is reachable.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
