package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"certo/internal/platform/config"
)

// KafkaPublisher produces lifecycle events to a Kafka topic, keyed by
// credential ID so replays of a single credential stay ordered.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, cfg.Topic); err != nil {
		// Topic may already exist; anything else is surfaced at first produce.
		logger.DebugContext(ctx, "audit topic create",
			"topic", cfg.Topic,
			"result", err.Error(),
		)
	}

	return &KafkaPublisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.CredentialID),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}

var _ Publisher = (*KafkaPublisher)(nil)

// Fanout emits each event to every publisher, logging rather than failing
// when a secondary sink is down. The first publisher is authoritative.
type Fanout struct {
	primary   Publisher
	secondary []Publisher
	logger    *slog.Logger
}

func NewFanout(logger *slog.Logger, primary Publisher, secondary ...Publisher) *Fanout {
	return &Fanout{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fanout) Emit(ctx context.Context, event Event) error {
	if err := f.primary.Emit(ctx, event); err != nil {
		return err
	}
	for _, p := range f.secondary {
		if err := p.Emit(ctx, event); err != nil {
			f.logger.WarnContext(ctx, "secondary audit sink failed",
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (f *Fanout) Close() error {
	err := f.primary.Close()
	for _, p := range f.secondary {
		_ = p.Close()
	}
	return err
}

var _ Publisher = (*Fanout)(nil)
