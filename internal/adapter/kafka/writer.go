package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/accident-dashboard/internal/config"
	"github.com/couchcryptid/accident-dashboard/internal/dashboard"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes dashboard payload snapshots to a Kafka topic.
// It implements dashboard.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one payload and writes it keyed by view name, so all
// snapshots of a view land on the same partition.
func (w *Writer) Publish(ctx context.Context, p dashboard.Payload) error {
	msg, err := serializeToMessage(p)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	w.logger.Debug("snapshot published", "view", p.View, "criteria", p.Criteria, "bytes", len(msg.Value))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a payload into a Kafka message.
func serializeToMessage(p dashboard.Payload) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize payload: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.View),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "view", Value: []byte(p.View)},
			{Key: "generated_at", Value: []byte(p.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
