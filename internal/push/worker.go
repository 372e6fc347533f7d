package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader is the subset of *kafka.Reader the worker uses.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Broadcaster sends a notification to all subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, n Notification) (BroadcastResult, error)
}

// KafkaConfig configures the notification consumer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader creates a consumer-group reader with manual commits.
func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
}

// Worker broadcasts notifications read from Kafka.
type Worker struct {
	reader      KafkaReader
	broadcaster Broadcaster
	logger      *slog.Logger
	backoff     time.Duration
}

// NewWorker creates a Worker. A nil logger discards output.
func NewWorker(reader KafkaReader, b Broadcaster, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{reader: reader, broadcaster: b, logger: logger, backoff: time.Second}
}

// Run consumes until ctx is cancelled or the reader is closed.
// A message is committed once its broadcast finishes. Malformed
// messages are logged and committed so they are not redelivered.
func (w *Worker) Run(ctx context.Context) error {
	defer w.reader.Close()

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			w.logger.Error("kafka fetch failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.backoff):
			}
			continue
		}

		w.handle(ctx, msg)

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("kafka commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg kafka.Message) {
	var n Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		w.logger.Warn("skipping malformed notification", "offset", msg.Offset, "error", err)
		return
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Body) == "" {
		w.logger.Warn("skipping empty notification", "offset", msg.Offset)
		return
	}
	res, err := w.broadcaster.Broadcast(ctx, n)
	if err != nil {
		w.logger.Error("broadcast failed", "offset", msg.Offset, "error", err)
		return
	}
	w.logger.Info("notification broadcast", "offset", msg.Offset, "sent", res.Sent, "failed", res.Failed)
}
