package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/snf-facility-pages/internal/config"
	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// Header keys set on every published summary.
const (
	HeaderRunID       = "run_id"
	HeaderGeneratedAt = "generated_at"
)

// Writer publishes facility summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	brokers []string
	topic   string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
// Messages are keyed by CCN so every run's summary of a facility lands on the
// same partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, brokers: cfg.KafkaBrokers, topic: cfg.KafkaTopic, logger: logger}
}

// EnsureTopic creates the summary topic through the cluster controller.
// An existing topic is not an error; any other broker refusal is.
func (w *Writer) EnsureTopic(ctx context.Context, partitions int) error {
	if len(w.brokers) == 0 {
		return errors.New("ensure topic: no brokers configured")
	}
	conn, err := kafkago.DialContext(ctx, "tcp", w.brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", w.brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	c, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer c.Close()

	err = c.CreateTopics(kafkago.TopicConfig{
		Topic:             w.topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err = topicCreateErr(err); err != nil {
		return fmt.Errorf("create topic %s: %w", w.topic, err)
	}
	w.logger.Debug("topic ready", "topic", w.topic, "partitions", partitions)
	return nil
}

// topicCreateErr drops the broker's TopicAlreadyExists reply.
func topicCreateErr(err error) error {
	if errors.Is(err, kafkago.TopicAlreadyExists) {
		return nil
	}
	return err
}

// Publish serializes and publishes summaries in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, runID string, summaries []domain.FacilitySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(runID, summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), w.topic, err)
	}
	w.logger.Debug("summaries published", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FacilitySummary into a Kafka message.
func serializeToMessage(runID string, s domain.FacilitySummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize facility summary %s: %w", s.CCN, err)
	}
	return kafkago.Message{
		Key:   []byte(s.CCN),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRunID, Value: []byte(runID)},
			{Key: HeaderGeneratedAt, Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
