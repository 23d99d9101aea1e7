package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/env"
)

// AttributionSink delivers marketing attribution records.
type AttributionSink interface {
	Name() string
	Track(ctx context.Context, a models.MarketingAttribution) error
}

// AttributionTracker is the backend call used by APISink.
type AttributionTracker interface {
	TrackAttribution(ctx context.Context, a models.MarketingAttribution) error
}

// APISink posts records to the backend's tracking endpoint.
type APISink struct {
	tracker AttributionTracker
}

func NewAPISink(tracker AttributionTracker) *APISink {
	return &APISink{tracker: tracker}
}

func (s *APISink) Name() string { return "api" }

func (s *APISink) Track(ctx context.Context, a models.MarketingAttribution) error {
	return s.tracker.TrackAttribution(ctx, a)
}

// messageWriter is the part of *kafka.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes records as JSON, keyed by session id.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

const DefaultAttributionTopic = "marketing.attribution"

// NewKafkaSink creates a writer for brokers (comma separated).
func NewKafkaSink(brokers, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultAttributionTopic
	}
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(addrs...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Track(ctx context.Context, a models.MarketingAttribution) error {
	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attribution: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(a.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("attribution.tracked")},
		},
	}
	if a.Timestamp != nil {
		msg.Time = *a.Timestamp
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish attribution to %s: %w", s.topic, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// SinkFromEnv picks Kafka when KAFKA_BROKERS is set, the backend API
// otherwise.
func SinkFromEnv(tracker AttributionTracker) AttributionSink {
	if brokers := env.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		return NewKafkaSink(brokers, env.GetEnv("KAFKA_ATTRIBUTION_TOPIC", DefaultAttributionTopic))
	}
	return NewAPISink(tracker)
}
