package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vanshika/addrlink/internal/domain"
)

// ReportEventType labels report envelopes on the topic.
const ReportEventType = "addrlink.report"

// ErrNoBrokers is returned when a Kafka publisher is requested without brokers.
var ErrNoBrokers = errors.New("kafka brokers are required")

// Publisher hands finished reports to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
	Close() error
}

// Envelope wraps every message written to the report topic.
type Envelope struct {
	Type string          `json:"type"`
	TS   int64           `json:"ts"`
	Data json.RawMessage `json:"data"`
}

// KafkaPublisher writes reports to a topic, keyed by report ID.
type KafkaPublisher struct {
	topic string
	sp    sarama.SyncProducer
	nowFn func() time.Time
}

// NewKafkaPublisher connects a synchronous producer to the brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	sp, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(sp, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(sp sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, sp: sp, nowFn: time.Now}
}

// ProducerConfig returns the producer settings used for report publishing.
func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	// SyncProducer requires both.
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Version = sarama.V2_1_0_0
	return cfg
}

// Publish sends the report and waits for the broker ack.
func (p *KafkaPublisher) Publish(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	b, err := json.Marshal(Envelope{Type: ReportEventType, TS: p.nowFn().UnixMilli(), Data: data})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(report.ID),
		Value: sarama.ByteEncoder(b),
	}
	if _, _, err := p.sp.SendMessage(msg); err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	if p.sp != nil {
		return p.sp.Close()
	}
	return nil
}

// Nop discards reports. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Report) error { return nil }
func (Nop) Close() error { return nil }
