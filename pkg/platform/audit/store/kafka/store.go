// Package kafka publishes audit events to a Kafka topic for downstream
// consumers such as a SIEM.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "academy/pkg/platform/audit"
	"academy/pkg/platform/circuit"
)

// ErrCircuitOpen is returned while the broker is considered unhealthy.
var ErrCircuitOpen = errors.New("audit kafka sink circuit open")

// Producer is the subset of *kgo.Client used by the sink.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store produces one JSON record per event, keyed by subject so events about
// one certificate or course stay ordered within a partition.
type Store struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	skipped  atomic.Uint64
}

const retryEvery = 5

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

func New(producer Producer, topic string, opts ...Option) *Store {
	s := &Store{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("audit-kafka", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append produces the event synchronously. While the circuit is open every
// fifth event retries the broker; the rest are dropped with ErrCircuitOpen.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if s.breaker.IsOpen() && s.skipped.Add(1)%retryEvery != 0 {
		return ErrCircuitOpen
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}

	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
			s.logger.WarnContext(ctx, "audit kafka sink degraded", "topic", s.topic, "error", err)
		}
		if s.breaker.IsOpen() {
			return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
		s.logger.InfoContext(ctx, "audit kafka sink recovered", "topic", s.topic)
	}
	return nil
}
