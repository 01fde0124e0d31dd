package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Hosting/pkg/kafka/broker"
	"github.com/segmentio/kafka-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultBatchTimeout = 50 * time.Millisecond
)

type Producer struct {
	connAttempts int
	connTimeout  time.Duration
	batchTimeout time.Duration

	brokers []string
	topic   string
	Writer  *kafka.Writer
}

func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Producer, error) {
	p := &Producer{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		batchTimeout: _defaultBatchTimeout,
		brokers:      brokers,
		topic:        topic,
	}

	for _, opt := range opts {
		opt(p)
	}

	err := broker.WaitReady(ctx, "Kafka producer", p.brokers, p.connAttempts, p.connTimeout)
	if err != nil {
		return nil, fmt.Errorf("Kafka Producer - New: %w", err)
	}

	p.Writer = &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        p.topic,
		Balancer:     &kafka.Hash{}, // events of one image stay ordered within a partition
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: p.batchTimeout,
	}

	return p, nil
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}

	return nil
}
