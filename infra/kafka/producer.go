// Package kafka wraps the feed producer. Messages are keyed by sequence
// so a partitioned topic still preserves per-key ordering and consumers
// can detect gaps.
package kafka

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends one frame keyed by its sequence number.
func (p *Producer) Publish(ctx context.Context, seq uint64, frame []byte) error {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: frame,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
