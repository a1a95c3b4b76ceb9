// Package feed drains the trade outbox to the market-data topic.
package feed

import (
	"context"
	"log"
	"time"

	"hermes/infra/outbox"
)

// Sender is the transport the publisher pushes frames through. Satisfied
// by kafka.Producer.
type Sender interface {
	Publish(ctx context.Context, seq uint64, frame []byte) error
}

// Publisher re-offers every non-acked outbox record on a fixed tick.
// A record is marked SENT before the publish attempt and ACKED after the
// broker confirms, so delivery is at-least-once: a crash between the two
// marks replays the frame on restart.
type Publisher struct {
	box      *outbox.Outbox
	sender   Sender
	interval time.Duration
}

func New(box *outbox.Outbox, sender Sender, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Publisher{box: box, sender: sender, interval: interval}
}

// Run blocks until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	log.Println("[feed] publisher started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[feed] publisher stopped")
			return
		case <-ticker.C:
			p.publishOnce(ctx)
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) {
	var acked uint64
	err := p.box.ScanPending(func(rec *outbox.Record) error {
		if err := p.box.MarkSent(rec.Seq); err != nil {
			return err
		}
		if err := p.sender.Publish(ctx, rec.Seq, rec.Payload); err != nil {
			// Leave the record SENT; the next pass retries it.
			log.Printf("[feed] publish seq=%d failed: %v", rec.Seq, err)
			return nil
		}
		if err := p.box.MarkAcked(rec.Seq); err != nil {
			return err
		}
		acked = rec.Seq
		return nil
	})
	if err != nil {
		log.Printf("[feed] scan failed: %v", err)
		return
	}
	if acked > 0 {
		if err := p.box.TruncateAcked(acked); err != nil {
			log.Printf("[feed] truncate failed: %v", err)
		}
	}
}
