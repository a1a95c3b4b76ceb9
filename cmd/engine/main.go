package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hermes/domain/orderbook"
	"hermes/infra/kafka"
	"hermes/infra/outbox"
	"hermes/infra/sequence"
	"hermes/jobs/feed"
	"hermes/service"
	"hermes/sim"
)

func main() {
	var (
		outboxDir = flag.String("outbox", "./outbox_data", "trade outbox directory")
		brokers   = flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
		topic     = flag.String("topic", "hermes.trades", "trade feed topic")
		capacity  = flag.Int("capacity", 1<<20, "order pool sizing hint")
		rate      = flag.Int("rate", 1000, "demo flow messages per second")
	)
	flag.Parse()

	box, err := outbox.Open(*outboxDir)
	if err != nil {
		log.Fatalf("outbox init failed: %v", err)
	}
	defer box.Close()

	book := orderbook.New(*capacity)
	svc := service.New(book, sequence.New(0), box)

	producer := kafka.NewProducer(strings.Split(*brokers, ","), *topic)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := feed.New(box, producer, 250*time.Millisecond)
	go publisher.Run(ctx)

	// Demo flow: a steady trickle of generated messages.
	gen := sim.NewGenerator(sim.Params{
		Messages:   1 << 30,
		CancelRate: 0.25,
		MatchRate:  0.33,
		PriceLow:   9_900,
		PriceHigh:  10_100,
		MinVolume:  1,
		MaxVolume:  500,
		Agents:     64,
		Seed:       time.Now().UnixNano(),
	})

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(*rate))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m := gen.Next()
				if m.Type == sim.MsgCancel {
					svc.Cancel(m.OrderID)
					continue
				}
				if _, err := svc.Place(m.OrderID, m.AgentID, m.Side, m.Price, m.Volume); err != nil {
					log.Printf("[engine] place failed: %v", err)
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("[engine] best %d/%d spread %d resting %d seq %d",
					svc.BestBuy(), svc.BestSell(), svc.Spread(),
					svc.RestingOrders(), svc.LastSeq())
			}
		}
	}()

	log.Printf("[engine] running, feed topic %q", *topic)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("[engine] shutting down")
	cancel()
}
