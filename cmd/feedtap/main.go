package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"

	"hermes/infra/wire"
)

// feedtap tails the trade topic and prints decoded events. Operational
// tool: verify what the feed actually carries.
func main() {
	var (
		brokers = flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
		topic   = flag.String("topic", "hermes.trades", "trade feed topic")
		offset  = flag.Int64("offset", sarama.OffsetOldest, "starting offset")
	)
	flag.Parse()

	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumer(strings.Split(*brokers, ","), cfg)
	if err != nil {
		log.Fatalf("consumer init failed: %v", err)
	}
	defer consumer.Close()

	partitions, err := consumer.Partitions(*topic)
	if err != nil {
		log.Fatalf("partitions for %q: %v", *topic, err)
	}

	done := make(chan struct{})
	for _, p := range partitions {
		pc, err := consumer.ConsumePartition(*topic, p, *offset)
		if err != nil {
			log.Fatalf("consume partition %d: %v", p, err)
		}
		go func(pc sarama.PartitionConsumer) {
			defer pc.Close()
			for {
				select {
				case <-done:
					return
				case err := <-pc.Errors():
					log.Printf("[feedtap] %v", err)
				case msg := <-pc.Messages():
					printEvent(msg.Value)
				}
			}
		}(pc)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	close(done)
}

func printEvent(frame []byte) {
	payload, err := wire.Unframe(frame)
	if err != nil {
		log.Printf("[feedtap] bad frame: %v", err)
		return
	}
	ev, err := wire.ParseEvent(payload)
	if err != nil {
		log.Printf("[feedtap] bad event: %v", err)
		return
	}
	log.Printf("seq=%d trade incoming=%d matched=%d price=%d volume=%d",
		ev.Seq, ev.IncomingID, ev.MatchedID, ev.Price, ev.Volume)
}
