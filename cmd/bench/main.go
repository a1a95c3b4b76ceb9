package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"hermes/domain/orderbook"
	"hermes/sim"
)

// The harness consumes only the book's public surface: generate the
// message stream up front, apply it in a tight loop, report throughput
// and per-message latency percentiles.
func main() {
	var (
		messages   = flag.Int("messages", 1_000_000, "messages to apply")
		cancelRate = flag.Float64("cancel-rate", 0.25, "fraction of cancels")
		matchRate  = flag.Float64("match-rate", 0.33, "fraction of aggressive orders")
		priceLow   = flag.Uint("price-low", 9_900, "bottom of the price band")
		priceHigh  = flag.Uint("price-high", 10_100, "top of the price band")
		seed       = flag.Int64("seed", 42, "generator seed")
	)
	flag.Parse()

	params := sim.Params{
		Messages:   *messages,
		CancelRate: *cancelRate,
		MatchRate:  *matchRate,
		PriceLow:   orderbook.Price(*priceLow),
		PriceHigh:  orderbook.Price(*priceHigh),
		MinVolume:  1,
		MaxVolume:  500,
		Agents:     64,
		Seed:       *seed,
	}

	log.Printf("[bench] generating %d messages (seed %d)", params.Messages, params.Seed)
	msgs := sim.NewGenerator(params).Generate()

	book := orderbook.New(params.Messages)
	lat := make([]int64, len(msgs))
	trades := 0

	start := time.Now()
	for i, m := range msgs {
		t0 := time.Now()
		if m.Type == sim.MsgCancel {
			book.DeleteOrder(m.OrderID)
		} else {
			trades += len(book.PlaceOrder(m.OrderID, m.AgentID, m.Side, m.Price, m.Volume))
		}
		lat[i] = time.Since(t0).Nanoseconds()
	}
	elapsed := time.Since(start)

	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	pct := func(p float64) int64 {
		idx := int(p * float64(len(lat)-1))
		return lat[idx]
	}

	fmt.Printf("messages     %d\n", len(msgs))
	fmt.Printf("trades       %d\n", trades)
	fmt.Printf("elapsed      %s\n", elapsed)
	fmt.Printf("throughput   %.0f msg/s\n", float64(len(msgs))/elapsed.Seconds())
	fmt.Printf("latency p50  %dns\n", pct(0.50))
	fmt.Printf("latency p99  %dns\n", pct(0.99))
	fmt.Printf("latency p999 %dns\n", pct(0.999))
	fmt.Printf("resting      %d (buy levels %d, sell levels %d)\n",
		book.RestingOrders(), book.BuyLevelCount(), book.SellLevelCount())
}
