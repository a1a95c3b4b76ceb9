// Package sim generates realistic order-flow message streams for the
// benchmark and demo harnesses. Streams are deterministic for a given
// seed, so runs are reproducible and comparable.
package sim

import (
	"math/rand"

	"hermes/domain/orderbook"
)

type MessageType uint8

const (
	MsgNew MessageType = iota
	MsgCancel
)

// Message is one engine input: a new limit order or a cancellation.
type Message struct {
	Type    MessageType
	OrderID orderbook.ID
	AgentID orderbook.ID
	Side    orderbook.Side
	Price   orderbook.Price
	Volume  orderbook.Volume
}

// Params shapes the generated flow.
type Params struct {
	Messages   int
	CancelRate float64 // fraction of messages that cancel a live order
	MatchRate  float64 // fraction of new orders priced at or across mid
	PriceLow   orderbook.Price
	PriceHigh  orderbook.Price
	MinVolume  orderbook.Volume
	MaxVolume  orderbook.Volume
	Agents     int
	Seed       int64
}

// DefaultParams mirrors a liquid single instrument: a narrow band around
// mid, a quarter of flow cancelling, a third of new orders aggressive.
func DefaultParams() Params {
	return Params{
		Messages:   1_000_000,
		CancelRate: 0.25,
		MatchRate:  0.33,
		PriceLow:   9_900,
		PriceHigh:  10_100,
		MinVolume:  1,
		MaxVolume:  500,
		Agents:     64,
		Seed:       42,
	}
}

// Generator produces one message at a time, tracking the live order id
// set so cancels always target a plausibly-resting order.
type Generator struct {
	p      Params
	rng    *rand.Rand
	live   []orderbook.ID
	nextID orderbook.ID
	mid    orderbook.Price
}

func NewGenerator(p Params) *Generator {
	if p.PriceHigh < p.PriceLow+10 {
		panic("sim: price band too narrow")
	}
	return &Generator{
		p:      p,
		rng:    rand.New(rand.NewSource(p.Seed)),
		nextID: 1,
		mid:    (p.PriceLow + p.PriceHigh) / 2,
	}
}

// Next produces the next message of the stream.
func (g *Generator) Next() Message {
	if g.rng.Float64() < g.p.CancelRate && len(g.live) > 0 {
		// Swap-and-pop a random live id.
		idx := g.rng.Intn(len(g.live))
		id := g.live[idx]
		g.live[idx] = g.live[len(g.live)-1]
		g.live = g.live[:len(g.live)-1]
		return Message{Type: MsgCancel, OrderID: id}
	}

	id := g.nextID
	g.nextID++
	side := orderbook.Buy
	if g.rng.Intn(2) == 1 {
		side = orderbook.Sell
	}

	var price orderbook.Price
	if g.rng.Float64() < g.p.MatchRate {
		// Aggressive: priced across mid so it is likely to cross.
		offset := orderbook.Price(g.rng.Intn(6))
		if side == orderbook.Buy {
			price = g.mid + offset
		} else {
			price = g.mid - offset
		}
	} else {
		// Passive: on the order's own side of mid.
		band := uint32(g.mid - g.p.PriceLow)
		offset := orderbook.Price(1 + g.rng.Intn(int(band)))
		if side == orderbook.Buy {
			price = g.mid - offset
		} else {
			price = g.mid + offset
		}
	}

	vol := g.p.MinVolume + orderbook.Volume(g.rng.Int63n(int64(g.p.MaxVolume-g.p.MinVolume+1)))
	g.live = append(g.live, id)

	return Message{
		Type:    MsgNew,
		OrderID: id,
		AgentID: orderbook.ID(1 + g.rng.Intn(g.p.Agents)),
		Side:    side,
		Price:   price,
		Volume:  vol,
	}
}

// Generate pre-builds the whole stream so harnesses can time application
// separately from generation.
func (g *Generator) Generate() []Message {
	out := make([]Message, g.p.Messages)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
