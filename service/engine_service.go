package service

import (
	"fmt"
	"time"

	"hermes/domain/orderbook"
	"hermes/infra/outbox"
	"hermes/infra/sequence"
	"hermes/infra/wire"
)

// EngineService applies order messages to the book and hands every
// resulting execution to the outbox for the feed publisher. All methods
// must be called from a single goroutine: the core is single-writer and
// the service adds no locking.
type EngineService struct {
	book *orderbook.Book
	seq  *sequence.Sequencer
	box  *outbox.Outbox // nil disables the feed

	scratch []byte
}

func New(book *orderbook.Book, seq *sequence.Sequencer, box *outbox.Outbox) *EngineService {
	return &EngineService{
		book:    book,
		seq:     seq,
		box:     box,
		scratch: make([]byte, 0, 128),
	}
}

// Place applies one new order. The returned trades alias the book's
// internal buffer and are valid until the next Place call.
func (s *EngineService) Place(id, agent orderbook.ID, side orderbook.Side, price orderbook.Price, vol orderbook.Volume) ([]orderbook.Trade, error) {
	trades := s.book.PlaceOrder(id, agent, side, price, vol)
	if s.box == nil {
		return trades, nil
	}

	now := time.Now().UnixNano()
	for i := range trades {
		seq := s.seq.Next()
		ev := wire.Event{
			Seq:        seq,
			IncomingID: uint64(trades[i].IncomingID),
			MatchedID:  uint64(trades[i].MatchedID),
			Price:      uint32(trades[i].Price),
			Volume:     uint64(trades[i].Volume),
			UnixNanos:  now,
		}
		s.scratch = wire.AppendEvent(s.scratch[:0], &ev)
		if err := s.box.Put(seq, wire.Frame(s.scratch)); err != nil {
			return trades, fmt.Errorf("service: persist trade seq %d: %w", seq, err)
		}
	}
	return trades, nil
}

// Cancel applies one cancellation. Unknown ids are a no-op.
func (s *EngineService) Cancel(id orderbook.ID) {
	s.book.DeleteOrder(id)
}

// ---- queries ----

func (s *EngineService) BestBuy() orderbook.Price  { return s.book.BestBuy() }
func (s *EngineService) BestSell() orderbook.Price { return s.book.BestSell() }
func (s *EngineService) Spread() orderbook.Price   { return s.book.Spread() }
func (s *EngineService) MidPrice() float64         { return s.book.MidPrice() }
func (s *EngineService) RestingOrders() int        { return s.book.RestingOrders() }
func (s *EngineService) LastSeq() uint64           { return s.seq.Current() }

// DepthLevel is one row of an aggregated depth snapshot.
type DepthLevel struct {
	Price  orderbook.Price
	Volume orderbook.Volume
	Orders int
}

// Depth snapshots up to n levels per side, best first.
func (s *EngineService) Depth(n int) (bids, asks []DepthLevel) {
	if n <= 0 {
		return nil, nil
	}
	collect := func(walk func(func(*orderbook.Level) bool)) []DepthLevel {
		out := make([]DepthLevel, 0, n)
		walk(func(lvl *orderbook.Level) bool {
			out = append(out, DepthLevel{
				Price:  lvl.Price,
				Volume: lvl.TotalVolume,
				Orders: lvl.OrderCount,
			})
			return len(out) < n
		})
		return out
	}
	return collect(s.book.WalkBuys), collect(s.book.WalkSells)
}
