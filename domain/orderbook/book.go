package orderbook

import "hermes/infra/memory"

const (
	orderSlabSize = 16384
	levelSlabSize = 1024

	// levelReserve sizes each side's price map for the level count a
	// tick-bounded instrument realistically carries.
	levelReserve = 256
)

// Book is the matching engine root. The two slab pools are the sole
// owners of every Order and Level; the maps, the FIFO links and the
// sorted level lists hold back-references only.
//
// The per-side level lists are kept sorted best-first (bids descending,
// asks ascending), so the list heads ARE the cached best bid and best
// ask. There is no separate top-of-book cache to forget to update.
type Book struct {
	orders *memory.SlabPool[Order]
	levels *memory.SlabPool[Level]

	buyLevels  *memory.FlatHashMap[Price, *Level]
	sellLevels *memory.FlatHashMap[Price, *Level]
	idToOrder  *memory.FlatHashMap[ID, *Order]

	buyHead  *Level
	sellHead *Level

	trades []Trade
}

// New constructs an empty book sized for roughly initialCapacity resting
// orders.
func New(initialCapacity int) *Book {
	if initialCapacity <= 0 {
		initialCapacity = orderSlabSize
	}
	b := &Book{
		orders:     memory.NewSlabPool[Order](orderSlabSize, initialCapacity),
		levels:     memory.NewSlabPool[Level](levelSlabSize, initialCapacity/16),
		buyLevels:  memory.NewFlatHashMap[Price, *Level](levelReserve),
		sellLevels: memory.NewFlatHashMap[Price, *Level](levelReserve),
		idToOrder:  memory.NewFlatHashMap[ID, *Order](initialCapacity),
		trades:     make([]Trade, 0, 64),
	}
	return b
}

// PlaceOrder applies one new limit order: it matches against the opposite
// side as far as the limit crosses, then rests any residual volume.
//
// The returned slice aliases an internal buffer reused across calls; it
// is valid until the next PlaceOrder. A zero price, a zero volume, or an
// id already resting in the book is rejected with an empty result and no
// state change.
func (b *Book) PlaceOrder(id, agent ID, side Side, price Price, vol Volume) []Trade {
	b.trades = b.trades[:0]
	if price == 0 || vol == 0 {
		return b.trades
	}
	if _, dup := b.idToOrder.Get(id); dup {
		return b.trades
	}

	o := b.orders.Alloc()
	*o = Order{
		ID:        id,
		AgentID:   agent,
		Side:      side,
		Price:     price,
		Initial:   vol,
		Remaining: vol,
		Status:    Active,
	}

	if side == Buy {
		for b.sellHead != nil && o.Status != Fulfilled && price >= b.sellHead.Price {
			lvl := b.sellHead
			b.matchAgainstLevel(o, lvl)
			if lvl.isEmpty() {
				b.dropLevel(lvl, Sell)
			}
		}
	} else {
		for b.buyHead != nil && o.Status != Fulfilled && price <= b.buyHead.Price {
			lvl := b.buyHead
			b.matchAgainstLevel(o, lvl)
			if lvl.isEmpty() {
				b.dropLevel(lvl, Buy)
			}
		}
	}

	if o.Status != Fulfilled {
		b.insertResting(o)
	} else {
		b.orders.Free(o)
	}
	return b.trades
}

// matchAgainstLevel fills the incoming order against the level's FIFO
// head until one of them is exhausted. Fully consumed makers are popped,
// de-indexed and freed in place.
func (b *Book) matchAgainstLevel(incoming *Order, lvl *Level) {
	for lvl.head != nil && incoming.Status != Fulfilled {
		maker := lvl.head
		fillVol := min(maker.Remaining, incoming.Remaining)

		maker.fill(fillVol)
		incoming.fill(fillVol)
		lvl.decreaseVolume(fillVol)

		b.trades = append(b.trades, Trade{
			IncomingID: incoming.ID,
			MatchedID:  maker.ID,
			Price:      lvl.Price,
			Volume:     fillVol,
		})

		if maker.Status == Fulfilled {
			lvl.popFront()
			b.idToOrder.Delete(maker.ID)
			b.orders.Free(maker)
		}
	}
}

// DeleteOrder cancels the order's remaining volume. Unknown ids are a
// silent no-op, so cancellation is idempotent.
func (b *Book) DeleteOrder(id ID) {
	o, ok := b.idToOrder.Get(id)
	if !ok {
		return
	}
	b.idToOrder.Delete(id)

	levels := b.buyLevels
	if o.Side == Sell {
		levels = b.sellLevels
	}
	if lvl, found := levels.Get(o.Price); found {
		lvl.erase(o)
		if lvl.isEmpty() {
			b.dropLevel(lvl, o.Side)
		}
	}

	o.Status = Deleted
	b.orders.Free(o)
}

// insertResting parks an unfilled order at the back of its price level,
// creating and splicing the level when the price is fresh.
func (b *Book) insertResting(o *Order) {
	levels := b.buyLevels
	if o.Side == Sell {
		levels = b.sellLevels
	}

	lvl, ok := levels.Get(o.Price)
	if !ok {
		lvl = b.levels.Alloc()
		*lvl = Level{Price: o.Price}
		levels.Put(o.Price, lvl)
		b.spliceLevel(lvl, o.Side)
	}
	lvl.pushBack(o)
	b.idToOrder.Put(o.ID, o)
}

// spliceLevel inserts a fresh level at its sorted position, walking from
// the head. Bids sort descending, asks ascending, so the head is always
// the best price.
func (b *Book) spliceLevel(lvl *Level, side Side) {
	head := b.buyHead
	better := func(a, c Price) bool { return a > c }
	if side == Sell {
		head = b.sellHead
		better = func(a, c Price) bool { return a < c }
	}

	if head == nil || better(lvl.Price, head.Price) {
		lvl.nextLevel = head
		if head != nil {
			head.prevLevel = lvl
		}
		if side == Buy {
			b.buyHead = lvl
		} else {
			b.sellHead = lvl
		}
		return
	}

	cur := head
	for cur.nextLevel != nil && better(cur.nextLevel.Price, lvl.Price) {
		cur = cur.nextLevel
	}
	lvl.nextLevel = cur.nextLevel
	lvl.prevLevel = cur
	if cur.nextLevel != nil {
		cur.nextLevel.prevLevel = lvl
	}
	cur.nextLevel = lvl
}

// dropLevel unlinks a drained level from its side's sorted list, removes
// its price from the side map, and returns it to the level pool.
func (b *Book) dropLevel(lvl *Level, side Side) {
	if lvl.prevLevel != nil {
		lvl.prevLevel.nextLevel = lvl.nextLevel
	} else if side == Buy {
		b.buyHead = lvl.nextLevel
	} else {
		b.sellHead = lvl.nextLevel
	}
	if lvl.nextLevel != nil {
		lvl.nextLevel.prevLevel = lvl.prevLevel
	}
	lvl.prevLevel = nil
	lvl.nextLevel = nil

	if side == Buy {
		b.buyLevels.Delete(lvl.Price)
	} else {
		b.sellLevels.Delete(lvl.Price)
	}
	b.levels.Free(lvl)
}

// ---- queries ----

// BestBuy is the highest resting bid price, or 0 when the side is empty.
func (b *Book) BestBuy() Price {
	if b.buyHead == nil {
		return 0
	}
	return b.buyHead.Price
}

// BestSell is the lowest resting ask price, or 0 when the side is empty.
func (b *Book) BestSell() Price {
	if b.sellHead == nil {
		return 0
	}
	return b.sellHead.Price
}

// Spread is best ask minus best bid, or 0 when either side is empty.
func (b *Book) Spread() Price {
	if b.buyHead == nil || b.sellHead == nil {
		return 0
	}
	return b.sellHead.Price - b.buyHead.Price
}

// MidPrice is the mean of best bid and best ask, or 0 when either side is
// empty.
func (b *Book) MidPrice() float64 {
	if b.buyHead == nil || b.sellHead == nil {
		return 0
	}
	return float64(uint64(b.buyHead.Price)+uint64(b.sellHead.Price)) / 2
}

// BuyPrices snapshots the non-empty bid prices, best first.
func (b *Book) BuyPrices() []Price {
	return collectPrices(b.buyHead)
}

// SellPrices snapshots the non-empty ask prices, best first.
func (b *Book) SellPrices() []Price {
	return collectPrices(b.sellHead)
}

func collectPrices(head *Level) []Price {
	out := make([]Price, 0, 16)
	for lvl := head; lvl != nil; lvl = lvl.nextLevel {
		out = append(out, lvl.Price)
	}
	return out
}

// OrderStatus reports the stored status for a resting order, or Deleted
// for any id the book no longer (or never) tracks.
func (b *Book) OrderStatus(id ID) Status {
	if o, ok := b.idToOrder.Get(id); ok {
		return o.Status
	}
	return Deleted
}

// RestingOrders counts the currently active resting orders.
func (b *Book) RestingOrders() int { return b.idToOrder.Len() }

// BuyLevelCount counts the non-empty bid levels.
func (b *Book) BuyLevelCount() int { return b.buyLevels.Len() }

// SellLevelCount counts the non-empty ask levels.
func (b *Book) SellLevelCount() int { return b.sellLevels.Len() }

// OrderCapacity exposes the order pool capacity for churn tests.
func (b *Book) OrderCapacity() int { return b.orders.Cap() }

// LevelCapacity exposes the level pool capacity for churn tests.
func (b *Book) LevelCapacity() int { return b.levels.Cap() }

// WalkBuys visits the bid levels best-first until fn returns false.
func (b *Book) WalkBuys(fn func(*Level) bool) {
	for lvl := b.buyHead; lvl != nil; lvl = lvl.nextLevel {
		if !fn(lvl) {
			return
		}
	}
}

// WalkSells visits the ask levels best-first until fn returns false.
func (b *Book) WalkSells(fn func(*Level) bool) {
	for lvl := b.sellHead; lvl != nil; lvl = lvl.nextLevel {
		if !fn(lvl) {
			return
		}
	}
}
