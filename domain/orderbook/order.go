package orderbook

// Order is one resting or in-flight order. Orders are owned by the book's
// order pool; the level FIFO links and the id index are back-references
// only and are mutated exclusively through Level and Book.
type Order struct {
	ID        ID
	AgentID   ID
	Side      Side
	Price     Price
	Initial   Volume
	Remaining Volume
	Status    Status

	prev *Order
	next *Order
}

// fill consumes v shares. v must not exceed the remaining volume; the
// caller computes the min against its counterparty before calling.
func (o *Order) fill(v Volume) {
	if debugChecks && v > o.Remaining {
		panic("orderbook: fill beyond remaining volume")
	}
	o.Remaining -= v
	if o.Remaining == 0 {
		o.Status = Fulfilled
	}
}

// Next is a read-only traversal helper for walkers.
func (o *Order) Next() *Order { return o.next }
