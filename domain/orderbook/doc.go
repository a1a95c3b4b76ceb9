// Package orderbook implements the single-instrument matching engine:
// price-time-priority matching over an intrusive book representation.
// Orders at one price form an intrusive FIFO queue inside a Level; the
// levels of one side form an intrusive sorted list whose head is the best
// price. Both object kinds live in slab pools, so the hot path allocates
// nothing once the working set is warm.
//
// The book is single-writer and deterministic: every PlaceOrder and
// DeleteOrder runs to completion before the next message is applied, and
// the trade stream is a pure function of the message stream.
package orderbook
