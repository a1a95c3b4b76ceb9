package orderbook

// Trade records one execution. Price is always the resting (maker) side's
// level price, never the taker's limit.
type Trade struct {
	IncomingID ID
	MatchedID  ID
	Price      Price
	Volume     Volume
}
