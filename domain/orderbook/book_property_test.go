package orderbook

import (
	"math/rand"
	"testing"
)

// checkInvariants asserts the structural invariants that must hold after
// every public operation.
func checkInvariants(t *testing.T, b *Book) {
	t.Helper()

	// 1. No crossed book at rest.
	if bb, bs := b.BestBuy(), b.BestSell(); bb != 0 && bs != 0 && bb >= bs {
		t.Fatalf("crossed book: best buy %d >= best sell %d", bb, bs)
	}

	// 2/4. Sorted lists strictly monotonic and as long as the side maps.
	buys := b.BuyPrices()
	for i := 1; i < len(buys); i++ {
		if buys[i] >= buys[i-1] {
			t.Fatalf("buy prices not strictly decreasing: %v", buys)
		}
	}
	sells := b.SellPrices()
	for i := 1; i < len(sells); i++ {
		if sells[i] <= sells[i-1] {
			t.Fatalf("sell prices not strictly increasing: %v", sells)
		}
	}
	if len(buys) != b.BuyLevelCount() {
		t.Fatalf("buy list has %d levels, map has %d", len(buys), b.BuyLevelCount())
	}
	if len(sells) != b.SellLevelCount() {
		t.Fatalf("sell list has %d levels, map has %d", len(sells), b.SellLevelCount())
	}

	// 3. id index matches the active orders on the levels; per-level
	// bookkeeping matches the FIFO contents.
	active := 0
	walk := func(lvl *Level) bool {
		count := 0
		var vol Volume
		for o := lvl.Head(); o != nil; o = o.Next() {
			if o.Status != Active {
				t.Fatalf("non-active order %d resting at level %d", o.ID, lvl.Price)
			}
			if o.Price != lvl.Price {
				t.Fatalf("order %d price %d on level %d", o.ID, o.Price, lvl.Price)
			}
			count++
			vol += o.Remaining
			active++
		}
		if count != lvl.OrderCount {
			t.Fatalf("level %d count %d, FIFO length %d", lvl.Price, lvl.OrderCount, count)
		}
		if vol != lvl.TotalVolume {
			t.Fatalf("level %d volume %d, FIFO sum %d", lvl.Price, lvl.TotalVolume, vol)
		}
		return true
	}
	b.WalkBuys(walk)
	b.WalkSells(walk)

	if active != b.RestingOrders() {
		t.Fatalf("id index holds %d orders, levels hold %d", b.RestingOrders(), active)
	}
}

func TestRandomStreamInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := New(4096)

	var live []ID
	next := ID(1)

	var traded, cancelled, submitted Volume

	for i := 0; i < 20_000; i++ {
		if rng.Float64() < 0.25 && len(live) > 0 {
			idx := rng.Intn(len(live))
			id := live[idx]
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]

			if o, ok := b.idToOrder.Get(id); ok {
				cancelled += o.Remaining
			}
			b.DeleteOrder(id)
		} else {
			id := next
			next++
			side := Buy
			if rng.Intn(2) == 1 {
				side = Sell
			}
			price := Price(95 + rng.Intn(11))
			vol := Volume(1 + rng.Intn(100))
			submitted += vol

			for _, tr := range b.PlaceOrder(id, ID(rng.Intn(16)), side, price, vol) {
				traded += 2 * tr.Volume // consumes both sides
			}
			if b.OrderStatus(id) == Active {
				live = append(live, id)
			}
		}

		if i%251 == 0 {
			checkInvariants(t, b)
		}
	}
	checkInvariants(t, b)

	// Conservation: every submitted share is either traded away (counted
	// on both sides), cancelled, or still resting.
	var resting Volume
	walk := func(lvl *Level) bool {
		resting += lvl.TotalVolume
		return true
	}
	b.WalkBuys(walk)
	b.WalkSells(walk)

	if traded+cancelled+resting != submitted {
		t.Fatalf("conservation broken: traded %d + cancelled %d + resting %d != submitted %d",
			traded, cancelled, resting, submitted)
	}
}

func TestCancelTwiceEqualsOnce(t *testing.T) {
	run := func(double bool) (Price, Price, int) {
		b := New(1024)
		b.PlaceOrder(1, 0, Buy, 100, 10)
		b.PlaceOrder(2, 0, Buy, 99, 10)
		b.PlaceOrder(3, 0, Sell, 101, 10)

		b.DeleteOrder(2)
		if double {
			b.DeleteOrder(2)
		}
		return b.BestBuy(), b.BestSell(), b.RestingOrders()
	}

	bb1, bs1, n1 := run(false)
	bb2, bs2, n2 := run(true)
	if bb1 != bb2 || bs1 != bs2 || n1 != n2 {
		t.Fatal("double cancel diverged from single cancel")
	}
}
