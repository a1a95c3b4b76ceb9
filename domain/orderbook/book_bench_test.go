package orderbook

import "testing"

func BenchmarkPlacePassive(b *testing.B) {
	book := New(max(b.N, 1<<20))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Spread across a narrow price band, never crossing.
		book.PlaceOrder(ID(i+1), 1, Buy, Price(90+i%10), 100)
	}
}

func BenchmarkPlaceAndCancel(b *testing.B) {
	book := New(max(b.N, 1<<20))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := ID(i + 1)
		book.PlaceOrder(id, 1, Buy, Price(90+i%10), 100)
		book.DeleteOrder(id)
	}
}

func BenchmarkMatchHeavy(b *testing.B) {
	book := New(max(b.N*2, 1<<20))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := ID(i*2 + 1)
		book.PlaceOrder(id, 1, Buy, 100, 100)
		book.PlaceOrder(id+1, 2, Sell, 100, 100)
	}
}

func BenchmarkDeepWalk(b *testing.B) {
	book := New(1 << 20)
	for i := 0; i < 100_000; i++ {
		if i%2 == 0 {
			book.PlaceOrder(ID(i+1), 1, Buy, Price(50+i%50), 10)
		} else {
			book.PlaceOrder(ID(i+1), 1, Sell, Price(101+i%50), 10)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// One aggressive one-share order priced through the whole ask
		// side; it fills at the best ask.
		book.PlaceOrder(ID(1_000_000+i), 3, Buy, 150, 1)
	}
}
