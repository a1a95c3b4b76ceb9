package memory

// debugChecks enables contract assertions that are too expensive for the
// hot path. Flip on locally when chasing ownership bugs.
const debugChecks = false

// SlabPool hands out fixed-size slots from contiguous slabs. Slots keep a
// stable address for their whole lifetime, which is what lets the order
// book thread intrusive links through pooled objects.
//
// The free list is a pointer stack pre-grown slab-at-a-time: once the pool
// has reached its working-set size, Alloc and Free touch no allocator.
type SlabPool[T any] struct {
	slabs    [][]T
	free     []*T
	slabSize int
	live     int
}

// NewSlabPool creates a pool holding slabSize objects per slab, pre-sized
// so that initialCapacity allocations need no growth.
func NewSlabPool[T any](slabSize, initialCapacity int) *SlabPool[T] {
	if slabSize <= 0 {
		panic("memory: slab size must be positive")
	}
	p := &SlabPool[T]{slabSize: slabSize}
	for p.Cap() < initialCapacity {
		p.grow()
	}
	if len(p.slabs) == 0 {
		p.grow()
	}
	return p
}

// Alloc pops a zeroed slot from the free list, growing by one slab when
// the list is empty. The returned pointer never moves.
func (p *SlabPool[T]) Alloc() *T {
	if len(p.free) == 0 {
		p.grow()
	}
	v := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.live++
	return v
}

// Free returns a slot to the pool. The slot is zeroed so pooled objects
// drop any references they carried. Passing a pointer that did not come
// from this pool is a contract violation.
func (p *SlabPool[T]) Free(v *T) {
	if v == nil {
		return
	}
	if debugChecks && !p.owns(v) {
		panic("memory: Free of object not allocated from this pool")
	}
	var zero T
	*v = zero
	p.free = append(p.free, v)
	p.live--
}

// Len is the number of live objects.
func (p *SlabPool[T]) Len() int { return p.live }

// Cap is the total slot count across all slabs.
func (p *SlabPool[T]) Cap() int { return len(p.slabs) * p.slabSize }

func (p *SlabPool[T]) grow() {
	slab := make([]T, p.slabSize)
	p.slabs = append(p.slabs, slab)

	// Re-cap the free stack to full pool capacity up front so Free never
	// reallocates mid-run.
	if cap(p.free) < p.Cap() {
		free := make([]*T, len(p.free), p.Cap())
		copy(free, p.free)
		p.free = free
	}
	for i := p.slabSize - 1; i >= 0; i-- {
		p.free = append(p.free, &slab[i])
	}
}

func (p *SlabPool[T]) owns(v *T) bool {
	for _, slab := range p.slabs {
		for i := range slab {
			if &slab[i] == v {
				return true
			}
		}
	}
	return false
}
