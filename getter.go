package tetris

import (
	"math/rand"
)

type KindGetter interface {
	Next() Kind
}

type KindGetterFunc func() Kind

func (f KindGetterFunc) Next() Kind {
	return f()
}

// BagGetter deals the seven kinds in shuffled order and reshuffles only
// once the bag is empty, so no kind shows up more than twice in any
// seven consecutive draws.
type BagGetter struct {
	randomizer *rand.Rand
	bag        []Kind
}

func NewBagGetter(seed int64) *BagGetter {
	return &BagGetter{
		randomizer: rand.New(rand.NewSource(seed)),
		bag:        make([]Kind, 0, len(Kinds)),
	}
}

func (b *BagGetter) Next() Kind {
	if len(b.bag) == 0 {
		b.refill()
	}
	k := b.bag[len(b.bag)-1]
	b.bag = b.bag[:len(b.bag)-1]
	return k
}

func (b *BagGetter) refill() {
	b.bag = append(b.bag[:0], Kinds[:]...)
	b.randomizer.Shuffle(len(b.bag), func(i, j int) {
		b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
	})
}

// QueueGetter hands out kinds in the order they were pushed. It panics
// when drained.
type QueueGetter struct {
	queue []Kind
}

func NewQueueGetter(kinds ...Kind) *QueueGetter {
	q := &QueueGetter{queue: make([]Kind, 0, len(kinds))}
	q.Push(kinds...)
	return q
}

func (q *QueueGetter) Next() Kind {
	k := q.queue[0]
	q.queue = q.queue[1:]
	return k
}

func (q *QueueGetter) Push(k ...Kind) {
	q.queue = append(q.queue, k...)
}
