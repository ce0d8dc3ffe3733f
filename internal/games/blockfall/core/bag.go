package core

import "math/rand"

// PieceSource supplies the upcoming pieces.
type PieceSource interface {
	// Next pops the head of the queue.
	Next() Shape
	// Peek returns up to n upcoming shapes without consuming them.
	Peek(n int) []Shape
}

// Bag is a 7-bag randomizer: the queue is topped up with a shuffled copy of
// all seven shapes whenever it holds ShapeCount or fewer entries.
type Bag struct {
	rng   *rand.Rand
	queue []Shape
}

// NewBag creates a bag randomizer driven by rng.
func NewBag(rng *rand.Rand) *Bag {
	b := &Bag{rng: rng}
	b.refill()
	return b
}

func (b *Bag) refill() {
	for len(b.queue) <= ShapeCount {
		set := AllShapes
		b.rng.Shuffle(len(set), func(i, j int) {
			set[i], set[j] = set[j], set[i]
		})
		b.queue = append(b.queue, set[:]...)
	}
}

// Next pops the head of the queue and refills it.
func (b *Bag) Next() Shape {
	s := b.queue[0]
	b.queue = b.queue[1:]
	b.refill()
	return s
}

// Peek returns up to n upcoming shapes.
func (b *Bag) Peek(n int) []Shape {
	if n > len(b.queue) {
		n = len(b.queue)
	}
	out := make([]Shape, n)
	copy(out, b.queue)
	return out
}

// Len returns the current queue length.
func (b *Bag) Len() int {
	return len(b.queue)
}

// SequenceSource replays a fixed list of shapes, then repeats the last one.
// Useful for deterministic scenarios.
type SequenceSource struct {
	shapes []Shape
	pos    int
}

// NewSequenceSource creates a source that yields shapes in order.
func NewSequenceSource(shapes ...Shape) *SequenceSource {
	return &SequenceSource{shapes: shapes}
}

// Next returns the next shape of the sequence.
func (s *SequenceSource) Next() Shape {
	if len(s.shapes) == 0 {
		return ShapeO
	}
	sh := s.shapes[s.pos]
	if s.pos < len(s.shapes)-1 {
		s.pos++
	}
	return sh
}

// Peek returns up to n upcoming shapes.
func (s *SequenceSource) Peek(n int) []Shape {
	out := make([]Shape, 0, n)
	for i := s.pos; i < len(s.shapes) && len(out) < n; i++ {
		out = append(out, s.shapes[i])
	}
	return out
}
