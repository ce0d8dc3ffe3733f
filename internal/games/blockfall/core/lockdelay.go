package core

// Lock-delay caps.
const (
	LockMoveDelay = 0.6 // seconds since the last qualifying action
	LockDelay     = 1.0 // seconds grounded in total
	LockMovesMax  = 15  // qualifying actions allowed while grounded
)

// LockTracker measures how long the active piece has rested on a surface.
// It exists only while the piece is grounded.
type LockTracker struct {
	sinceAction float64
	total       float64
	moves       int
}

// NewLockTracker starts tracking a freshly grounded piece.
func NewLockTracker() *LockTracker {
	return &LockTracker{}
}

// Advance adds dt seconds of grounded time.
func (t *LockTracker) Advance(dt float64) {
	t.sinceAction += dt
	t.total += dt
}

// Press records a successful player move or rotation.
func (t *LockTracker) Press() {
	t.sinceAction = 0
	t.moves++
}

// Exceeded reports whether the piece must commit now.
func (t *LockTracker) Exceeded() bool {
	return t.sinceAction >= LockMoveDelay ||
		t.total >= LockDelay ||
		t.moves > LockMovesMax
}

// Moves returns the number of qualifying actions recorded.
func (t *LockTracker) Moves() int {
	return t.moves
}

// Total returns the grounded time in seconds.
func (t *LockTracker) Total() float64 {
	return t.total
}
