package spectate

import "sync"

// Subscriber receives encoded frames of one feed.
// Slow subscribers lose old frames instead of blocking the hub.
type Subscriber struct {
	feed     string
	frames   chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscriber(feed string, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 8
	}
	return &Subscriber{
		feed:   feed,
		frames: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Feed returns the feed this subscriber follows.
func (s *Subscriber) Feed() string { return s.feed }

// send enqueues a frame. If the buffer is full, the oldest frame is dropped.
func (s *Subscriber) send(frame []byte) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.frames <- frame:
	default:
		select {
		case <-s.frames:
		default:
		}
		// best effort
		select {
		case s.frames <- frame:
		default:
		}
	}
}

// Frames returns the channel of encoded frames.
func (s *Subscriber) Frames() <-chan []byte { return s.frames }

// Done closes when the hub drops the subscriber or shuts down.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}
