package netplay

// Liveness holds the send and receive idle counters of a link, in seconds.
// It is advanced by the game loop, never by the I/O workers.
type Liveness struct {
	HeartbeatInterval float64
	Timeout           float64

	sinceSent float64
	sinceRecv float64
}

// Advance adds dt seconds to both counters.
func (l *Liveness) Advance(dt float64) {
	l.sinceSent += dt
	l.sinceRecv += dt
}

// Sent resets the send counter.
func (l *Liveness) Sent() { l.sinceSent = 0 }

// Received resets the receive counter.
func (l *Liveness) Received() { l.sinceRecv = 0 }

// HeartbeatDue reports whether nothing was sent for a heartbeat interval.
func (l Liveness) HeartbeatDue() bool {
	return l.sinceSent >= l.HeartbeatInterval
}

// TimedOut reports whether nothing was received for the timeout.
func (l Liveness) TimedOut() bool {
	return l.sinceRecv >= l.Timeout
}

// SinceReceived returns the receive idle time.
func (l Liveness) SinceReceived() float64 { return l.sinceRecv }

// SinceSent returns the send idle time.
func (l Liveness) SinceSent() float64 { return l.sinceSent }
