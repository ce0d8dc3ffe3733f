package netplay

import (
	"encoding/binary"
	"errors"
	"time"
)

// Frame kinds, the first byte of every datagram.
const (
	frameData    byte = 'R' // reliable payload: kind, seq, message
	frameAck     byte = 'A' // acknowledgement: kind, seq
	frameHello   byte = 'H' // handshake: kind, token
	frameWelcome byte = 'W' // handshake reply: kind, token
)

const seqLen = 4

var errShortFrame = errors.New("netplay: short frame")

type frame struct {
	kind    byte
	seq     uint32
	payload []byte
}

func encodeData(seq uint32, payload []byte) []byte {
	buf := make([]byte, 1+seqLen+len(payload))
	buf[0] = frameData
	binary.BigEndian.PutUint32(buf[1:], seq)
	copy(buf[1+seqLen:], payload)
	return buf
}

func encodeAck(seq uint32) []byte {
	buf := make([]byte, 1+seqLen)
	buf[0] = frameAck
	binary.BigEndian.PutUint32(buf[1:], seq)
	return buf
}

func encodeHandshake(kind byte, token string) []byte {
	return append([]byte{kind}, token...)
}

func decodeFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, errShortFrame
	}
	f := frame{kind: b[0]}
	switch f.kind {
	case frameData, frameAck:
		if len(b) < 1+seqLen {
			return frame{}, errShortFrame
		}
		f.seq = binary.BigEndian.Uint32(b[1:])
		f.payload = b[1+seqLen:]
	case frameHello, frameWelcome:
		f.payload = b[1:]
	default:
		return frame{}, errors.New("netplay: unknown frame kind")
	}
	return f, nil
}

// dedupWindow is how many delivered sequence numbers are remembered.
const dedupWindow = 1024

type pending struct {
	datagram []byte
	sentAt   time.Time
}

// reliable tracks unacknowledged outgoing datagrams and recently delivered
// incoming ones. It is owned by the pump goroutine.
type reliable struct {
	resendAfter time.Duration
	nextSeq     uint32
	unacked     map[uint32]*pending

	seen     map[uint32]struct{}
	seenFIFO []uint32
}

func newReliable(resendAfter time.Duration) *reliable {
	return &reliable{
		resendAfter: resendAfter,
		unacked:     make(map[uint32]*pending),
		seen:        make(map[uint32]struct{}),
	}
}

// wrap assigns the next sequence number and returns the datagram to send.
func (r *reliable) wrap(payload []byte, now time.Time) []byte {
	seq := r.nextSeq
	r.nextSeq++
	d := encodeData(seq, payload)
	r.unacked[seq] = &pending{datagram: d, sentAt: now}
	return d
}

func (r *reliable) ack(seq uint32) {
	delete(r.unacked, seq)
}

// receive reports whether a data frame is new. Duplicates caused by resends
// must still be acknowledged but not delivered again.
func (r *reliable) receive(seq uint32) bool {
	if _, dup := r.seen[seq]; dup {
		return false
	}
	r.seen[seq] = struct{}{}
	r.seenFIFO = append(r.seenFIFO, seq)
	if len(r.seenFIFO) > dedupWindow {
		delete(r.seen, r.seenFIFO[0])
		r.seenFIFO = r.seenFIFO[1:]
	}
	return true
}

// due returns the datagrams whose resend timer expired and restarts it.
func (r *reliable) due(now time.Time) [][]byte {
	var out [][]byte
	for _, p := range r.unacked {
		if now.Sub(p.sentAt) >= r.resendAfter {
			p.sentAt = now
			out = append(out, p.datagram)
		}
	}
	return out
}

func (r *reliable) pendingCount() int {
	return len(r.unacked)
}
