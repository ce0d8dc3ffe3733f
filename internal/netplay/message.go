// Package netplay links two blockfall players over UDP.
//
// A Session performs a symmetric handshake, then carries the four game
// messages with reliable-unordered delivery. Socket I/O runs on a worker
// group; the game loop only talks to it through bounded channels and polls
// it once per tick with Update.
package netplay

import (
	"errors"
	"fmt"
	"strconv"
)

// Wire tags.
const (
	tagGameOver  = "GameOver"
	tagHeartbeat = "Heartbeat"
	tagHeight    = "Height"
	tagLines     = "Lines"
)

// MaxValue is the largest number a two-digit payload can carry.
const MaxValue = 99

// Kind identifies a game message.
type Kind uint8

const (
	KindGameOver Kind = iota + 1
	KindHeartbeat
	KindHeight
	KindLines
)

func (k Kind) String() string {
	switch k {
	case KindGameOver:
		return tagGameOver
	case KindHeartbeat:
		return tagHeartbeat
	case KindHeight:
		return tagHeight
	case KindLines:
		return tagLines
	default:
		return "Unknown"
	}
}

// Message is one game message. Value is used by Height and Lines only.
type Message struct {
	Kind  Kind
	Value int
}

// GameOver reports that the sender topped out.
func GameOver() Message { return Message{Kind: KindGameOver} }

// Heartbeat keeps the link alive.
func Heartbeat() Message { return Message{Kind: KindHeartbeat} }

// Height reports the sender's stack height.
func Height(n int) Message { return Message{Kind: KindHeight, Value: n} }

// Lines reports rows cleared by one commit; the receiver gets that many
// garbage rows.
func Lines(n int) Message { return Message{Kind: KindLines, Value: n} }

func (m Message) String() string {
	return string(m.Encode())
}

// Encode renders the ASCII payload. Values are clamped to 0..MaxValue and
// written as exactly two digits.
func (m Message) Encode() []byte {
	switch m.Kind {
	case KindHeight, KindLines:
		v := m.Value
		if v < 0 {
			v = 0
		}
		if v > MaxValue {
			v = MaxValue
		}
		return fmt.Appendf(nil, "%s%02d", m.Kind, v)
	default:
		return []byte(m.Kind.String())
	}
}

// DecodeError describes a payload that is not a valid game message.
type DecodeError struct {
	Payload []byte
	Reason  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("netplay: cannot decode %q: %s", e.Payload, e.Reason)
}

// IsDecodeError reports whether err wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decode parses an ASCII payload.
func Decode(payload []byte) (Message, error) {
	s := string(payload)
	switch s {
	case tagGameOver:
		return GameOver(), nil
	case tagHeartbeat:
		return Heartbeat(), nil
	}

	for _, kind := range []Kind{KindHeight, KindLines} {
		tag := kind.String()
		if len(s) < len(tag) || s[:len(tag)] != tag {
			continue
		}
		digits := s[len(tag):]
		if len(digits) != 2 {
			return Message{}, &DecodeError{Payload: payload, Reason: "want two digits"}
		}
		n, err := strconv.ParseUint(digits, 10, 8)
		if err != nil {
			return Message{}, &DecodeError{Payload: payload, Reason: "bad number"}
		}
		return Message{Kind: kind, Value: int(n)}, nil
	}
	return Message{}, &DecodeError{Payload: payload, Reason: "unknown tag"}
}
