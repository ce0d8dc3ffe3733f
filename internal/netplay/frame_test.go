package netplay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f, err := decodeFrame(encodeData(0x01020304, []byte("Lines02")))
	require.NoError(t, err)
	assert.Equal(t, frameData, f.kind)
	assert.Equal(t, uint32(0x01020304), f.seq)
	assert.Equal(t, "Lines02", string(f.payload))

	f, err = decodeFrame(encodeAck(9))
	require.NoError(t, err)
	assert.Equal(t, frameAck, f.kind)
	assert.Equal(t, uint32(9), f.seq)

	f, err = decodeFrame(encodeHandshake(frameHello, "Hello Tetris!"))
	require.NoError(t, err)
	assert.Equal(t, frameHello, f.kind)
	assert.Equal(t, "Hello Tetris!", string(f.payload))
}

func TestDataFrameLayout(t *testing.T) {
	assert.Equal(t, []byte{'R', 0, 0, 1, 0, 'G', 'a', 'm', 'e', 'O', 'v', 'e', 'r'}, encodeData(256, GameOver().Encode()))
}

func TestDecodeFrameErrors(t *testing.T) {
	for _, b := range [][]byte{nil, {'R', 0, 0}, {'A'}, {'Z', 1, 2, 3, 4}} {
		_, err := decodeFrame(b)
		assert.Error(t, err, "%q", b)
	}
}

func TestReliableResendsUntilAcked(t *testing.T) {
	r := newReliable(100 * time.Millisecond)
	t0 := time.Unix(0, 0)

	d := r.wrap([]byte("Height05"), t0)
	assert.Equal(t, 1, r.pendingCount())

	assert.Empty(t, r.due(t0.Add(50*time.Millisecond)))
	assert.Equal(t, [][]byte{d}, r.due(t0.Add(100*time.Millisecond)))
	assert.Empty(t, r.due(t0.Add(150*time.Millisecond)), "timer restarts after a resend")

	r.ack(0)
	assert.Zero(t, r.pendingCount())
	assert.Empty(t, r.due(t0.Add(time.Second)))
}

func TestReliableSequenceNumbers(t *testing.T) {
	r := newReliable(time.Second)
	now := time.Now()
	for want := uint32(0); want < 3; want++ {
		f, err := decodeFrame(r.wrap([]byte("Heartbeat"), now))
		require.NoError(t, err)
		assert.Equal(t, want, f.seq)
	}
}

func TestReliableSuppressesDuplicates(t *testing.T) {
	r := newReliable(time.Second)
	assert.True(t, r.receive(4))
	assert.False(t, r.receive(4))
	assert.True(t, r.receive(3), "no ordering is imposed")

	for seq := uint32(100); seq < 100+dedupWindow; seq++ {
		r.receive(seq)
	}
	assert.True(t, r.receive(4), "old sequence numbers fall out of the window")
}
