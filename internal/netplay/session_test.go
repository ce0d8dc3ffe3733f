package netplay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePorts reserves n loopback UDP ports and releases them.
func freePorts(t *testing.T, n int) []int {
	t.Helper()
	ports := make([]int, 0, n)
	conns := make([]*net.UDPConn, 0, n)
	for i := 0; i < n; i++ {
		c, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		require.NoError(t, err)
		conns = append(conns, c)
		ports = append(ports, c.LocalAddr().(*net.UDPAddr).Port)
	}
	for _, c := range conns {
		c.Close()
	}
	return ports
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Ports = freePorts(t, 2)
	cfg.AttemptDelay = 50 * time.Millisecond
	cfg.PollInterval = 10 * time.Millisecond
	cfg.ResendAfter = 20 * time.Millisecond
	return cfg
}

func dialPair(t *testing.T, cfg Config) (*Session, *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		s   *Session
		err error
	}
	ch := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s, err := Dial(ctx, "127.0.0.1", cfg, nil)
			ch <- result{s, err}
		}()
	}
	a, b := <-ch, <-ch
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	t.Cleanup(func() {
		a.s.Close()
		b.s.Close()
	})
	return a.s, b.s
}

func TestSessionLoopback(t *testing.T) {
	a, b := dialPair(t, testConfig(t))

	require.NoError(t, a.SendLines(2))
	require.NoError(t, a.SendHeight(11))
	require.NoError(t, a.SendGameOver())

	var got []Message
	require.Eventually(t, func() bool {
		msgs, err := b.Update(0)
		if err != nil {
			return false
		}
		got = append(got, msgs...)
		return len(got) >= 3
	}, 3*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []Message{Lines(2), Height(11), GameOver()}, got)
	assert.Zero(t, b.Liveness().SinceReceived())

	// Nothing is delivered twice even though resends may have happened.
	time.Sleep(100 * time.Millisecond)
	msgs, err := b.Update(0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSessionTimesOutWhenPeerGoesAway(t *testing.T) {
	a, b := dialPair(t, testConfig(t))
	require.NoError(t, b.Close())

	_, err := a.Update(2.0)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSessionClosed(t *testing.T) {
	a, _ := dialPair(t, testConfig(t))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	_, err := a.Update(0.1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.SendGameOver(), ErrClosed)
}

func TestHandshakeFailsWithoutPeer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Attempts = 3
	cfg.AttemptDelay = 20 * time.Millisecond

	_, err := Dial(context.Background(), "127.0.0.1", cfg, nil)
	assert.ErrorIs(t, err, ErrHandshakeFailed)
}

func TestPeerCandidatesSkipOwnLoopbackPort(t *testing.T) {
	got, err := peerCandidates("127.0.0.1", []int{55755, 55756}, 55755)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 55756, got[0].Port)

	got, err = peerCandidates("127.0.0.1", []int{55755, 55756}, 40000)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
