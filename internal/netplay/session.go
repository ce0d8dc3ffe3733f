package netplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrHandshakeFailed is returned when no peer answered within the
	// attempt budget.
	ErrHandshakeFailed = errors.New("netplay: could not establish connection")
	// ErrTimeout is returned by Update once the peer went silent.
	ErrTimeout = errors.New("netplay: connection timed out")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("netplay: session closed")
	// ErrQueueFull is returned by Send when the outbox is saturated.
	ErrQueueFull = errors.New("netplay: outbox full")
)

const maxDatagram = 512

// Config tunes the link. Times in float64 are seconds of game time.
type Config struct {
	Ports             []int
	Token             string
	Attempts          int
	AttemptDelay      time.Duration
	HeartbeatInterval float64
	Timeout           float64
	PollInterval      time.Duration
	QueueSize         int
	ResendAfter       time.Duration
}

// DefaultConfig returns the standard link parameters.
func DefaultConfig() Config {
	return Config{
		Ports:             []int{55755, 55756},
		Token:             "Hello Tetris!",
		Attempts:          20,
		AttemptDelay:      500 * time.Millisecond,
		HeartbeatInterval: 0.2,
		Timeout:           2.0,
		PollInterval:      50 * time.Millisecond,
		QueueSize:         64,
		ResendAfter:       100 * time.Millisecond,
	}
}

type inboxItem struct {
	msg Message
	err error
}

// Session is an established link to one peer.
//
// Update, Send and the Send helpers must be called from a single goroutine,
// normally the game loop. Close may be called from anywhere.
type Session struct {
	cfg    Config
	conn   *net.UDPConn
	peer   *net.UDPAddr
	logger *log.Logger

	rel    *reliable
	live   Liveness
	rx     chan []byte
	inbox  chan inboxItem
	outbox chan []byte

	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
	closed    atomic.Bool
}

// Dial binds one of the configured local ports, runs the handshake against
// host on every configured port and starts the I/O workers.
func Dial(ctx context.Context, host string, cfg Config, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(cfg.Ports) == 0 {
		return nil, errors.New("netplay: no ports configured")
	}

	conn, err := bind(cfg.Ports)
	if err != nil {
		return nil, err
	}
	local := conn.LocalAddr().(*net.UDPAddr)
	logger.Info("bound", "addr", local.String())

	candidates, err := peerCandidates(host, cfg.Ports, local.Port)
	if err != nil {
		conn.Close()
		return nil, err
	}

	peer, err := handshake(ctx, conn, candidates, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("connected", "peer", peer.String())

	return start(conn, peer, cfg, logger), nil
}

func bind(ports []int) (*net.UDPConn, error) {
	var lastErr error
	for _, p := range ports {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: p})
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("netplay: bind %v: %w", ports, lastErr)
}

// peerCandidates resolves host on every port. A loopback candidate on our own
// port is skipped so two instances can share one machine.
func peerCandidates(host string, ports []int, localPort int) ([]*net.UDPAddr, error) {
	out := make([]*net.UDPAddr, 0, len(ports))
	for _, p := range ports {
		addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err != nil {
			return nil, fmt.Errorf("netplay: resolve %s: %w", host, err)
		}
		if p == localPort && (addr.IP == nil || addr.IP.IsLoopback() || addr.IP.IsUnspecified()) {
			continue
		}
		out = append(out, addr)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("netplay: no peer address for %s", host)
	}
	return out, nil
}

// handshake sends the token to every candidate each attempt and listens for
// the peer's token in between. It succeeds once a hello went out and a
// token came back; the sender of that token becomes the peer.
func handshake(ctx context.Context, conn *net.UDPConn, candidates []*net.UDPAddr, cfg Config, logger *log.Logger) (*net.UDPAddr, error) {
	hello := encodeHandshake(frameHello, cfg.Token)
	welcome := encodeHandshake(frameWelcome, cfg.Token)
	buf := make([]byte, maxDatagram)

	var peer *net.UDPAddr
	sent := false
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, addr := range candidates {
			if _, err := conn.WriteToUDP(hello, addr); err != nil {
				logger.Debug("hello failed", "to", addr.String(), "error", err)
				continue
			}
			sent = true
		}
		logger.Debug("handshake attempt", "attempt", attempt, "sent", sent)

		deadline := time.Now().Add(cfg.AttemptDelay)
		for peer == nil {
			if err := conn.SetReadDeadline(deadline); err != nil {
				return nil, fmt.Errorf("netplay: set deadline: %w", err)
			}
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				if errors.Is(err, os.ErrDeadlineExceeded) || ctx.Err() != nil {
					break
				}
				continue
			}
			f, err := decodeFrame(buf[:n])
			if err != nil || string(f.payload) != cfg.Token {
				continue
			}
			switch f.kind {
			case frameHello:
				// The peer may stop sending once it hears us, so answer now.
				//nolint:errcheck // best effort, the peer keeps retrying
				conn.WriteToUDP(welcome, addr)
				peer = addr
			case frameWelcome:
				peer = addr
			}
		}
		if sent && peer != nil {
			if err := conn.SetReadDeadline(time.Time{}); err != nil {
				return nil, fmt.Errorf("netplay: clear deadline: %w", err)
			}
			return peer, nil
		}
		if wait := time.Until(deadline); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, ErrHandshakeFailed
}

func start(conn *net.UDPConn, peer *net.UDPAddr, cfg Config, logger *log.Logger) *Session {
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 64
	}
	s := &Session{
		cfg:    cfg,
		conn:   conn,
		peer:   peer,
		logger: logger,
		rel:    newReliable(cfg.ResendAfter),
		live:   Liveness{HeartbeatInterval: cfg.HeartbeatInterval, Timeout: cfg.Timeout},
		rx:     make(chan []byte, queue),
		inbox:  make(chan inboxItem, queue),
		outbox: make(chan []byte, queue),
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = g
	g.Go(func() error { return s.read(gctx) })
	g.Go(func() error { return s.pump(gctx) })
	return s
}

// read forwards datagrams from the peer to the pump.
func (s *Session) read(ctx context.Context) error {
	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Debug("read failed", "error", err)
			continue
		}
		if !addr.IP.Equal(s.peer.IP) || addr.Port != s.peer.Port {
			s.logger.Debug("ignoring stranger", "from", addr.String())
			continue
		}
		d := make([]byte, n)
		copy(d, buf[:n])
		select {
		case s.rx <- d:
		case <-ctx.Done():
			return nil
		}
	}
}

// pump owns the reliable state: it sends queued messages, answers incoming
// frames and resends what the peer has not acknowledged.
func (s *Session) pump(ctx context.Context) error {
	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-s.outbox:
			s.write(s.rel.wrap(payload, time.Now()))
		case d := <-s.rx:
			s.handle(ctx, d)
		case now := <-ticker.C:
			for _, d := range s.rel.due(now) {
				s.write(d)
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, d []byte) {
	f, err := decodeFrame(d)
	if err != nil {
		s.logger.Warn("dropping frame", "error", err)
		return
	}
	switch f.kind {
	case frameAck:
		s.rel.ack(f.seq)
	case frameData:
		s.write(encodeAck(f.seq))
		if !s.rel.receive(f.seq) {
			return
		}
		msg, err := Decode(f.payload)
		select {
		case s.inbox <- inboxItem{msg: msg, err: err}:
		case <-ctx.Done():
		}
	case frameHello:
		if string(f.payload) == s.cfg.Token {
			s.write(encodeHandshake(frameWelcome, s.cfg.Token))
		}
	case frameWelcome:
	}
}

func (s *Session) write(d []byte) {
	if _, err := s.conn.WriteToUDP(d, s.peer); err != nil {
		s.logger.Debug("write failed", "error", err)
	}
}

// Update advances the liveness counters by dt seconds and returns the
// messages received since the last call, in receipt order. Heartbeats only
// feed liveness and are not returned. Undecodable payloads are logged and
// dropped. A heartbeat is queued when the link has been quiet for the
// heartbeat interval, and ErrTimeout is returned once nothing arrived for
// the timeout.
func (s *Session) Update(dt float64) ([]Message, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	s.live.Advance(dt)

	var out []Message
drain:
	for {
		select {
		case it := <-s.inbox:
			if it.err != nil {
				if IsDecodeError(it.err) {
					s.logger.Warn("discarding peer payload", "error", it.err)
					continue
				}
				return out, it.err
			}
			s.live.Received()
			if it.msg.Kind != KindHeartbeat {
				out = append(out, it.msg)
			}
		default:
			break drain
		}
	}

	if s.live.HeartbeatDue() {
		if err := s.Send(Heartbeat()); err != nil && !errors.Is(err, ErrQueueFull) {
			return out, err
		}
	}
	if s.live.TimedOut() {
		return out, ErrTimeout
	}
	return out, nil
}

// Send queues m for reliable delivery.
func (s *Session) Send(m Message) error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case s.outbox <- m.Encode():
		s.live.Sent()
		return nil
	default:
		s.logger.Warn("outbox full", "message", m.String())
		return ErrQueueFull
	}
}

// SendGameOver tells the peer we topped out.
func (s *Session) SendGameOver() error { return s.Send(GameOver()) }

// SendHeight reports our stack height.
func (s *Session) SendHeight(n int) error { return s.Send(Height(n)) }

// SendLines reports rows cleared by one commit.
func (s *Session) SendLines(n int) error { return s.Send(Lines(n)) }

// Peer returns the peer endpoint.
func (s *Session) Peer() *net.UDPAddr { return s.peer }

// LocalAddr returns the bound endpoint.
func (s *Session) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Liveness returns a copy of the idle counters.
func (s *Session) Liveness() Liveness { return s.live }

// Close stops the workers and releases the socket. It is safe to call more
// than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.cancel()
		if cerr := s.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = fmt.Errorf("netplay: close: %w", cerr)
		}
		if werr := s.group.Wait(); werr != nil && err == nil {
			err = werr
		}
	})
	return err
}
