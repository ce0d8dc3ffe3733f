package multiplayer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/netplay"
)

// Link is the transport to the opponent. *netplay.Session implements it.
type Link interface {
	// Update advances liveness by dt seconds and returns received messages.
	Update(dt float64) ([]netplay.Message, error)
	// Send queues a message for the peer.
	Send(m netplay.Message) error
	Close() error
}

// Match bridges the local simulation and the link. It is driven from the
// game loop and is not safe for concurrent use.
type Match struct {
	id     MatchID
	peer   string
	sim    *core.Sim
	link   Link
	logger *log.Logger
	saver  MatchResultSaver

	state    MatchState
	reason   MatchEndReason
	linkErr  error
	opponent Opponent
	elapsed  float64

	lastHeight    int
	linesSent     int
	linesReceived int
	saved         bool
}

// NewMatch creates a running match over an established link.
func NewMatch(id MatchID, peer string, sim *core.Sim, link Link, logger *log.Logger) *Match {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Match{
		id:     id,
		peer:   peer,
		sim:    sim,
		link:   link,
		logger: logger,
		state:  MatchPlaying,
	}
}

// SetResultSaver sets where the result is recorded once the match is decided.
func (m *Match) SetResultSaver(saver MatchResultSaver) {
	m.saver = saver
}

// Apply forwards a player command while the match is running.
func (m *Match) Apply(cmd core.Command) bool {
	if m.state != MatchPlaying {
		return false
	}
	return m.sim.Apply(cmd)
}

// Tick runs one frame: peer messages first, then local physics, then the
// local changes the peer needs to hear about.
func (m *Match) Tick(dt float64) {
	switch m.state {
	case MatchDisconnected:
		return
	case MatchWon, MatchLost:
		// Keep heartbeats and resends flowing so the peer learns the outcome.
		if _, err := m.link.Update(dt); err != nil {
			m.logger.Debug("link after match end", "error", err)
		}
		return
	}

	m.elapsed += dt
	msgs, err := m.link.Update(dt)
	for _, msg := range msgs {
		m.receive(msg)
	}
	if err != nil {
		m.disconnect(err)
		return
	}
	if m.state != MatchPlaying {
		m.finish()
		return
	}

	m.sim.Tick(dt)
	m.report()
}

func (m *Match) receive(msg netplay.Message) {
	switch msg.Kind {
	case netplay.KindLines:
		m.sim.AddGarbage(msg.Value)
		m.linesReceived += msg.Value
	case netplay.KindHeight:
		m.opponent.Height = msg.Value
	case netplay.KindGameOver:
		m.opponent.GameOver = true
		if m.state == MatchPlaying {
			m.state = MatchWon
			m.reason = MatchEndReasonCompleted
		}
	}
}

// report sends cleared rows, height changes and a top-out to the peer.
func (m *Match) report() {
	ev := m.sim.TakeEvents()
	for _, n := range ev.Clears {
		m.send(netplay.Lines(n))
		m.linesSent += n
	}
	if h := m.sim.Grid().StackHeight(); h != m.lastHeight {
		m.lastHeight = h
		m.send(netplay.Height(h))
	}
	if ev.ToppedOut {
		m.send(netplay.GameOver())
		m.state = MatchLost
		m.reason = MatchEndReasonCompleted
		m.finish()
	}
}

func (m *Match) send(msg netplay.Message) {
	if err := m.link.Send(msg); err != nil {
		m.logger.Warn("cannot send to peer", "message", msg.String(), "error", err)
	}
}

func (m *Match) disconnect(err error) {
	m.state = MatchDisconnected
	m.reason = MatchEndReasonDisconnect
	m.linkErr = err
	m.logger.Warn("connection lost", "peer", m.peer, "error", err)
	m.finish()
}

func (m *Match) finish() {
	if m.saved {
		return
	}
	m.saved = true
	m.logger.Info("match ended", "id", m.id, "state", m.state, "sent", m.linesSent, "received", m.linesReceived)
	if m.saver == nil {
		return
	}
	if err := m.saver.SaveMatchResult(m.Result()); err != nil {
		m.logger.Warn("cannot save match", "error", err)
	}
}

// Result summarizes the match for persistence.
func (m *Match) Result() MatchResultData {
	result := "playing"
	switch m.state {
	case MatchWon:
		result = "won"
	case MatchLost:
		result = "lost"
	case MatchDisconnected:
		result = "disconnected"
	}
	return MatchResultData{
		MatchID:       string(m.id),
		Peer:          m.peer,
		Result:        result,
		EndReason:     m.reason.String(),
		Duration:      time.Duration(m.elapsed * float64(time.Second)),
		LinesSent:     m.linesSent,
		LinesReceived: m.linesReceived,
	}
}

// ID returns the match identifier.
func (m *Match) ID() MatchID { return m.id }

// Peer returns the opponent's address as given by the link.
func (m *Match) Peer() string { return m.peer }

// State returns the match lifecycle state.
func (m *Match) State() MatchState { return m.state }

// Err returns the link error that ended the match, if any.
func (m *Match) Err() error { return m.linkErr }

// Opponent returns the last known remote state.
func (m *Match) Opponent() Opponent { return m.opponent }

// Sim returns the local simulation.
func (m *Match) Sim() *core.Sim { return m.sim }

// Close releases the link.
func (m *Match) Close() error {
	return m.link.Close()
}
