// Package multiplayer runs a two-player blockfall match: one local field
// linked to a remote opponent. Garbage, stack height and the end of the
// game travel over a Link; everything else stays local.
package multiplayer

import (
	"time"

	"github.com/google/uuid"
)

// MatchID uniquely identifies a match.
type MatchID string

// NewMatchID returns a fresh random match identifier.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// MatchMode defines how a game is configured.
type MatchMode int

const (
	// MatchModeSolo is a singleplayer run with scoring.
	MatchModeSolo MatchMode = iota

	// MatchModeOnlinePvP is a garbage battle against a peer.
	MatchModeOnlinePvP
)

// String returns a human-readable name for the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchModeSolo:
		return "Solo"
	case MatchModeOnlinePvP:
		return "Online PvP"
	default:
		return "Unknown"
	}
}

// MatchState is the lifecycle of an online match once connected.
type MatchState int

const (
	MatchPlaying      MatchState = iota
	MatchWon                     // the opponent topped out first
	MatchLost                    // we topped out
	MatchDisconnected            // the link failed
)

func (s MatchState) String() string {
	switch s {
	case MatchPlaying:
		return "Playing"
	case MatchWon:
		return "Won"
	case MatchLost:
		return "Lost"
	case MatchDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Finished reports whether the match has been decided.
func (s MatchState) Finished() bool {
	return s != MatchPlaying
}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // someone topped out
	MatchEndReasonDisconnect                       // the peer went silent
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Opponent is what we know about the remote field.
type Opponent struct {
	Height   int
	GameOver bool
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID       string
	Peer          string
	Result        string // "won", "lost" or "disconnected"
	EndReason     string
	Duration      time.Duration
	LinesSent     int
	LinesReceived int
}

// MatchResultSaver persists finished matches.
// This lets the match record results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}
