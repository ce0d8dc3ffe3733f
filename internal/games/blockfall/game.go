// Package blockfall adapts the falling-block simulation to the platform's
// game registry and draws it onto a platform Screen.
package blockfall

import (
	"time"

	platformcore "github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/registry"
)

// ID is the registry identifier of the singleplayer game.
const ID = "blockfall"

func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}

// Game is singleplayer blockfall behind the registry.Game interface.
type Game struct {
	sim    *core.Sim
	cfg    platformcore.RuntimeConfig
	dt     float64
	seed   int64
	source core.PieceSource
}

// New creates a game; call Reset before stepping it.
func New() *Game {
	return &Game{}
}

// NewWithSource creates a game that draws pieces from src instead of a bag.
func NewWithSource(src core.PieceSource) *Game {
	return &Game{source: src}
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Blockfall" }

// Description is shown by `blockfall list`.
func (g *Game) Description() string {
	return "Falling blocks: clear rows, hold a piece, survive the speed-up"
}

// Reset starts a fresh run.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = platformcore.DefaultConfig().TickRate
	}
	g.cfg = cfg
	g.dt = 1 / float64(cfg.TickRate)
	g.seed = cfg.Seed
	if g.seed == 0 {
		g.seed = time.Now().UnixNano()
	}
	g.sim = core.NewSim(core.Options{Mode: core.ModeSingle, Seed: g.seed, Source: g.source})
}

// CommandFor maps a platform action to a simulation command.
func CommandFor(a platformcore.Action) (core.Command, bool) {
	switch a {
	case platformcore.ActionLeft:
		return core.CmdMoveLeft, true
	case platformcore.ActionRight:
		return core.CmdMoveRight, true
	case platformcore.ActionSoftDrop:
		return core.CmdSoftDrop, true
	case platformcore.ActionHardDrop:
		return core.CmdHardDrop, true
	case platformcore.ActionRotateCW:
		return core.CmdRotateCW, true
	case platformcore.ActionRotateCCW:
		return core.CmdRotateCCW, true
	case platformcore.ActionHold:
		return core.CmdHold, true
	case platformcore.ActionPause:
		return core.CmdPause, true
	}
	return core.CmdNone, false
}

// Step applies the frame's commands in order, then advances one tick.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	if in.Has(platformcore.ActionRestart) && g.sim.GameOver() {
		g.Reset(g.cfg)
	}
	for _, a := range in.Ordered() {
		if cmd, ok := CommandFor(a); ok {
			g.sim.Apply(cmd)
		}
	}
	g.sim.Tick(g.dt)

	ev := g.sim.TakeEvents()
	return platformcore.StepResult{
		State:     g.State(),
		Cleared:   ev.Clears,
		ToppedOut: ev.ToppedOut,
	}
}

// Render draws the field, hold, preview and score.
func (g *Game) Render(dst *platformcore.Screen) {
	v := View{Title: "BLOCKFALL", Preview: g.cfg.Preview}
	switch {
	case g.sim.GameOver():
		v.Banner, v.SubBanner = "GAME OVER", "R restart"
	case g.sim.Paused():
		v.Banner, v.SubBanner = "PAUSED", "P continue"
	}
	Render(dst, g.sim.Snapshot(), v)
}

// State returns score, lines, level and status.
func (g *Game) State() platformcore.GameState {
	l := g.sim.Leveling()
	return platformcore.GameState{
		Score:    l.Score(),
		Lines:    l.Lines(),
		Level:    l.Level(),
		GameOver: g.sim.GameOver(),
		Paused:   g.sim.Paused(),
	}
}

// Snapshot exposes the current state, e.g. to the spectator feed.
func (g *Game) Snapshot() core.Snapshot {
	return g.sim.Snapshot()
}

// Sim returns the running simulation.
func (g *Game) Sim() *core.Sim { return g.sim }

// Seed returns the seed of the current run; --seed replays it.
func (g *Game) Seed() int64 { return g.seed }
