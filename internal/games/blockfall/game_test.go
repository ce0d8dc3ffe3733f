package blockfall

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformcore "github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/registry"
)

func newGame(t *testing.T, shapes ...core.Shape) *Game {
	t.Helper()
	g := NewWithSource(core.NewSequenceSource(shapes...))
	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1})
	return g
}

func frame(actions ...platformcore.Action) platformcore.InputFrame {
	f := platformcore.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

func TestRegistered(t *testing.T) {
	require.True(t, registry.Exists(ID))
	g, err := registry.Create(ID)
	require.NoError(t, err)
	assert.Equal(t, "Blockfall", g.Title())
}

func TestSeed(t *testing.T) {
	g := newGame(t, core.ShapeO)
	assert.Equal(t, int64(1), g.Seed())

	g.Reset(platformcore.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60})
	assert.NotZero(t, g.Seed(), "an unseeded run picks a seed from the clock")
}

func TestCommandFor(t *testing.T) {
	tests := []struct {
		action platformcore.Action
		want   core.Command
	}{
		{platformcore.ActionLeft, core.CmdMoveLeft},
		{platformcore.ActionRight, core.CmdMoveRight},
		{platformcore.ActionSoftDrop, core.CmdSoftDrop},
		{platformcore.ActionHardDrop, core.CmdHardDrop},
		{platformcore.ActionRotateCW, core.CmdRotateCW},
		{platformcore.ActionRotateCCW, core.CmdRotateCCW},
		{platformcore.ActionHold, core.CmdHold},
		{platformcore.ActionPause, core.CmdPause},
	}
	for _, tt := range tests {
		got, ok := CommandFor(tt.action)
		assert.True(t, ok, tt.action.String())
		assert.Equal(t, tt.want, got, tt.action.String())
	}

	_, ok := CommandFor(platformcore.ActionQuit)
	assert.False(t, ok)
}

func TestStepAppliesInputBeforeTick(t *testing.T) {
	g := newGame(t, core.ShapeO, core.ShapeO)

	g.Step(frame()) // spawns
	p, ok := g.Sim().Active()
	require.True(t, ok)
	startX := p.Pos.X

	g.Step(frame(platformcore.ActionLeft))
	p, _ = g.Sim().Active()
	assert.Equal(t, startX-1, p.Pos.X)
}

func TestHardDropReportsClears(t *testing.T) {
	g := newGame(t, core.ShapeI, core.ShapeO)
	grid := g.Sim().Grid()
	row := core.FilledRow(core.CellGarbage)
	for x := 3; x < 7; x++ {
		row[x] = core.CellEmpty
	}
	grid.SetRow(core.Height-1, row)

	g.Step(frame())
	res := g.Step(frame(platformcore.ActionHardDrop))
	assert.Equal(t, []int{1}, res.Cleared)
	assert.Equal(t, 1, res.State.Lines)
	assert.Equal(t, core.ClearScore(1), res.State.Score)
}

func TestPauseFreezesGravity(t *testing.T) {
	g := newGame(t, core.ShapeT)
	g.Step(frame())
	p, _ := g.Sim().Active()

	res := g.Step(frame(platformcore.ActionPause))
	assert.True(t, res.State.Paused)
	for range 120 {
		g.Step(frame())
	}
	q, _ := g.Sim().Active()
	assert.Equal(t, p.Pos, q.Pos)
}

func TestRestartAfterGameOver(t *testing.T) {
	g := newGame(t, core.ShapeO)
	for y := 0; y < core.Height; y++ {
		g.Sim().Grid().SetRow(y, core.FilledRow(core.CellGarbage))
	}
	res := g.Step(frame())
	require.True(t, res.State.GameOver)
	assert.True(t, res.ToppedOut)

	res = g.Step(frame(platformcore.ActionRestart))
	assert.False(t, res.State.GameOver)
	assert.Equal(t, 0, g.Sim().Grid().StackHeight())
}

func TestRenderDrawsFieldAndPanels(t *testing.T) {
	g := newGame(t, core.ShapeO, core.ShapeT)
	g.Step(frame())

	screen := platformcore.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	assert.Contains(t, out, "HOLD")
	assert.Contains(t, out, "NEXT")
	assert.Contains(t, out, "Score 0")
	assert.Equal(t, '┌', screen.Get(fieldX, 0))
	assert.Equal(t, '┘', screen.Get(fieldX+fieldW-1, fieldH-1))

	// The O piece spawns at field row 0, columns 4 and 5.
	cell := screen.GetCell(fieldX+1+4*cellW, 1)
	assert.Equal(t, '█', cell.Rune)
	assert.Equal(t, platformcore.ColorYellow, cell.Color)

	// Its ghost rests on the floor.
	ghost := screen.GetCell(fieldX+1+4*cellW, core.VisibleHeight)
	assert.Equal(t, '░', ghost.Rune)
}

func TestRenderOpponentGauge(t *testing.T) {
	sim := core.NewSim(core.Options{Mode: core.ModeOnline, Source: core.NewSequenceSource(core.ShapeO)})
	sim.Tick(0)

	screen := platformcore.NewScreen(80, 24)
	Render(screen, sim.Snapshot(), View{Opponent: &Opponent{Height: 3}})

	bottom := fieldH - 2
	for i := 0; i < 3; i++ {
		assert.Equal(t, '█', screen.Get(gaugeX+1, bottom-i), "gauge row %d", i)
	}
	assert.Equal(t, ' ', screen.Get(gaugeX+1, bottom-3))
	assert.NotContains(t, screen.String(), "Score", "online play has no score")
}

func TestRenderBanner(t *testing.T) {
	g := newGame(t, core.ShapeO)
	g.Step(frame())
	g.Step(frame(platformcore.ActionPause))

	screen := platformcore.NewScreen(80, 24)
	g.Render(screen)
	assert.Contains(t, screen.String(), "PAUSED")
}

func TestRenderTooSmall(t *testing.T) {
	g := newGame(t, core.ShapeO)
	screen := platformcore.NewScreen(30, 10)
	g.Render(screen)
	assert.True(t, strings.Contains(screen.String(), "Terminal too small"))
}
