package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
)

func newSim(t *testing.T, mode core.Mode, shapes ...core.Shape) *core.Sim {
	t.Helper()
	s := core.NewSim(core.Options{Mode: mode, Seed: 1, Source: core.NewSequenceSource(shapes...)})
	s.Tick(0)
	_, ok := s.Active()
	require.True(t, ok, "first tick spawns a piece")
	return s
}

// restOnFloor soft-drops the active piece until it is grounded.
func restOnFloor(t *testing.T, s *core.Sim) {
	t.Helper()
	for s.Apply(core.CmdSoftDrop) {
	}
	require.NotNil(t, s.Tracker(), "grounded piece has a lock tracker")
}

func filledCells(g *core.Grid) map[core.Coord]core.Cell {
	out := make(map[core.Coord]core.Cell)
	rows := g.Rows()
	for y, row := range rows {
		for x, c := range row {
			if !c.Empty() {
				out[core.C(x, y)] = c
			}
		}
	}
	return out
}

func TestSpawnOneRowBelowAnchor(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO)
	p, _ := s.Active()
	assert.Equal(t, core.C(4, 0), p.Pos)
	assert.Equal(t, core.Rot0, p.Rot)
}

func TestSquareDropLocksAtFloor(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT)

	require.True(t, s.Apply(core.CmdHardDrop))

	_, ok := s.Active()
	assert.False(t, ok)
	elapsed, wait, waiting := s.Waiting()
	require.True(t, waiting)
	assert.Zero(t, elapsed)
	assert.Equal(t, core.SpawnDelay, wait)

	assert.Equal(t, map[core.Coord]core.Cell{
		core.C(4, 30): core.CellYellow,
		core.C(5, 30): core.CellYellow,
		core.C(4, 31): core.CellYellow,
		core.C(5, 31): core.CellYellow,
	}, filledCells(s.Grid()))
	assert.False(t, s.GameOver())
}

func TestNextPieceAfterSpawnDelay(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT)
	s.Apply(core.CmdHardDrop)

	s.Tick(0.0625)
	_, ok := s.Active()
	assert.False(t, ok)

	s.Tick(0.0625)
	p, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, core.ShapeT, p.Shape)
}

func TestLineDropClearsTwoRows(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeI, core.ShapeO)
	row := core.FilledRow(core.CellGarbage)
	row[5] = core.CellEmpty
	s.Grid().SetRow(core.Height-2, row)
	s.Grid().SetRow(core.Height-1, row)

	require.True(t, s.Apply(core.CmdRotateCW))
	p, _ := s.Active()
	require.Equal(t, core.RotR, p.Rot)
	require.Equal(t, core.C(5, 0), p.Cells()[0])

	require.True(t, s.Apply(core.CmdHardDrop))

	assert.Equal(t, 160, s.Leveling().Score())
	assert.Equal(t, 2, s.Leveling().Lines())
	assert.Equal(t, []int{2}, s.TakeEvents().Clears)
	_, wait, _ := s.Waiting()
	assert.Equal(t, core.SpawnDelayAfterClear, wait)

	// Completed rows flash as destroying markers first.
	assert.Equal(t, core.FilledRow(core.CellDestroying), s.Grid().Row(core.Height-1))
	assert.Equal(t, core.ClearFlashing, s.Snapshot().Clear)

	s.Tick(0.125)
	assert.True(t, s.Grid().Row(core.Height-1).IsEmpty(), "rows are hidden after the hide delay")
	assert.Equal(t, core.ClearHidden, s.Snapshot().Clear)

	s.Tick(0.25)
	assert.False(t, s.Clearing())
	assert.Equal(t, map[core.Coord]core.Cell{
		core.C(5, 30): core.CellCyan,
		core.C(5, 31): core.CellCyan,
	}, filledCells(s.Grid()), "field collapses by two rows")
}

func TestLockAfterSixteenMoves(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT)
	restOnFloor(t, s)

	for i := 0; i < core.LockMovesMax; i++ {
		cmd := core.CmdMoveLeft
		if i%2 == 1 {
			cmd = core.CmdMoveRight
		}
		require.True(t, s.Apply(cmd))
		_, ok := s.Active()
		require.True(t, ok, "move %d", i+1)
	}
	assert.Equal(t, core.LockMovesMax, s.Tracker().Moves())

	require.True(t, s.Apply(core.CmdMoveRight))
	_, ok := s.Active()
	assert.False(t, ok, "16th move locks the piece")
}

func TestLockWhenIdle(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT)
	restOnFloor(t, s)

	s.Tick(0.25)
	s.Tick(0.25)
	_, ok := s.Active()
	require.True(t, ok)

	s.Tick(0.25)
	_, ok = s.Active()
	assert.False(t, ok)
}

func TestLockAfterOneSecondGrounded(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT)
	restOnFloor(t, s)

	s.Tick(0.5)
	require.True(t, s.Apply(core.CmdMoveLeft))
	_, ok := s.Active()
	require.True(t, ok)

	s.Tick(0.5)
	_, ok = s.Active()
	assert.False(t, ok, "total grounded time reached 1s")
}

func TestGravity(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO)
	s.Tick(0.5)
	p, _ := s.Active()
	assert.Equal(t, 0, p.Pos.Y)

	s.Tick(0.5)
	p, _ = s.Active()
	assert.Equal(t, 1, p.Pos.Y, "level 1 falls one row per second")

	s.Tick(3)
	p, _ = s.Active()
	assert.Equal(t, 4, p.Pos.Y)
}

func TestSoftDropDoesNotLock(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO)
	restOnFloor(t, s)
	assert.False(t, s.Apply(core.CmdSoftDrop))
	_, ok := s.Active()
	assert.True(t, ok)
}

func TestHoldWithEmptySlot(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT, core.ShapeI)
	require.True(t, s.Apply(core.CmdMoveLeft))

	require.True(t, s.Apply(core.CmdHold))

	p, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, core.ShapeT, p.Shape, "queue head becomes active")
	assert.Equal(t, core.C(4, 0), p.Pos)

	hold := s.Hold()
	assert.Equal(t, core.HoldLocked, hold.State)
	assert.Equal(t, core.NewPiece(core.ShapeO), hold.Piece, "previous piece is held at its spawn anchor")

	assert.False(t, s.Apply(core.CmdHold), "hold is locked until the next commit")
}

func TestHoldUnlocksOnCommit(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT, core.ShapeI)
	s.Apply(core.CmdHold)
	s.Apply(core.CmdHardDrop)
	assert.Equal(t, core.HoldUnlocked, s.Hold().State)
	assert.False(t, s.Apply(core.CmdHold), "no active piece")

	s.Tick(0.125)
	p, _ := s.Active()
	require.Equal(t, core.ShapeI, p.Shape)

	require.True(t, s.Apply(core.CmdHold))
	p, _ = s.Active()
	assert.Equal(t, core.ShapeO, p.Shape)
	assert.Equal(t, core.C(4, 0), p.Pos)
	assert.Equal(t, core.ShapeI, s.Hold().Piece.Shape)
	assert.Equal(t, core.HoldLocked, s.Hold().State)
}

func TestGarbageOnePerTick(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO)
	s.AddGarbage(2)

	s.Tick(0)
	assert.Equal(t, 1, s.PendingGarbage())
	s.Tick(0)
	assert.Equal(t, 0, s.PendingGarbage())

	for _, y := range []int{core.Height - 2, core.Height - 1} {
		row := s.Grid().Row(y)
		empty := 0
		for _, c := range row {
			if c.Empty() {
				empty++
			} else {
				assert.Equal(t, core.CellGarbage, c)
			}
		}
		assert.Equal(t, 1, empty, "row %d has one hole", y)
	}
}

func TestGarbageWaitsForClearAnimation(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeI, core.ShapeO)
	row := core.FilledRow(core.CellGarbage)
	row[5] = core.CellEmpty
	s.Grid().SetRow(core.Height-1, row)
	s.Apply(core.CmdRotateCW)
	s.Apply(core.CmdHardDrop)
	require.True(t, s.Clearing())

	s.AddGarbage(1)
	s.Tick(0.125)
	assert.Equal(t, 1, s.PendingGarbage())
	s.Tick(0.25)
	assert.False(t, s.Clearing())
	assert.Equal(t, 0, s.PendingGarbage())
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	s := core.NewSim(core.Options{Mode: core.ModeSingle, Source: core.NewSequenceSource(core.ShapeO)})
	s.Grid().SetRow(core.BufferRow(0), core.FilledRow(core.CellGarbage))

	s.Tick(0)
	assert.True(t, s.GameOver())
	assert.True(t, s.TakeEvents().ToppedOut)
	assert.False(t, s.TakeEvents().ToppedOut, "events reset after take")

	assert.False(t, s.Apply(core.CmdMoveLeft))
	before := s.Snapshot()
	s.Tick(10)
	assert.Equal(t, before, s.Snapshot(), "no physics after game over")
}

func TestPause(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO)
	require.True(t, s.Apply(core.CmdPause))
	assert.True(t, s.Paused())

	s.Tick(5)
	p, _ := s.Active()
	assert.Equal(t, 0, p.Pos.Y)
	assert.False(t, s.Apply(core.CmdMoveLeft))

	require.True(t, s.Apply(core.CmdPause))
	assert.True(t, s.Apply(core.CmdMoveLeft))

	online := newSim(t, core.ModeOnline, core.ShapeO)
	assert.False(t, online.Apply(core.CmdPause))
}

func TestOnlineLevelFollowsTime(t *testing.T) {
	s := newSim(t, core.ModeOnline, core.ShapeO)
	for i := 0; i < 100; i++ {
		s.Tick(0.5)
	}
	assert.Equal(t, 2, s.Leveling().Level())
	assert.Zero(t, s.Leveling().Score())
}

func TestSnapshot(t *testing.T) {
	s := newSim(t, core.ModeSingle, core.ShapeO, core.ShapeT, core.ShapeI)
	snap := s.Snapshot()

	require.NotNil(t, snap.Active)
	assert.Equal(t, core.AppearanceNormal, snap.Active.Appearance)
	require.NotNil(t, snap.Ghost)
	assert.Equal(t, core.AppearanceGhost, snap.Ghost.Appearance)
	assert.ElementsMatch(t, []core.Coord{
		core.C(4, 18), core.C(5, 18), core.C(4, 19), core.C(5, 19),
	}, snap.Ghost.Cells)
	assert.Equal(t, []core.Shape{core.ShapeT, core.ShapeI}, snap.Next)
	assert.Nil(t, snap.Hold)
	assert.Equal(t, 1, snap.Level)

	s.Apply(core.CmdHold)
	snap = s.Snapshot()
	require.NotNil(t, snap.Hold)
	assert.Equal(t, core.ShapeO, snap.Hold.Shape)
	assert.Equal(t, core.AppearanceBlocked, snap.Hold.Appearance)
}
