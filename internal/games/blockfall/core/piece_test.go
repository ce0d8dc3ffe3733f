package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
)

func TestRotationIsReversible(t *testing.T) {
	for _, s := range core.AllShapes {
		base := s.Bitmap()
		for n := 0; n < 4; n++ {
			turned := base.Rotated(n)
			assert.Equal(t, turned, turned.Rotated(4), "%s rotated %d", s, n)
			assert.Equal(t, base.Count(), turned.Count(), "%s rotated %d", s, n)
			assert.Equal(t, base.Size, turned.Size)
		}
	}
}

func TestBitmapSizes(t *testing.T) {
	tests := []struct {
		shape core.Shape
		size  int
	}{
		{core.ShapeO, 2},
		{core.ShapeI, 4},
		{core.ShapeT, 3},
		{core.ShapeL, 3},
		{core.ShapeJ, 3},
		{core.ShapeS, 3},
		{core.ShapeZ, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.shape.Width(), tt.shape.String())
		assert.Equal(t, 4, tt.shape.Bitmap().Count(), tt.shape.String())
	}
}

func TestRotationCycle(t *testing.T) {
	r := core.Rot0
	for i := 0; i < 4; i++ {
		assert.Equal(t, r, r.CW().CCW())
		r = r.CW()
	}
	assert.Equal(t, core.Rot0, r)
	assert.Equal(t, core.RotL, core.Rot0.CCW())
	assert.Equal(t, 3, core.RotL.Turns())
}

func TestSpawnPosition(t *testing.T) {
	assert.Equal(t, core.C(3, -1), core.SpawnPosition(core.ShapeI))
	assert.Equal(t, core.C(4, -1), core.SpawnPosition(core.ShapeO))
	assert.Equal(t, core.C(4, -1), core.SpawnPosition(core.ShapeT))
}

func TestPieceCells(t *testing.T) {
	p := core.NewPiece(core.ShapeI).WithRotation(core.RotR)
	assert.Equal(t, []core.Coord{
		core.C(5, -1), core.C(5, 0), core.C(5, 1), core.C(5, 2),
	}, p.Cells())

	o := core.Piece{Shape: core.ShapeO, Pos: core.C(4, 0)}
	assert.ElementsMatch(t, []core.Coord{
		core.C(4, 0), core.C(5, 0), core.C(4, 1), core.C(5, 1),
	}, o.Cells())
}

func TestKickTableShape(t *testing.T) {
	transitions := [][2]core.Rotation{
		{core.Rot0, core.RotR}, {core.RotR, core.Rot0},
		{core.RotR, core.Rot2}, {core.Rot2, core.RotR},
		{core.Rot2, core.RotL}, {core.RotL, core.Rot2},
		{core.RotL, core.Rot0}, {core.Rot0, core.RotL},
	}
	for _, s := range []core.Shape{core.ShapeT, core.ShapeI} {
		for _, tr := range transitions {
			attempts, ok := core.Kicks(s, tr[0], tr[1])
			require.True(t, ok, "%s %s->%s", s, tr[0], tr[1])
			dx, dy := attempts[0].Offset()
			assert.Zero(t, dx)
			assert.Zero(t, dy)
		}
	}

	_, ok := core.Kicks(core.ShapeO, core.Rot0, core.RotR)
	assert.False(t, ok)
	_, ok = core.Kicks(core.ShapeT, core.Rot0, core.Rot2)
	assert.False(t, ok)

	attempts, _ := core.Kicks(core.ShapeI, core.Rot0, core.RotR)
	dx, dy := attempts[4].Offset()
	assert.Equal(t, 1, dx)
	assert.Equal(t, -2, dy)
}

func TestRotateKicksOffWall(t *testing.T) {
	g := core.NewGrid()
	p := core.Piece{Shape: core.ShapeT, Rot: core.RotR, Pos: core.C(-1, 5)}
	require.False(t, g.Colliding(p))

	got, ok := core.Rotate(g, p, core.Rot2)
	require.True(t, ok)
	assert.Equal(t, core.Rot2, got.Rot)
	assert.Equal(t, core.C(0, 5), got.Pos, "second attempt steps right")
}

func TestKickApplyTranslatesByOffset(t *testing.T) {
	attempts, ok := core.Kicks(core.ShapeI, core.Rot0, core.RotR)
	require.True(t, ok)
	p := core.Piece{Shape: core.ShapeI, Rot: core.RotR, Pos: core.C(3, 4)}

	got := attempts[4].Apply(p)
	dx, dy := attempts[4].Offset()
	assert.Equal(t, core.C(3+dx, 4+dy), got.Pos)
	assert.Equal(t, p.Rot, got.Rot, "kicks move, they never rotate")
}

func TestRotateRejected(t *testing.T) {
	g := core.NewGrid()
	p := core.Piece{Shape: core.ShapeT, Rot: core.RotR, Pos: core.C(3, 5)}
	occupied := map[core.Coord]bool{}
	for _, c := range p.Cells() {
		occupied[c] = true
	}
	for row := 0; row < core.Height; row++ {
		r := core.FilledRow(core.CellGarbage)
		for x := 0; x < core.Width; x++ {
			if occupied[core.C(x, row-core.Headroom)] {
				r[x] = core.CellEmpty
			}
		}
		g.SetRow(row, r)
	}

	got, ok := core.Rotate(g, p, core.Rot2)
	assert.False(t, ok)
	assert.Equal(t, p, got)

	got, ok = core.Rotate(g, p, core.Rot0)
	assert.False(t, ok)
	assert.Equal(t, p, got)
}

func TestRotateSquareIsNoop(t *testing.T) {
	g := core.NewGrid()
	p := core.Piece{Shape: core.ShapeO, Pos: core.C(4, 5)}
	got, ok := core.Rotate(g, p, core.RotR)
	assert.False(t, ok)
	assert.Equal(t, p, got)
}
