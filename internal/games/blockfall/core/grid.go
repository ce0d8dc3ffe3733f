package core

import "fmt"

// Field dimensions. The buffer is Height rows tall; the bottom VisibleHeight
// rows are the playable area and the top Headroom rows absorb spawns.
const (
	Width         = 10
	Height        = 32
	VisibleHeight = 20
	Headroom      = Height - VisibleHeight
)

// Row is one horizontal line of the field.
type Row [Width]Cell

// Full reports whether the row has no empty cell.
func (r Row) Full() bool {
	for _, c := range r {
		if c.Empty() {
			return false
		}
	}
	return true
}

// IsEmpty reports whether every cell of the row is empty.
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// FilledRow returns a row with every cell set to c.
func FilledRow(c Cell) Row {
	var r Row
	for i := range r {
		r[i] = c
	}
	return r
}

// CollidingReason explains why a piece cannot occupy its position.
type CollidingReason uint8

const (
	CollideNone CollidingReason = iota
	CollideHitFloor
	CollideLeaveLeft
	CollideLeaveRight
	CollideTopOut
	CollideOverlap
)

func (r CollidingReason) String() string {
	switch r {
	case CollideNone:
		return "None"
	case CollideHitFloor:
		return "HitFloor"
	case CollideLeaveLeft:
		return "LeaveLeft"
	case CollideLeaveRight:
		return "LeaveRight"
	case CollideTopOut:
		return "TopOut"
	case CollideOverlap:
		return "Overlap"
	default:
		return "Unknown"
	}
}

// Grid is the fixed-size cell buffer. Row 0 is the top of the headroom and
// row Height-1 is the floor row. Piece coordinates map to buffer rows via
// BufferRow.
type Grid struct {
	rows [Height]Row
}

// NewGrid creates an empty field.
func NewGrid() *Grid {
	return &Grid{}
}

// BufferRow converts a field Y coordinate into a buffer row index.
func BufferRow(y int) int {
	return y + Headroom
}

// Collision tests every cell the piece would occupy and returns the
// highest-priority reason over the whole piece, not the first cell hit:
// HitFloor, LeaveLeft, LeaveRight, TopOut, then Overlap.
func (g *Grid) Collision(p Piece) CollidingReason {
	var floor, left, right, top, overlap bool
	for _, c := range p.Cells() {
		row := BufferRow(c.Y)
		switch {
		case row < 0:
			floor = true
		case c.X < 0:
			left = true
		case c.X >= Width:
			right = true
		case row >= Height:
			top = true
		case !g.At(c.X, row).Empty():
			overlap = true
		}
	}
	switch {
	case floor:
		return CollideHitFloor
	case left:
		return CollideLeaveLeft
	case right:
		return CollideLeaveRight
	case top:
		return CollideTopOut
	case overlap:
		return CollideOverlap
	}
	return CollideNone
}

// Colliding reports whether the piece collides for any reason.
func (g *Grid) Colliding(p Piece) bool {
	return g.Collision(p) != CollideNone
}

// Commit writes the piece into the field and reports overflow: true if any
// cell landed in the headroom or a target cell was already occupied.
// Occupied targets are left untouched. A cell outside the buffer is a
// programming error and panics.
func (g *Grid) Commit(p Piece) bool {
	overflow := false
	color := p.Shape.Color()
	for _, c := range p.Cells() {
		row := BufferRow(c.Y)
		if row < 0 || row >= Height || c.X < 0 || c.X >= Width {
			panic(fmt.Sprintf("core: commit outside field at %v", c))
		}
		if row < Headroom {
			overflow = true
		}
		if !g.rows[row][c.X].Empty() {
			overflow = true
			continue
		}
		g.rows[row][c.X] = color
	}
	return overflow
}

// Rows returns a copy of the whole buffer, top row first.
func (g *Grid) Rows() [Height]Row {
	return g.rows
}

// VisibleRows returns a copy of the playable rows, top row first.
func (g *Grid) VisibleRows() [VisibleHeight]Row {
	var out [VisibleHeight]Row
	copy(out[:], g.rows[Headroom:])
	return out
}

// Row returns a copy of the buffer row at index y.
func (g *Grid) Row(y int) Row {
	return g.rows[y]
}

// At returns the cell at a buffer position.
func (g *Grid) At(x, row int) Cell {
	return g.rows[row][x]
}

// SetRow replaces the buffer row at index y.
func (g *Grid) SetRow(y int, r Row) {
	g.rows[y] = r
}

// InsertRowRemoveTop inserts r at buffer index y and discards row 0, so every
// row above y moves up by one. Garbage uses y = Height-1.
func (g *Grid) InsertRowRemoveTop(y int, r Row) {
	if y < 0 || y >= Height {
		panic(fmt.Sprintf("core: insert row %d outside field", y))
	}
	copy(g.rows[:y], g.rows[1:y+1])
	g.rows[y] = r
}

// ClearAndCollapse removes the rows at the given indices and inserts as many
// empty rows at the top, keeping the order of the remaining rows.
func (g *Grid) ClearAndCollapse(indices []int) {
	if len(indices) == 0 {
		return
	}
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	var next [Height]Row
	dst := Height - 1
	for src := Height - 1; src >= 0; src-- {
		if drop[src] {
			continue
		}
		next[dst] = g.rows[src]
		dst--
	}
	g.rows = next
}

// FullRows returns the buffer indices of rows with no empty cell, ascending.
func (g *Grid) FullRows() []int {
	var out []int
	for y, r := range g.rows {
		if r.Full() {
			out = append(out, y)
		}
	}
	return out
}

// StackHeight returns the number of rows from the floor up to and including
// the highest non-empty row.
func (g *Grid) StackHeight() int {
	for y, r := range g.rows {
		if !r.IsEmpty() {
			return Height - y
		}
	}
	return 0
}
