// Package core provides the simulation core of the Blockfall puzzle game:
// the playing field, piece geometry, piece supply, lock delay, leveling and
// the per-tick orchestrator. This package is UI-agnostic and owns no
// goroutines; callers drive it from a single loop.
package core

import "fmt"

// Dir is a unit step used for piece movement and kick attempts.
type Dir uint8

const (
	DirUp Dir = iota
	DirRight
	DirDown
	DirLeft
)

// String returns the string representation of a direction.
func (d Dir) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirRight:
		return "Right"
	case DirDown:
		return "Down"
	case DirLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Delta returns the (dx, dy) offset for one step in this direction.
// Up decreases Y, Down increases Y (screen coordinates).
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// Coord is a position in field coordinates.
// X grows to the right, Y grows downward; Y = 0 is the top visible row and
// negative Y addresses the headroom above it.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Step returns a new Coord one step in the given direction.
func (c Coord) Step(d Dir) Coord {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

// Cell classifies one field position. The zero value is empty.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellPurple
	CellOrange
	CellBlue
	CellGreen
	CellRed
	CellYellow
	CellCyan
	CellGarbage
	CellDestroying // row is flashing before removal
	CellBlocked    // held piece that cannot be swapped this turn
)

// Empty reports whether the cell holds nothing.
func (c Cell) Empty() bool {
	return c == CellEmpty
}

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "Empty"
	case CellPurple:
		return "Purple"
	case CellOrange:
		return "Orange"
	case CellBlue:
		return "Blue"
	case CellGreen:
		return "Green"
	case CellRed:
		return "Red"
	case CellYellow:
		return "Yellow"
	case CellCyan:
		return "Cyan"
	case CellGarbage:
		return "Garbage"
	case CellDestroying:
		return "Destroying"
	case CellBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}
