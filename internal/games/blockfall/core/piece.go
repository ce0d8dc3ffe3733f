package core

import "math"

// Shape identifies one of the seven pieces.
type Shape uint8

const (
	ShapeT Shape = iota
	ShapeL
	ShapeJ
	ShapeZ
	ShapeS
	ShapeO
	ShapeI
)

// ShapeCount is the number of distinct shapes.
const ShapeCount = 7

// AllShapes lists every shape in catalogue order.
var AllShapes = [ShapeCount]Shape{ShapeT, ShapeL, ShapeJ, ShapeZ, ShapeS, ShapeO, ShapeI}

func (s Shape) String() string {
	switch s {
	case ShapeT:
		return "T"
	case ShapeL:
		return "L"
	case ShapeJ:
		return "J"
	case ShapeZ:
		return "Z"
	case ShapeS:
		return "S"
	case ShapeO:
		return "O"
	case ShapeI:
		return "I"
	default:
		return "?"
	}
}

// Color returns the cell color a locked piece of this shape leaves behind.
func (s Shape) Color() Cell {
	switch s {
	case ShapeT:
		return CellPurple
	case ShapeL:
		return CellOrange
	case ShapeJ:
		return CellBlue
	case ShapeZ:
		return CellRed
	case ShapeS:
		return CellGreen
	case ShapeO:
		return CellYellow
	case ShapeI:
		return CellCyan
	default:
		return CellGarbage
	}
}

// Rotation is the cyclic rotation state of a piece.
type Rotation uint8

const (
	Rot0 Rotation = iota
	RotR
	Rot2
	RotL
)

// CW returns the state after a clockwise quarter turn.
func (r Rotation) CW() Rotation {
	switch r {
	case Rot0:
		return RotR
	case RotR:
		return Rot2
	case Rot2:
		return RotL
	default:
		return Rot0
	}
}

// CCW returns the state after a counter-clockwise quarter turn.
func (r Rotation) CCW() Rotation {
	switch r {
	case Rot0:
		return RotL
	case RotL:
		return Rot2
	case Rot2:
		return RotR
	default:
		return Rot0
	}
}

// Turns returns how many clockwise quarter turns separate r from Rot0.
func (r Rotation) Turns() int {
	switch r {
	case RotR:
		return 1
	case Rot2:
		return 2
	case RotL:
		return 3
	default:
		return 0
	}
}

func (r Rotation) String() string {
	switch r {
	case Rot0:
		return "0"
	case RotR:
		return "R"
	case Rot2:
		return "2"
	case RotL:
		return "L"
	default:
		return "?"
	}
}

// Bitmap is a square occupancy mask; Cells[y][x] covers rows and columns
// below Size only.
type Bitmap struct {
	Size  int
	Cells [4][4]bool
}

func bitmapOf(rows ...string) Bitmap {
	b := Bitmap{Size: len(rows)}
	for y, row := range rows {
		for x, ch := range row {
			b.Cells[y][x] = ch == '#'
		}
	}
	return b
}

// RotateCW returns the bitmap turned 90 degrees clockwise.
func (b Bitmap) RotateCW() Bitmap {
	out := Bitmap{Size: b.Size}
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			out.Cells[x][b.Size-1-y] = b.Cells[y][x]
		}
	}
	return out
}

// Rotated applies RotateCW n times.
func (b Bitmap) Rotated(n int) Bitmap {
	for i := 0; i < n; i++ {
		b = b.RotateCW()
	}
	return b
}

// Count returns the number of occupied cells.
func (b Bitmap) Count() int {
	n := 0
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.Cells[y][x] {
				n++
			}
		}
	}
	return n
}

// spawnBitmaps holds each shape in its spawn orientation.
var spawnBitmaps = [ShapeCount]Bitmap{
	ShapeT: bitmapOf(".#.", "###", "..."),
	ShapeL: bitmapOf("..#", "###", "..."),
	ShapeJ: bitmapOf("#..", "###", "..."),
	ShapeZ: bitmapOf("##.", ".##", "..."),
	ShapeS: bitmapOf(".##", "##.", "..."),
	ShapeO: bitmapOf("##", "##"),
	ShapeI: bitmapOf("....", "####", "....", "...."),
}

// rotatedBitmaps[s][r] is spawnBitmaps[s] rotated r.Turns() times.
var rotatedBitmaps [ShapeCount][4]Bitmap

func init() {
	for s := range spawnBitmaps {
		for r := 0; r < 4; r++ {
			rotatedBitmaps[s][r] = spawnBitmaps[s].Rotated(r)
		}
	}
}

// Bitmap returns the spawn-orientation bitmap of the shape.
func (s Shape) Bitmap() Bitmap {
	return spawnBitmaps[s]
}

// Width returns the bitmap side length of the shape.
func (s Shape) Width() int {
	return spawnBitmaps[s].Size
}

// Piece is a shape placed in the field. Occupied cells derive from
// (Shape, Rot, Pos) only.
type Piece struct {
	Shape Shape    `json:"shape"`
	Rot   Rotation `json:"rot"`
	Pos   Coord    `json:"pos"`
}

// SpawnPosition returns the default anchor: horizontally centred, one row
// above the visible area.
func SpawnPosition(s Shape) Coord {
	x := math.Round(float64(Width)/2 - float64(s.Width())/2)
	return C(int(x), -1)
}

// NewPiece creates a piece of shape s at its spawn anchor and rotation.
func NewPiece(s Shape) Piece {
	return Piece{Shape: s, Rot: Rot0, Pos: SpawnPosition(s)}
}

// Reset returns the piece to its spawn anchor and rotation.
func (p Piece) Reset() Piece {
	return NewPiece(p.Shape)
}

// Cells returns the occupied field positions.
func (p Piece) Cells() []Coord {
	b := rotatedBitmaps[p.Shape][p.Rot.Turns()]
	out := make([]Coord, 0, 4)
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			if b.Cells[y][x] {
				out = append(out, p.Pos.Add(x, y))
			}
		}
	}
	return out
}

// Moved returns the piece one step in direction d.
func (p Piece) Moved(d Dir) Piece {
	p.Pos = p.Pos.Step(d)
	return p
}

// WithRotation returns the piece with its rotation state set to r.
func (p Piece) WithRotation(r Rotation) Piece {
	p.Rot = r
	return p
}
