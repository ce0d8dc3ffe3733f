package core

// KickClass groups shapes that share a kick table.
type KickClass uint8

const (
	KickNone     KickClass = iota // O: rotation-invariant, never kicks
	KickStandard                  // J, L, S, T, Z
	KickLine                      // I
)

// Class returns the kick class of a shape.
func (s Shape) Class() KickClass {
	switch s {
	case ShapeO:
		return KickNone
	case ShapeI:
		return KickLine
	default:
		return KickStandard
	}
}

// KickAttempts is the number of candidate offsets tried per rotation.
const KickAttempts = 5

// Kick is one attempt: unit steps applied to the anchor in order.
type Kick []Dir

// Offset sums the steps of the kick.
func (k Kick) Offset() (dx, dy int) {
	for _, d := range k {
		x, y := d.Delta()
		dx += x
		dy += y
	}
	return dx, dy
}

// Apply returns p translated by the kick's offset.
func (k Kick) Apply(p Piece) Piece {
	dx, dy := k.Offset()
	p.Pos = p.Pos.Add(dx, dy)
	return p
}

type kickKey struct {
	class    KickClass
	from, to Rotation
}

var kickTable = buildKickTable()

func buildKickTable() map[kickKey][KickAttempts]Kick {
	const (
		u = DirUp
		d = DirDown
		l = DirLeft
		r = DirRight
	)
	return map[kickKey][KickAttempts]Kick{
		{KickStandard, Rot0, RotR}: {{}, {l}, {l, u}, {d, d}, {l, d, d}},
		{KickStandard, RotR, Rot0}: {{}, {r}, {r, d}, {u, u}, {r, u, u}},
		{KickStandard, RotR, Rot2}: {{}, {r}, {r, d}, {u, u}, {r, u, u}},
		{KickStandard, Rot2, RotR}: {{}, {l}, {l, u}, {d, d}, {l, d, d}},
		{KickStandard, Rot2, RotL}: {{}, {r}, {r, u}, {d, d}, {r, d, d}},
		{KickStandard, RotL, Rot2}: {{}, {l}, {l, d}, {u, u}, {l, u, u}},
		{KickStandard, RotL, Rot0}: {{}, {l}, {l, d}, {u, u}, {l, u, u}},
		{KickStandard, Rot0, RotL}: {{}, {r}, {r, u}, {d, d}, {r, d, d}},

		{KickLine, Rot0, RotR}: {{}, {l, l}, {r}, {l, l, d}, {r, u, u}},
		{KickLine, RotR, Rot0}: {{}, {r, r}, {l}, {r, r, u}, {l, d, d}},
		{KickLine, RotR, Rot2}: {{}, {l}, {r, r}, {l, u, u}, {r, r, d}},
		{KickLine, Rot2, RotR}: {{}, {r}, {l, l}, {r, d, d}, {l, l, u}},
		{KickLine, Rot2, RotL}: {{}, {r, r}, {l}, {r, r, u}, {l, d, d}},
		{KickLine, RotL, Rot2}: {{}, {l, l}, {r}, {l, l, d}, {r, u, u}},
		{KickLine, RotL, Rot0}: {{}, {r}, {l, l}, {r, d, d}, {l, l, u}},
		{KickLine, Rot0, RotL}: {{}, {l}, {r, r}, {l, u, u}, {r, r, d}},
	}
}

// Kicks returns the attempts for rotating a shape between two adjacent
// states. ok is false for the O piece and for non-adjacent transitions.
func Kicks(s Shape, from, to Rotation) (attempts [KickAttempts]Kick, ok bool) {
	attempts, ok = kickTable[kickKey{class: s.Class(), from: from, to: to}]
	return attempts, ok
}

// Rotate resolves a rotation of p to state to against the grid. It returns
// the accepted piece and true, or p unchanged and false when every attempt
// collides. Shapes without a kick table (O) never rotate.
func Rotate(g *Grid, p Piece, to Rotation) (Piece, bool) {
	attempts, ok := Kicks(p.Shape, p.Rot, to)
	if !ok {
		return p, false
	}
	turned := p.WithRotation(to)
	for _, k := range attempts {
		candidate := k.Apply(turned)
		if g.Collision(candidate) == CollideNone {
			return candidate, true
		}
	}
	return p, false
}
