package core

// Appearance selects how a piece is drawn.
type Appearance uint8

const (
	AppearanceNormal Appearance = iota
	AppearanceGhost
	AppearanceBlocked
)

func (a Appearance) String() string {
	switch a {
	case AppearanceGhost:
		return "ghost"
	case AppearanceBlocked:
		return "blocked"
	default:
		return "normal"
	}
}

// ClearPhase is the stage of the line-clear animation.
type ClearPhase uint8

const (
	ClearNone ClearPhase = iota
	ClearFlashing
	ClearHidden
)

// PieceView is a piece as the renderer sees it.
type PieceView struct {
	Shape      Shape      `json:"shape"`
	Cells      []Coord    `json:"cells"`
	Appearance Appearance `json:"appearance"`
}

// HoldView is the hold slot as the renderer sees it.
type HoldView struct {
	Shape      Shape      `json:"shape"`
	Appearance Appearance `json:"appearance"`
}

// Snapshot is a read-only copy of everything the presentation layer needs.
type Snapshot struct {
	Mode           Mode               `json:"mode"`
	Rows           [VisibleHeight]Row `json:"rows"`
	Active         *PieceView         `json:"active,omitempty"`
	Ghost          *PieceView         `json:"ghost,omitempty"`
	Hold           *HoldView          `json:"hold,omitempty"`
	Next           []Shape            `json:"next"`
	Score          int                `json:"score"`
	Level          int                `json:"level"`
	Lines          int                `json:"lines"`
	StackHeight    int                `json:"stack_height"`
	PendingGarbage int                `json:"pending_garbage"`
	Clear          ClearPhase         `json:"clear"`
	GameOver       bool               `json:"game_over"`
	Paused         bool               `json:"paused"`
}

// MaxPreview is the number of upcoming shapes included in a snapshot: the
// bag always holds at least one full set ahead. Renderers show a prefix.
const MaxPreview = ShapeCount

// Snapshot captures the current state for rendering.
func (s *Sim) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:           s.mode,
		Rows:           s.grid.VisibleRows(),
		Next:           s.source.Peek(MaxPreview),
		Score:          s.leveling.Score(),
		Level:          s.leveling.Level(),
		Lines:          s.leveling.Lines(),
		StackHeight:    s.grid.StackHeight(),
		PendingGarbage: s.garbage,
		GameOver:       s.gameOver,
		Paused:         s.paused,
	}

	if s.hasPiece {
		snap.Active = &PieceView{Shape: s.piece.Shape, Cells: s.piece.Cells(), Appearance: AppearanceNormal}
		if !s.gameOver && !s.grid.Colliding(s.piece) {
			ghost := s.dropPosition(s.piece)
			snap.Ghost = &PieceView{Shape: ghost.Shape, Cells: ghost.Cells(), Appearance: AppearanceGhost}
		}
	}

	switch s.hold.State {
	case HoldUnlocked:
		snap.Hold = &HoldView{Shape: s.hold.Piece.Shape, Appearance: AppearanceNormal}
	case HoldLocked:
		snap.Hold = &HoldView{Shape: s.hold.Piece.Shape, Appearance: AppearanceBlocked}
	}

	if c := s.clearing; c != nil {
		snap.Clear = ClearFlashing
		if c.hidden {
			snap.Clear = ClearHidden
		}
	}
	return snap
}
