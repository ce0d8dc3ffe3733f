package core

import "math/rand"

// Pacing constants, in seconds.
const (
	SpawnDelay           = 0.11 // wait after a commit that cleared nothing
	SpawnDelayAfterClear = 0.74 // wait after a commit that cleared rows
	ClearHideDelay       = 0.12 // flashing rows are blanked after this long
	ClearDuration        = 0.3  // flashing rows are removed after this long
)

// Command is a discrete player input.
type Command uint8

const (
	CmdNone Command = iota
	CmdMoveLeft
	CmdMoveRight
	CmdSoftDrop
	CmdHardDrop
	CmdRotateCW
	CmdRotateCCW
	CmdHold
	CmdPause
)

func (c Command) String() string {
	switch c {
	case CmdMoveLeft:
		return "MoveLeft"
	case CmdMoveRight:
		return "MoveRight"
	case CmdSoftDrop:
		return "SoftDrop"
	case CmdHardDrop:
		return "HardDrop"
	case CmdRotateCW:
		return "RotateCW"
	case CmdRotateCCW:
		return "RotateCCW"
	case CmdHold:
		return "Hold"
	case CmdPause:
		return "Pause"
	default:
		return "None"
	}
}

// HoldState tags the hold slot.
type HoldState uint8

const (
	HoldEmpty HoldState = iota
	HoldUnlocked
	HoldLocked // already swapped since the last commit
)

// HoldSlot is the optional held piece.
type HoldSlot struct {
	State HoldState
	Piece Piece
}

// Events collects what happened since the last TakeEvents call.
type Events struct {
	Clears    []int // rows cleared per commit, in commit order
	ToppedOut bool  // the game ended during the period
}

// Options configures a new Sim.
type Options struct {
	Mode Mode
	Seed int64
	// Source overrides the bag randomizer when non-nil.
	Source PieceSource
}

type clearAnim struct {
	rows    []int
	elapsed float64
	hidden  bool
}

// Sim drives one field through the fall, lock, clear and spawn cycle.
// It is not safe for concurrent use.
type Sim struct {
	mode     Mode
	rng      *rand.Rand
	grid     *Grid
	source   PieceSource
	leveling *Leveling

	hasPiece    bool
	piece       Piece
	fall        float64 // accumulated gravity time
	waitElapsed float64
	wait        float64

	hold     HoldSlot
	tracker  *LockTracker
	clearing *clearAnim
	garbage  int

	gameOver bool
	paused   bool
	events   Events
}

// NewSim creates a simulation with an empty field. The first piece spawns
// once the initial (zero) wait has passed, i.e. on the first Tick.
func NewSim(opts Options) *Sim {
	rng := rand.New(rand.NewSource(opts.Seed))
	src := opts.Source
	if src == nil {
		src = NewBag(rng)
	}
	return &Sim{
		mode:     opts.Mode,
		rng:      rng,
		grid:     NewGrid(),
		source:   src,
		leveling: NewLeveling(opts.Mode),
		wait:     -1,
	}
}

// Tick advances the simulation by dt seconds.
func (s *Sim) Tick(dt float64) {
	if s.gameOver || s.paused {
		return
	}
	s.leveling.Advance(dt)

	if s.hasPiece {
		s.stepPiece(dt)
	} else {
		s.waitElapsed += dt
		if s.waitElapsed > s.wait {
			s.spawn()
		}
	}

	s.advanceClear(dt)
	s.injectGarbage()
}

func (s *Sim) stepPiece(dt float64) {
	s.fall += dt
	s.syncTracker()
	if s.tracker != nil {
		s.fall = 0
		s.tracker.Advance(dt)
		if s.tracker.Exceeded() {
			s.lock()
		}
		return
	}

	period := s.leveling.Gravity()
	for s.fall >= period {
		s.fall -= period
		next := s.piece.Moved(DirDown)
		if s.grid.Colliding(next) {
			break
		}
		s.piece = next
		s.syncTracker()
		if s.tracker != nil {
			s.fall = 0
			break
		}
	}
}

// Apply executes one player command and reports whether it changed state.
func (s *Sim) Apply(cmd Command) bool {
	if s.gameOver {
		return false
	}
	if cmd == CmdPause {
		if s.mode != ModeSingle {
			return false
		}
		s.paused = !s.paused
		return true
	}
	if s.paused || !s.hasPiece {
		return false
	}

	switch cmd {
	case CmdMoveLeft:
		return s.tryMove(s.piece.Moved(DirLeft))
	case CmdMoveRight:
		return s.tryMove(s.piece.Moved(DirRight))
	case CmdSoftDrop:
		return s.tryMove(s.piece.Moved(DirDown))
	case CmdHardDrop:
		s.piece = s.dropPosition(s.piece)
		s.lock()
		return true
	case CmdRotateCW:
		return s.tryRotate(s.piece.Rot.CW())
	case CmdRotateCCW:
		return s.tryRotate(s.piece.Rot.CCW())
	case CmdHold:
		return s.swapHold()
	}
	return false
}

func (s *Sim) tryMove(p Piece) bool {
	if s.grid.Colliding(p) {
		return false
	}
	s.piece = p
	s.qualify()
	return true
}

func (s *Sim) tryRotate(to Rotation) bool {
	p, ok := Rotate(s.grid, s.piece, to)
	if !ok {
		return false
	}
	s.piece = p
	s.qualify()
	return true
}

// qualify books a successful move or rotation against the lock delay.
func (s *Sim) qualify() {
	had := s.tracker != nil
	s.syncTracker()
	if !had || s.tracker == nil {
		return
	}
	s.tracker.Press()
	if s.tracker.Exceeded() {
		s.lock()
	}
}

// syncTracker creates the lock tracker when the piece rests on a surface and
// drops it when the piece no longer does.
func (s *Sim) syncTracker() {
	if !s.hasPiece || !s.grounded() {
		s.tracker = nil
		return
	}
	if s.tracker == nil {
		s.tracker = NewLockTracker()
	}
}

func (s *Sim) grounded() bool {
	return s.grid.Colliding(s.piece.Moved(DirDown))
}

// dropPosition moves p down until the next step would collide.
func (s *Sim) dropPosition(p Piece) Piece {
	for !s.grid.Colliding(p) {
		p = p.Moved(DirDown)
	}
	return p.Moved(DirUp)
}

func (s *Sim) swapHold() bool {
	current := s.piece.Reset()
	switch s.hold.State {
	case HoldEmpty:
		s.spawn()
	case HoldUnlocked:
		s.place(s.hold.Piece.Reset())
	default:
		return false
	}
	s.hold = HoldSlot{State: HoldLocked, Piece: current}
	return true
}

func (s *Sim) spawn() {
	s.place(NewPiece(s.source.Next()))
}

// place makes p the active piece one row below its anchor, nudging it back
// up when that row is taken. A piece that fits neither way ends the game.
func (s *Sim) place(p Piece) {
	p = p.Moved(DirDown)
	switch s.grid.Collision(p) {
	case CollideNone, CollideTopOut:
	default:
		p = p.Moved(DirUp)
		switch s.grid.Collision(p) {
		case CollideNone, CollideTopOut:
		default:
			s.setGameOver()
		}
	}
	s.piece = p
	s.hasPiece = true
	s.fall = 0
	s.tracker = nil
}

// lock commits the active piece and schedules the next spawn.
func (s *Sim) lock() {
	p := s.piece
	s.hasPiece = false
	s.tracker = nil
	s.fall = 0
	if s.hold.State == HoldLocked {
		s.hold.State = HoldUnlocked
	}

	overflow := s.grid.Commit(p)
	rows := s.grid.FullRows()
	for _, y := range rows {
		s.grid.SetRow(y, FilledRow(CellDestroying))
	}

	s.waitElapsed = 0
	s.wait = SpawnDelay
	if len(rows) > 0 {
		s.wait = SpawnDelayAfterClear
		s.leveling.ClearedLines(len(rows))
		s.clearing = &clearAnim{rows: rows}
		s.events.Clears = append(s.events.Clears, len(rows))
	}
	if overflow && len(rows) == 0 {
		s.setGameOver()
	}
}

func (s *Sim) advanceClear(dt float64) {
	c := s.clearing
	if c == nil {
		return
	}
	c.elapsed += dt
	if c.elapsed > ClearDuration {
		s.grid.ClearAndCollapse(c.rows)
		s.clearing = nil
		return
	}
	if !c.hidden && c.elapsed >= ClearHideDelay {
		for _, y := range c.rows {
			s.grid.SetRow(y, Row{})
		}
		c.hidden = true
	}
}

// injectGarbage inserts at most one pending garbage row per tick. Unlike a
// strict one-per-tick feed, injection is held back while a clear animation
// runs: inserting would shift the marked rows under the animation, so the
// backlog resumes on the first tick after the rows collapse.
func (s *Sim) injectGarbage() {
	if s.garbage == 0 || s.clearing != nil {
		return
	}
	row := FilledRow(CellGarbage)
	row[s.rng.Intn(Width)] = CellEmpty
	s.grid.InsertRowRemoveTop(Height-1, row)
	s.garbage--

	if s.hasPiece && s.grid.Colliding(s.piece) {
		if lifted := s.piece.Moved(DirUp); !s.grid.Colliding(lifted) {
			s.piece = lifted
		}
	}
}

func (s *Sim) setGameOver() {
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.events.ToppedOut = true
}

// AddGarbage queues n garbage rows.
func (s *Sim) AddGarbage(n int) {
	if n > 0 {
		s.garbage += n
	}
}

// TakeEvents returns and resets the events collected since the last call.
func (s *Sim) TakeEvents() Events {
	ev := s.events
	s.events = Events{}
	return ev
}

// Grid exposes the field. Mutating it directly bypasses the lock cycle.
func (s *Sim) Grid() *Grid { return s.grid }

// Active returns the active piece, if any.
func (s *Sim) Active() (Piece, bool) { return s.piece, s.hasPiece }

// Waiting returns the spawn timer while no piece is active.
func (s *Sim) Waiting() (elapsed, wait float64, ok bool) {
	if s.hasPiece {
		return 0, 0, false
	}
	return s.waitElapsed, s.wait, true
}

// Hold returns the hold slot.
func (s *Sim) Hold() HoldSlot { return s.hold }

// Tracker returns the lock tracker while the piece is grounded.
func (s *Sim) Tracker() *LockTracker { return s.tracker }

// Leveling returns the level and score state.
func (s *Sim) Leveling() *Leveling { return s.leveling }

// PendingGarbage returns the number of garbage rows still to insert.
func (s *Sim) PendingGarbage() int { return s.garbage }

// Clearing reports whether a line-clear animation is running.
func (s *Sim) Clearing() bool { return s.clearing != nil }

// GameOver reports whether the game has ended.
func (s *Sim) GameOver() bool { return s.gameOver }

// Paused reports whether the game is paused.
func (s *Sim) Paused() bool { return s.paused }

// Mode returns the leveling rules in use.
func (s *Sim) Mode() Mode { return s.mode }
