package core

import "math"

// MaxLevel is the highest level.
const MaxLevel = 12

// Online pacing.
const (
	OnlineGracePeriod  = 30.0 // seconds at level 1 before speeding up
	OnlineLevelSeconds = 20.0 // seconds per level after the grace period
)

// gravityFrames is the fall period per level in 1/60 s frames.
var gravityFrames = [MaxLevel]float64{60, 50, 40, 30, 20, 10, 8, 6, 4, 2, 1, 0.3}

// Gravity returns seconds per row of fall at the given level (clamped to 1..12).
func Gravity(level int) float64 {
	level = clampLevel(level)
	return gravityFrames[level-1] / 60
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LineBonus maps a number of rows cleared at once to its score bonus.
func LineBonus(lines int) int {
	switch lines {
	case 1:
		return 1
	case 2:
		return 3
	case 3:
		return 5
	case 4:
		return 8
	default:
		return 0
	}
}

// ClearScore returns the score awarded for clearing lines rows at once.
func ClearScore(lines int) int {
	return 40 * (LineBonus(lines) + 1)
}

// Mode selects the leveling rules.
type Mode uint8

const (
	ModeSingle Mode = iota
	ModeOnline
)

func (m Mode) String() string {
	if m == ModeOnline {
		return "online"
	}
	return "single"
}

// Leveling tracks level and score. Singleplayer levels up on cleared lines
// and keeps a score; online levels up with elapsed match time and scores
// nothing.
type Leveling struct {
	mode    Mode
	level   int
	score   int
	lines   int
	elapsed float64
}

// NewLeveling creates leveling state for the given mode at level 1.
func NewLeveling(mode Mode) *Leveling {
	return &Leveling{mode: mode, level: 1}
}

// ClearedLines books rows cleared by one commit.
func (l *Leveling) ClearedLines(n int) {
	if n <= 0 {
		return
	}
	l.lines += n
	if l.mode != ModeSingle {
		return
	}
	l.score += ClearScore(n)
	if l.lines >= l.level*5 && l.level < MaxLevel {
		l.level++
	}
}

// Advance adds elapsed match time; only online leveling depends on it.
func (l *Leveling) Advance(dt float64) {
	l.elapsed += dt
	if l.mode != ModeOnline {
		return
	}
	l.level = OnlineLevel(l.elapsed)
}

// OnlineLevel returns the online level after t seconds of play.
func OnlineLevel(t float64) int {
	if t < OnlineGracePeriod {
		return 1
	}
	return clampLevel(1 + int(math.Floor((t-OnlineGracePeriod)/OnlineLevelSeconds)))
}

// Gravity returns the current fall period in seconds.
func (l *Leveling) Gravity() float64 {
	return Gravity(l.level)
}

// Level returns the current level.
func (l *Leveling) Level() int { return l.level }

// Score returns the singleplayer score.
func (l *Leveling) Score() int { return l.score }

// Lines returns the total rows cleared.
func (l *Leveling) Lines() int { return l.lines }

// Elapsed returns the time fed through Advance.
func (l *Leveling) Elapsed() float64 { return l.elapsed }

// Mode returns the leveling rules in use.
func (l *Leveling) Mode() Mode { return l.mode }
