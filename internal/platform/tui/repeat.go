package tui

import "github.com/vovakirdan/blockfall/internal/core"

// Terminals report key presses but never releases. A key counts as held
// while its events keep arriving less than delay apart; the terminal's own
// repeat rate is then replaced by ours.
type keyState struct {
	sinceEvent float64
	sinceFire  float64
	held       bool
}

// repeater turns raw key events into actions with auto-repeat.
type repeater struct {
	delay    float64 // seconds; also the release window
	interval float64 // seconds between synthesized repeats
	keys     map[core.Action]*keyState
}

func newRepeater(delay, interval float64) *repeater {
	return &repeater{
		delay:    delay,
		interval: interval,
		keys:     make(map[core.Action]*keyState),
	}
}

// press records a key event and reports whether it fires immediately.
// Events that continue a held key never fire directly.
func (r *repeater) press(a core.Action) bool {
	if k, ok := r.keys[a]; ok {
		k.sinceEvent = 0
		if !k.held {
			k.held = true
			k.sinceFire = 0
		}
		return false
	}
	r.keys[a] = &keyState{}
	return true
}

// tick advances time and returns the synthesized repeats.
func (r *repeater) tick(dt float64) []core.Action {
	var out []core.Action
	for a, k := range r.keys {
		k.sinceEvent += dt
		if k.sinceEvent > r.delay {
			delete(r.keys, a)
			continue
		}
		if !k.held || !a.Repeats() {
			continue
		}
		k.sinceFire += dt
		for k.sinceFire >= r.interval {
			k.sinceFire -= r.interval
			out = append(out, a)
		}
	}
	return out
}

// reset forgets every held key.
func (r *repeater) reset() {
	clear(r.keys)
}
