package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows games to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone      Action = iota
	ActionLeft             // Left arrow - shift piece left
	ActionRight            // Right arrow - shift piece right
	ActionSoftDrop         // Down arrow - one row down
	ActionHardDrop         // Up arrow - drop and lock
	ActionRotateCW         // Tab, X
	ActionRotateCCW        // Space, Enter
	ActionHold             // Q, J, C
	ActionPause            // P, Escape
	ActionRestart          // R - restart after game over
	ActionBack             // Escape on an end screen
	ActionQuit             // Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionSoftDrop:
		return "SoftDrop"
	case ActionHardDrop:
		return "HardDrop"
	case ActionRotateCW:
		return "RotateCW"
	case ActionRotateCCW:
		return "RotateCCW"
	case ActionHold:
		return "Hold"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Repeats reports whether holding the key auto-repeats the action.
func (a Action) Repeats() bool {
	return a == ActionLeft || a == ActionRight || a == ActionSoftDrop
}

// InputFrame represents the input state for a single player during one simulation tick.
// It contains all actions that were triggered during this frame.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
	// order keeps first-trigger order so moves and rotations apply as typed.
	order []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	if !f.Actions[a] {
		f.order = append(f.order, a)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Ordered returns the triggered actions in the order they were first set.
func (f InputFrame) Ordered() []Action {
	return f.order
}

// Empty reports whether nothing was triggered.
func (f InputFrame) Empty() bool {
	return len(f.order) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.order = f.order[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for _, a := range f.order {
		clone.Set(a)
	}
	return clone
}
