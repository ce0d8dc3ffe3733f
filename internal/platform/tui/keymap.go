package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/core"
)

// GameKeyMap holds the in-game bindings. It doubles as the help.KeyMap
// shown under the field.
type GameKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	SoftDrop  key.Binding
	HardDrop  key.Binding
	RotateCCW key.Binding
	RotateCW  key.Binding
	Hold      key.Binding
	Pause     key.Binding
	Restart   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// DefaultGameKeyMap returns the default bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/→", "move"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
		),
		SoftDrop: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "soft drop"),
		),
		HardDrop: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "hard drop"),
		),
		RotateCCW: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "rotate"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("tab", "x"),
			key.WithHelp("tab/x", "rotate cw"),
		),
		Hold: key.NewBinding(
			key.WithKeys("q", "j", "c"),
			key.WithHelp("q/c", "hold"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.SoftDrop, k.HardDrop, k.RotateCCW, k.Hold, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.SoftDrop, k.HardDrop},
		{k.RotateCCW, k.RotateCW, k.Hold},
		{k.Pause, k.Restart, k.Quit},
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultGameKeyMap()}
}

// Keys returns the bindings, e.g. for a help view.
func (km *KeyMapper) Keys() GameKeyMap {
	return km.keys
}

// MapKey translates a key message to a gameplay action.
// Returns the action (may be ActionNone) and whether it's a quit request.
// Esc maps to Pause; callers that show an end screen treat it as Back.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	k := km.keys
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit, true
	case key.Matches(msg, k.Left):
		return core.ActionLeft, false
	case key.Matches(msg, k.Right):
		return core.ActionRight, false
	case key.Matches(msg, k.SoftDrop):
		return core.ActionSoftDrop, false
	case key.Matches(msg, k.HardDrop):
		return core.ActionHardDrop, false
	case key.Matches(msg, k.RotateCCW):
		return core.ActionRotateCCW, false
	case key.Matches(msg, k.RotateCW):
		return core.ActionRotateCW, false
	case key.Matches(msg, k.Hold):
		return core.ActionHold, false
	case key.Matches(msg, k.Pause):
		return core.ActionPause, false
	case key.Matches(msg, k.Restart):
		return core.ActionRestart, false
	}
	return core.ActionNone, false
}

// IsBack reports whether the key leaves an end screen.
func (km *KeyMapper) IsBack(msg tea.KeyMsg) bool {
	return key.Matches(msg, km.keys.Back)
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
