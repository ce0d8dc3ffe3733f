// Package tui runs blockfall in the terminal with Bubble Tea: the solo
// and online game screens, the menu and scoreboard, key handling and the
// SSH front end.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives one simulation step. Every screen that steps a game
// reschedules it from Update, so a screen that stops returning tickCmd
// stops its loop.
type TickMsg time.Time

func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	return tea.Tick(time.Second/time.Duration(tickRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
