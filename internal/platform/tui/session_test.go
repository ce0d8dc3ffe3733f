package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/multiplayer"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
)

func titles(items []MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestMenuItems(t *testing.T) {
	m := NewMenuModel(testCfg, false)
	assert.Equal(t, []string{"Blockfall", "High scores", "Quit"}, titles(m.items))

	m = NewMenuModel(testCfg, true)
	assert.Equal(t, []string{"Blockfall", "Online duel", "High scores", "Quit"}, titles(m.items))
	assert.Equal(t, multiplayer.MatchModeOnlinePvP, m.items[1].Mode)
}

func TestMenuNavigation(t *testing.T) {
	m := NewMenuModel(testCfg, false)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp}).(MenuModel)
	assert.Equal(t, 0, m.cursor, "cursor stops at the top")

	m = update(t, m, keyDown, keyDown, keyDown).(MenuModel)
	assert.Equal(t, 2, m.cursor, "cursor stops at the bottom")

	nm, cmd := m.Update(keyEnter)
	assert.True(t, nm.(MenuModel).IsQuitting(), "selecting Quit quits")
	assert.NotNil(t, cmd)
}

func TestMenuSelect(t *testing.T) {
	m := NewMenuModel(testCfg, false)
	m = update(t, m, keyEnter).(MenuModel)
	require.NotNil(t, m.Selected())
	assert.Equal(t, "blockfall", m.Selected().GameID)
	assert.Contains(t, m.View(), "B L O C K F A L L")
}

func TestCenterText(t *testing.T) {
	assert.Equal(t, "   ab", centerText("ab", 8))
	assert.Equal(t, "toolong", centerText("toolong", 4))
}

func TestSessionPlayAndReturn(t *testing.T) {
	s := NewSessionModel(testOptions(), testCfg, false)
	sm := update(t, s, keyEnter).(SessionModel)
	require.Equal(t, screenGame, sm.screen)
	require.NotNil(t, sm.game)
	assert.True(t, sm.opts.Embedded)

	// Drive the run to game over through the real game.
	sm = update(t, sm, TickMsg{}).(SessionModel)
	assert.Contains(t, sm.View(), "BLOCKFALL")

	sm.game.gameState.GameOver = true
	sm = update(t, sm, keyEsc).(SessionModel)
	assert.Equal(t, screenMenu, sm.screen)
	assert.Nil(t, sm.game)

	// A tick left over from the game is swallowed by the menu.
	nm, cmd := sm.Update(TickMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, screenMenu, nm.(SessionModel).screen)
}

func TestSessionScoreboard(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer store.Close()
	_, err = store.SaveScore(storage.ScoreEntry{Player: "ana", Score: 900, Lines: 6, Level: 2})
	require.NoError(t, err)

	opts := testOptions()
	opts.Store = store
	s := NewSessionModel(opts, testCfg, false)

	sm := update(t, s, keyDown, keyEnter).(SessionModel)
	require.Equal(t, screenScores, sm.screen)
	assert.Contains(t, sm.View(), "ana")

	sm = update(t, sm, keyEsc).(SessionModel)
	assert.Equal(t, screenMenu, sm.screen)
}

func TestSessionQuitFromGame(t *testing.T) {
	s := NewSessionModel(testOptions(), testCfg, false)
	sm := update(t, s, keyEnter).(SessionModel)
	nm, cmd := sm.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
	assert.Empty(t, nm.View())
}

func TestScoreboardTabs(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SaveScore(storage.ScoreEntry{Player: "ana", Score: 500, Lines: 4, Level: 1})
	require.NoError(t, err)
	_, err = store.SaveScore(storage.ScoreEntry{Player: "bo", Score: 700, Lines: 5, Level: 2})
	require.NoError(t, err)
	_, err = store.SaveOnlineMatch(storage.OnlineMatchResult{
		MatchID: "m-1", Peer: "10.0.0.9:55755", Result: "won", EndReason: "completed",
		Duration: 95, LinesSent: 7, LinesReceived: 3,
	})
	require.NoError(t, err)

	m := NewScoreboardModel(store, 100, 30, false)
	assert.Equal(t, TabRuns, m.Tab())
	rows := m.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "bo", rows[0][1], "highest score first")
	assert.Equal(t, "#1", rows[0][0])

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab}).(ScoreboardModel)
	assert.Equal(t, TabMatches, m.Tab())
	rows = m.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "10.0.0.9:55755", rows[0][1])
	assert.Equal(t, "1:35", rows[0][3])
	assert.Equal(t, "7/3", rows[0][4])

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}).(ScoreboardModel)
	assert.Equal(t, TabRuns, m.Tab())

	nm, cmd := m.Update(keyEsc)
	assert.True(t, nm.(ScoreboardModel).IsGoingBack())
	assert.NotNil(t, cmd, "standalone scoreboard quits its program")
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, 80, 24, true)
	assert.Contains(t, m.View(), "No runs recorded yet")

	nm, cmd := m.Update(keyEsc)
	assert.True(t, nm.(ScoreboardModel).IsGoingBack())
	assert.Nil(t, cmd, "embedded scoreboard hands control back")
}
