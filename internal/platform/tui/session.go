package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
)

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenOnline
	screenScores
)

// SessionModel manages the full flow: menu -> game/online/scores -> menu.
// It is the top-level model for SSH sessions and for `blockfall` without a
// subcommand.
type SessionModel struct {
	opts        Options
	config      core.RuntimeConfig
	allowOnline bool

	screen     sessionScreen
	menu       MenuModel
	game       *Model
	online     *OnlineModel
	scoreboard *ScoreboardModel
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts Options, cfg core.RuntimeConfig, allowOnline bool) SessionModel {
	opts.Embedded = true
	return SessionModel{
		opts:        opts,
		config:      cfg,
		allowOnline: allowOnline,
		menu:        NewMenuModel(cfg, allowOnline),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.game, m.online, m.scoreboard = nil, nil, nil
	m.menu = NewMenuModel(m.config, m.allowOnline)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode. Ticks left over from a
// finished game end here, which stops their loop.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	switch selected.Kind {
	case MenuItemGame:
		game, err := registry.Create(selected.GameID)
		if err != nil {
			// The menu only lists registered games.
			m.opts.logger().Error("cannot create game", "id", selected.GameID, "error", err)
			return m.toMenu()
		}
		gm := NewModel(game, m.opts, m.config)
		m.game = &gm
		m.screen = screenGame
		return m, gm.Init()

	case MenuItemOnline:
		om := NewOnlineModel(m.opts, m.config)
		m.online = &om
		m.screen = screenOnline
		return m, om.Init()

	case MenuItemScores:
		sm := NewScoreboardModel(m.opts.Store, m.config.ScreenW, m.config.ScreenH, true)
		m.scoreboard = &sm
		m.screen = screenScores
		return m, sm.Init()
	}
	return m.toMenu()
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gm, ok := newModel.(Model); ok {
		m.game = &gm
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.online.Update(msg)
	if om, ok := newModel.(OnlineModel); ok {
		m.online = &om
	}

	if m.online.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.online.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scoreboard.Update(msg)
	if sm, ok := newModel.(ScoreboardModel); ok {
		m.scoreboard = &sm
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenOnline:
		return m.online.View()
	case screenScores:
		return m.scoreboard.View()
	}
	return m.menu.View()
}

// Close releases an online link left open when the program ends.
func (m SessionModel) Close() {
	if m.online != nil && m.online.match != nil {
		_ = m.online.match.Close()
	}
}

// RunSession runs the menu-driven flow until the user quits.
func RunSession(opts Options, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(opts, cfg, true),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if m, ok := final.(SessionModel); ok {
		m.Close()
	}
	return err
}
