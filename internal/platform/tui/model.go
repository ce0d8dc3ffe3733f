package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	bfcore "github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// DefaultScreenshotDir is where ctrl+s writes screen dumps.
const DefaultScreenshotDir = "~/.blockfall/screenshots"

// Snapshotter is implemented by games whose state can be streamed to
// spectators.
type Snapshotter interface {
	Snapshot() bfcore.Snapshot
}

// Options are the collaborators shared by the play models.
type Options struct {
	Store  *storage.Store
	Player string
	Game   config.GameConfig
	Net    config.NetConfig

	// Publish receives a snapshot after every tick when set.
	Publish func(bfcore.Snapshot)
	Logger  *log.Logger

	ScreenshotDir string

	// Embedded models report BackToMenu instead of quitting the program.
	Embedded bool
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func (o Options) tickRate() int {
	if o.Game.TickRate <= 0 {
		return core.DefaultConfig().TickRate
	}
	return o.Game.TickRate
}

func (o Options) newRepeater() *repeater {
	d := config.DefaultConfig().Game
	delay, interval := o.Game.KeyRepeatDelay, o.Game.KeyRepeatInterval
	if delay <= 0 {
		delay = d.KeyRepeatDelay
	}
	if interval <= 0 {
		interval = d.KeyRepeatInterval
	}
	return newRepeater(delay, interval)
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// gameHeight leaves the last row to the help bar.
func gameHeight(h int) int {
	if h > 1 {
		return h - 1
	}
	return h
}

// Model is the Bubble Tea model for a solo run.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	repeat     *repeater
	help       help.Model
	logger     *log.Logger
	quitting   bool
	backToMenu bool
	scoreSaved bool // Whether score has been saved for current game over
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, opts Options, cfg core.RuntimeConfig) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = opts.tickRate()
	}
	if cfg.Preview <= 0 {
		cfg.Preview = opts.Game.Preview
	}
	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		opts:       opts,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		repeat:     opts.newRepeater(),
		help:       h,
		logger:     opts.logger(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	// gameState is set on the first tick (value receiver).
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, gameHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, quit := m.keyMapper.MapKey(msg)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}

	if m.gameState.GameOver && m.keyMapper.IsBack(msg) {
		if m.opts.Embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone:
		return m, nil
	case core.ActionRestart:
		if m.gameState.GameOver {
			m.inputFrame.Set(core.ActionRestart)
			m.repeat.reset()
		}
		return m, nil
	}

	if m.repeat.press(action) {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu || m.quitting {
		return m, nil
	}

	dt := 1 / float64(m.config.TickRate)
	for _, a := range m.repeat.tick(dt) {
		m.inputFrame.Set(a)
	}

	result := m.game.Step(m.inputFrame)
	if m.gameState.GameOver && !result.State.GameOver {
		m.scoreSaved = false
		m.logger.Debug("run restarted")
	}
	m.gameState = result.State

	if m.gameState.GameOver && !m.scoreSaved {
		m.saveScore()
		m.scoreSaved = true
	}

	if m.opts.Publish != nil {
		if s, ok := m.game.(Snapshotter); ok {
			m.opts.Publish(s.Snapshot())
		}
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveScore records the finished run. Empty runs are not kept.
// seeded is implemented by games whose runs can be replayed with --seed.
type seeded interface {
	Seed() int64
}

func (m Model) saveScore() {
	st := m.gameState
	kv := []any{"player", m.opts.Player, "score", st.Score, "lines", st.Lines, "level", st.Level}
	if g, ok := m.game.(seeded); ok {
		kv = append(kv, "seed", g.Seed())
	}
	m.logger.Info("game over", kv...)
	if m.opts.Store == nil || st.Score == 0 {
		return
	}
	_, err := m.opts.Store.SaveScore(storage.ScoreEntry{
		Player: m.opts.Player,
		Score:  st.Score,
		Lines:  st.Lines,
		Level:  st.Level,
	})
	if err != nil {
		m.logger.Warn("cannot save score", "error", err)
	}
}

// saveScreenshot saves the current screen to a text file.
func (m *Model) saveScreenshot() {
	m.screen.Clear()
	m.game.Render(m.screen)
	path, err := writeScreenshot(m.opts.ScreenshotDir, m.game.ID(), m.screen)
	if err != nil {
		m.logger.Warn("cannot save screenshot", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

func writeScreenshot(dir, name string, s *core.Screen) (string, error) {
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	dir = config.ExpandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("tui: create screenshot dir: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.txt", name, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(s.String()), 0o600); err != nil {
		return "", fmt.Errorf("tui: write screenshot: %w", err)
	}
	return path, nil
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keyMapper.Keys()))
}

// State returns the last observed game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a solo run in its own Bubble Tea program.
func Run(game registry.Game, opts Options, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(game, opts, cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
