package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	bfcore "github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/multiplayer"
	"github.com/vovakirdan/blockfall/internal/netplay"
)

// OnlineState represents where the online flow is.
type OnlineState int

const (
	OnlineStatePrompt     OnlineState = iota // asking for the peer host
	OnlineStateConnecting                    // handshaking
	OnlineStatePlaying                       // match running or decided
)

// connectedMsg carries an established link back to the update loop.
type connectedMsg struct {
	link multiplayer.Link
	peer string
}

type connectFailedMsg struct {
	err error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// OnlineModel runs a duel against one peer.
type OnlineModel struct {
	state  OnlineState
	opts   Options
	config core.RuntimeConfig
	logger *log.Logger

	input   textinput.Model
	spinner spinner.Model
	host    string
	err     error
	cancel  context.CancelFunc

	match      *multiplayer.Match
	screen     *core.Screen
	inputFrame core.InputFrame
	keyMapper  *KeyMapper
	repeat     *repeater
	help       help.Model

	quitting   bool
	backToMenu bool
}

// NewOnlineModel creates the online flow. A configured peer skips the prompt.
func NewOnlineModel(opts Options, cfg core.RuntimeConfig) OnlineModel {
	if cfg.TickRate <= 0 {
		cfg.TickRate = opts.tickRate()
	}
	if cfg.Preview <= 0 {
		cfg.Preview = opts.Game.Preview
	}

	ti := textinput.New()
	ti.Placeholder = "host or ip"
	ti.CharLimit = 253
	ti.Width = 32
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	h := help.New()
	h.Width = cfg.ScreenW

	return OnlineModel{
		state:      OnlineStatePrompt,
		opts:       opts,
		config:     cfg,
		logger:     opts.logger(),
		input:      ti,
		spinner:    sp,
		host:       strings.TrimSpace(opts.Net.Peer),
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		repeat:     opts.newRepeater(),
		help:       h,
	}
}

// Init starts connecting right away when the host is already known.
func (m OnlineModel) Init() tea.Cmd {
	if m.host == "" {
		return textinput.Blink
	}
	// Init cannot keep the cancel func, so connecting starts from Update.
	return func() tea.Msg { return startConnectMsg{} }
}

type startConnectMsg struct{}

func (m OnlineModel) connect() (OnlineModel, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = OnlineStateConnecting
	m.err = nil

	host, cfg, logger := m.host, m.opts.Net.Session(), m.logger
	logger.Info("connecting", "peer", host, "ports", cfg.Ports)
	dial := func() tea.Msg {
		s, err := netplay.Dial(ctx, host, cfg, logger)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{link: s, peer: s.Peer().String()}
	}
	return m, tea.Batch(dial, m.spinner.Tick)
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, gameHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case startConnectMsg:
		return m.connect()

	case connectedMsg:
		return m.startMatch(msg.link, msg.peer)

	case connectFailedMsg:
		m.cancel = nil
		m.state = OnlineStatePrompt
		m.err = msg.err
		if errors.Is(msg.err, context.Canceled) {
			m.err = nil
		}
		m.logger.Warn("connect failed", "peer", m.host, "error", msg.err)
		m.input.SetValue(m.host)
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.state != OnlineStateConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		switch m.state {
		case OnlineStatePrompt:
			return m.handlePromptKey(msg)
		case OnlineStateConnecting:
			return m.handleConnectingKey(msg)
		case OnlineStatePlaying:
			return m.handlePlayingKey(msg)
		}
	}

	if m.state == OnlineStatePrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m OnlineModel) leave() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.match != nil {
		if err := m.match.Close(); err != nil {
			m.logger.Debug("close match", "error", err)
		}
		m.match = nil
	}
	if m.opts.Embedded {
		m.backToMenu = true
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m OnlineModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.leave()
	case "enter":
		host := strings.TrimSpace(m.input.Value())
		if host == "" {
			return m, nil
		}
		m.host = host
		m.input.Blur()
		return m.connect()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m OnlineModel) handleConnectingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.leave()
	case "esc":
		// Dial returns with context.Canceled and we land on the prompt.
		if m.cancel != nil {
			m.cancel()
		}
	}
	return m, nil
}

func (m OnlineModel) startMatch(link multiplayer.Link, peer string) (tea.Model, tea.Cmd) {
	m.cancel = nil
	if m.quitting || m.backToMenu {
		_ = link.Close()
		return m, nil
	}
	seed := m.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := bfcore.NewSim(bfcore.Options{Mode: bfcore.ModeOnline, Seed: seed})
	m.match = multiplayer.NewMatch(multiplayer.NewMatchID(), peer, sim, link, m.logger)
	if m.opts.Store != nil {
		m.match.SetResultSaver(m.opts.Store)
	}
	m.state = OnlineStatePlaying
	m.repeat.reset()
	m.logger.Info("match started", "id", m.match.ID(), "peer", peer)
	return m, tickCmd(m.config.TickRate)
}

func (m OnlineModel) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}
	action, quit := m.keyMapper.MapKey(msg)
	if quit {
		return m.leave()
	}
	if m.match.State().Finished() {
		if m.keyMapper.IsBack(msg) {
			return m.leave()
		}
		return m, nil
	}
	switch action {
	case core.ActionNone, core.ActionPause, core.ActionRestart:
		// No pause online; the peer keeps running.
		return m, nil
	}
	if m.repeat.press(action) {
		m.inputFrame.Set(action)
	}
	return m, nil
}

func (m OnlineModel) handleTick() (tea.Model, tea.Cmd) {
	if m.state != OnlineStatePlaying || m.match == nil {
		return m, nil
	}

	dt := 1 / float64(m.config.TickRate)
	for _, a := range m.repeat.tick(dt) {
		m.inputFrame.Set(a)
	}
	for _, a := range m.inputFrame.Ordered() {
		if cmd, ok := blockfall.CommandFor(a); ok {
			m.match.Apply(cmd)
		}
	}
	m.inputFrame.Clear()

	m.match.Tick(dt)

	if m.opts.Publish != nil {
		m.opts.Publish(m.match.Sim().Snapshot())
	}

	// A disconnected link has nothing left to service.
	if m.match.State() == multiplayer.MatchDisconnected {
		return m, nil
	}
	return m, tickCmd(m.config.TickRate)
}

func (m *OnlineModel) render() {
	m.screen.Clear()
	opp := m.match.Opponent()
	v := blockfall.View{
		Title:    "ONLINE",
		Preview:  m.config.Preview,
		Opponent: &blockfall.Opponent{Height: opp.Height, GameOver: opp.GameOver},
	}
	switch m.match.State() {
	case multiplayer.MatchWon:
		v.Banner, v.SubBanner = "You win", "Esc back"
	case multiplayer.MatchLost:
		v.Banner, v.SubBanner = "You lose", "Esc back"
	case multiplayer.MatchDisconnected:
		v.Banner, v.SubBanner = "Connection Lost!", "Esc back"
	}
	blockfall.Render(m.screen, m.match.Sim().Snapshot(), v)
}

func (m *OnlineModel) saveScreenshot() {
	m.render()
	path, err := writeScreenshot(m.opts.ScreenshotDir, "online", m.screen)
	if err != nil {
		m.logger.Warn("cannot save screenshot", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStatePrompt:
		var b strings.Builder
		b.WriteString("\n")
		b.WriteString(centerText(titleStyle.Render("ONLINE DUEL"), m.config.ScreenW))
		b.WriteString("\n\n")
		b.WriteString(centerText("Opponent host:", m.config.ScreenW))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.input.View(), m.config.ScreenW))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(centerText(errorStyle.Render(m.err.Error()), m.config.ScreenW))
			b.WriteString("\n\n")
		}
		b.WriteString(centerText(helpStyle.Render("Enter: connect  |  Esc: back"), m.config.ScreenW))
		return b.String()

	case OnlineStateConnecting:
		var b strings.Builder
		b.WriteString("\n")
		b.WriteString(centerText(titleStyle.Render("ONLINE DUEL"), m.config.ScreenW))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.spinner.View()+" Waiting for "+m.host+"...", m.config.ScreenW))
		b.WriteString("\n\n")
		b.WriteString(centerText(helpStyle.Render("Esc: cancel"), m.config.ScreenW))
		return b.String()
	}

	if m.match == nil {
		return ""
	}
	m.render()
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keyMapper.Keys()))
}

// State returns where the flow is.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// Match returns the running match, or nil before connecting.
func (m OnlineModel) Match() *multiplayer.Match {
	return m.match
}

// Err returns the last connection error shown on the prompt.
func (m OnlineModel) Err() error {
	return m.err
}

// IsQuitting returns true if user requested to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// RunOnline starts the online flow in its own Bubble Tea program and
// releases the link when it ends.
func RunOnline(opts Options, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewOnlineModel(opts, cfg),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if m, ok := final.(OnlineModel); ok && m.match != nil {
		_ = m.match.Close()
	}
	return err
}
