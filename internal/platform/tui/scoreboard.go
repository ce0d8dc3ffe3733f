package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/storage"
)

const (
	maxScores  = 100 // Max runs to load
	maxMatches = 50  // Max online matches to load
)

// ScoreboardTab selects which history is shown.
type ScoreboardTab int

const (
	TabRuns ScoreboardTab = iota
	TabMatches
)

func (t ScoreboardTab) String() string {
	if t == TabMatches {
		return "Matches"
	}
	return "Runs"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "runs/matches"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev tab"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	tab       ScoreboardTab
	store     *storage.Store
	scores    []storage.ScoreEntry
	matches   []storage.OnlineMatchResult
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	embedded  bool
	quitting  bool
	goingBack bool // True if user pressed back (not quit)
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int, embedded bool) ScoreboardModel {
	h := help.New()
	h.Width = width

	m := ScoreboardModel{
		store:    store,
		keys:     DefaultScoreboardKeyMap(),
		help:     h,
		width:    width,
		height:   height,
		embedded: embedded,
	}
	m.load()
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

func (m *ScoreboardModel) load() {
	m.loadErr = nil
	if m.store == nil {
		return
	}
	var err error
	if m.scores, err = m.store.TopScores(maxScores); err != nil {
		m.loadErr = err
	}
	if m.matches, err = m.store.RecentOnlineMatches(maxMatches); err != nil {
		m.loadErr = err
	}
}

func (m ScoreboardModel) columns() []table.Column {
	if m.tab == TabMatches {
		return []table.Column{
			{Title: "Date", Width: 13},
			{Title: "Peer", Width: 22},
			{Title: "Result", Width: 13},
			{Title: "Time", Width: 6},
			{Title: "Sent/Recv", Width: 10},
		}
	}
	return []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 14},
		{Title: "Score", Width: 9},
		{Title: "Lines", Width: 6},
		{Title: "Level", Width: 6},
		{Title: "Date", Width: 13},
	}
}

// createTable creates a new table with the columns of the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	height := m.height - 9 // Title, tabs, border and help
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// rows builds the table rows for the current tab.
func (m ScoreboardModel) rows() []table.Row {
	if m.tab == TabMatches {
		rows := make([]table.Row, len(m.matches))
		for i, r := range m.matches {
			rows[i] = table.Row{
				r.CreatedAt.Format("Jan 02 15:04"),
				r.Peer,
				r.Result,
				formatDuration(r.Duration),
				fmt.Sprintf("%d/%d", r.LinesSent, r.LinesReceived),
			}
		}
		return rows
	}
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		player := s.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			player,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Lines),
			fmt.Sprintf("%d", s.Level),
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// updateTableRows updates the table with the loaded history.
func (m *ScoreboardModel) updateTableRows() {
	m.table.SetRows(m.rows())
	m.table.GotoTop()
}

func (m *ScoreboardModel) switchTab(t ScoreboardTab) {
	m.tab = t
	// Column count differs per tab; rows must never outnumber columns.
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	m.updateTableRows()
}

func (m ScoreboardModel) leave(quit bool) (tea.Model, tea.Cmd) {
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	m.goingBack = true
	if m.embedded {
		return m, nil
	}
	return m, tea.Quit
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.leave(true)

		case key.Matches(msg, m.keys.Back):
			return m.leave(false)

		case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
			// Two tabs: both directions toggle.
			m.switchTab(1 - m.tab)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || (m.goingBack && !m.embedded) {
		return ""
	}

	var b strings.Builder

	b.WriteString(centerText(titleStyle.Render("HIGH SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m ScoreboardModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, 0, 2)
	for _, t := range []ScoreboardTab{TabRuns, TabMatches} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return errorStyle.Render("Cannot load history: " + m.loadErr.Error())
	case m.tab == TabRuns && len(m.scores) == 0:
		return emptyStyle.Render("No runs recorded yet.\nPlay a game to set a high score!")
	case m.tab == TabMatches && len(m.matches) == 0:
		return emptyStyle.Render("No online matches yet.")
	}
	return m.table.View()
}

// Tab returns the visible tab.
func (m ScoreboardModel) Tab() ScoreboardTab {
	return m.tab
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back, false if quitting.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewScoreboardModel(store, width, height, false),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
