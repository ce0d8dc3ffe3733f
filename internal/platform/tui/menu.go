package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/multiplayer"
	"github.com/vovakirdan/blockfall/internal/registry"
)

// MenuItemKind tells what a menu entry opens.
type MenuItemKind int

const (
	MenuItemGame MenuItemKind = iota
	MenuItemOnline
	MenuItemScores
	MenuItemQuit
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Kind   MenuItemKind
	GameID string
	Title  string
	Mode   multiplayer.MatchMode
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects an entry
}

// NewMenuModel creates a new menu model. Online play is listed only when
// allowOnline is set; SSH sessions have no UDP link of their own.
func NewMenuModel(cfg core.RuntimeConfig, allowOnline bool) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games)+3)

	for _, g := range games {
		items = append(items, MenuItem{
			Kind:   MenuItemGame,
			GameID: g.ID,
			Title:  g.Title,
			Mode:   multiplayer.MatchModeSolo,
		})
	}
	if allowOnline {
		items = append(items, MenuItem{
			Kind:  MenuItemOnline,
			Title: "Online duel",
			Mode:  multiplayer.MatchModeOnlinePvP,
		})
	}
	items = append(items,
		MenuItem{Kind: MenuItemScores, Title: "High scores"},
		MenuItem{Kind: MenuItemQuit, Title: "Quit"},
	)

	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		selected := m.items[m.cursor]
		if selected.Kind == MenuItemQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &selected
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("B L O C K F A L L"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		line := item.Title
		if i == m.cursor {
			cursor = "> "
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(centerText(cursor+line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(helpStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width. Styled text is measured by
// its printed width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
