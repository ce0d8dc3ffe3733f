package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/core"
)

var (
	plainStyle = lipgloss.NewStyle()
	styleCache sync.Map // core.Color -> lipgloss.Style; SSH sessions render concurrently
)

func styleFor(c core.Color) lipgloss.Style {
	code := c.ANSI()
	if code == "" {
		return plainStyle
	}
	if st, ok := styleCache.Load(c); ok {
		return st.(lipgloss.Style)
	}
	st, _ := styleCache.LoadOrStore(c, lipgloss.NewStyle().Foreground(lipgloss.Color(code)))
	return st.(lipgloss.Style)
}

// RenderScreen turns a Screen into styled terminal output. Runs of
// same-colored cells share one style so the escape overhead stays per run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < s.Width(); {
			color := s.GetCell(x, y).Color
			run.Reset()
			for ; x < s.Width(); x++ {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
			}
			if color == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(styleFor(color).Render(run.String()))
		}
	}
	return sb.String()
}
