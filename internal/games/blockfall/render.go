package blockfall

import (
	"fmt"

	platformcore "github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
)

// Layout, in screen cells. Each field cell is two characters wide.
const (
	cellW      = 2
	holdX      = 0
	fieldX     = 11
	fieldW     = core.Width*cellW + 2
	fieldH     = core.VisibleHeight + 2
	gaugeX     = fieldX + fieldW + 1
	gaugeW     = 3
	panelGap   = 2
	panelWidth = 12
)

// MinWidth and MinHeight are the smallest screen the field fits on.
const (
	MinWidth  = gaugeX + gaugeW + panelGap + panelWidth
	MinHeight = fieldH + 2
)

// Opponent is the remote side shown next to the field in online play.
type Opponent struct {
	Height   int
	GameOver bool
}

// View carries what Render needs beyond the snapshot.
type View struct {
	// Opponent draws the height gauge when set.
	Opponent *Opponent
	// Preview caps the number of upcoming pieces drawn.
	Preview int
	// Title is shown above the side panel.
	Title string
	// Banner, when set, is drawn over the field (Paused, You win, ...).
	Banner    string
	SubBanner string
}

var cellColors = map[core.Cell]platformcore.Color{
	core.CellPurple:     platformcore.ColorMagenta,
	core.CellOrange:     platformcore.ColorOrange,
	core.CellBlue:       platformcore.ColorBlue,
	core.CellGreen:      platformcore.ColorGreen,
	core.CellRed:        platformcore.ColorRed,
	core.CellYellow:     platformcore.ColorYellow,
	core.CellCyan:       platformcore.ColorCyan,
	core.CellGarbage:    platformcore.ColorGray,
	core.CellDestroying: platformcore.ColorBrightWhite,
	core.CellBlocked:    platformcore.ColorGray,
}

// CellColor maps a field cell to a screen color.
func CellColor(c core.Cell) platformcore.Color {
	if col, ok := cellColors[c]; ok {
		return col
	}
	return platformcore.ColorDefault
}

// Render draws a snapshot onto dst.
func Render(dst *platformcore.Screen, snap core.Snapshot, v View) {
	if dst.Width() < MinWidth || dst.Height() < MinHeight {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("need %dx%d", MinWidth, MinHeight))
		return
	}

	renderHold(dst, snap)
	renderField(dst, snap)

	panelX := gaugeX
	if v.Opponent != nil {
		renderGauge(dst, *v.Opponent)
		panelX = gaugeX + gaugeW + panelGap
	}
	renderPanel(dst, panelX, snap, v)

	if v.Banner != "" {
		renderBanner(dst, v.Banner, v.SubBanner)
	}
}

func renderField(dst *platformcore.Screen, snap core.Snapshot) {
	box := platformcore.NewRect(fieldX, 0, fieldW, fieldH)
	dst.DrawBox(box)
	inner := box.Inset(1)

	for y, row := range snap.Rows {
		for x, c := range row {
			if c == core.CellDestroying && snap.Clear == core.ClearHidden {
				continue
			}
			if c.Empty() {
				drawCell(dst, inner, x, y, " .", platformcore.ColorGray)
				continue
			}
			glyph := "██"
			if c == core.CellDestroying {
				glyph = "▓▓"
			}
			drawCell(dst, inner, x, y, glyph, CellColor(c))
		}
	}

	if g := snap.Ghost; g != nil {
		col := CellColor(g.Shape.Color())
		for _, p := range g.Cells {
			drawCell(dst, inner, p.X, p.Y, "░░", col)
		}
	}
	if a := snap.Active; a != nil {
		col := CellColor(a.Shape.Color())
		for _, p := range a.Cells {
			drawCell(dst, inner, p.X, p.Y, "██", col)
		}
	}
}

// drawCell draws one field cell; rows above the visible area are skipped.
func drawCell(dst *platformcore.Screen, inner platformcore.Rect, x, y int, glyph string, c platformcore.Color) {
	if y < 0 || y >= core.VisibleHeight || x < 0 || x >= core.Width {
		return
	}
	dst.DrawTextWithColor(inner.X+x*cellW, inner.Y+y, glyph, c)
}

func renderHold(dst *platformcore.Screen, snap core.Snapshot) {
	dst.DrawTextWithColor(holdX+1, 0, "HOLD", platformcore.ColorWhite)
	if snap.Hold == nil {
		return
	}
	col := CellColor(snap.Hold.Shape.Color())
	if snap.Hold.Appearance == core.AppearanceBlocked {
		col = CellColor(core.CellBlocked)
	}
	drawMini(dst, holdX+1, 2, snap.Hold.Shape, col)
}

// drawMini draws a shape's spawn bitmap with its top-left at (x, y).
func drawMini(dst *platformcore.Screen, x, y int, s core.Shape, col platformcore.Color) {
	b := s.Bitmap()
	row := 0
	for by := 0; by < b.Size; by++ {
		empty := true
		for bx := 0; bx < b.Size; bx++ {
			if b.Cells[by][bx] {
				dst.DrawTextWithColor(x+bx*cellW, y+row, "██", col)
				empty = false
			}
		}
		if !empty {
			row++
		}
	}
}

func renderGauge(dst *platformcore.Screen, opp Opponent) {
	box := platformcore.NewRect(gaugeX, 0, gaugeW, fieldH)
	dst.DrawBox(box)
	h := platformcore.Clamp(opp.Height, 0, core.VisibleHeight)
	col := platformcore.ColorRed
	if opp.GameOver {
		col = platformcore.ColorGray
	}
	for i := 0; i < h; i++ {
		dst.SetWithColor(gaugeX+1, fieldH-2-i, '█', col)
	}
}

func renderPanel(dst *platformcore.Screen, x int, snap core.Snapshot, v View) {
	y := 0
	if v.Title != "" {
		dst.DrawTextWithColor(x, y, v.Title, platformcore.ColorCyan)
		y += 2
	}

	dst.DrawTextWithColor(x, y, "NEXT", platformcore.ColorWhite)
	y += 2
	preview := v.Preview
	if preview <= 0 || preview > len(snap.Next) {
		preview = len(snap.Next)
	}
	for _, s := range snap.Next[:preview] {
		drawMini(dst, x, y, s, CellColor(s.Color()))
		y += 3
		if y >= fieldH-6 {
			break
		}
	}

	y = fieldH - 5
	if snap.Mode == core.ModeSingle {
		dst.DrawText(x, y, fmt.Sprintf("Score %d", snap.Score))
	} else if snap.PendingGarbage > 0 {
		dst.DrawTextWithColor(x, y, fmt.Sprintf("Incoming %d", snap.PendingGarbage), platformcore.ColorRed)
	}
	dst.DrawText(x, y+1, fmt.Sprintf("Level %d", snap.Level))
	dst.DrawText(x, y+2, fmt.Sprintf("Lines %d", snap.Lines))
}

func renderBanner(dst *platformcore.Screen, line1, line2 string) {
	w := max(len([]rune(line1)), len([]rune(line2))) + 4
	box := platformcore.NewRect(fieldX+(fieldW-w)/2, fieldH/2-2, w, 5)
	dst.ClearRect(box)
	dst.DrawBox(box)
	dst.DrawTextWithColor(box.X+(w-len([]rune(line1)))/2, box.Y+1, line1, platformcore.ColorBrightYellow)
	if line2 != "" {
		dst.DrawTextWithColor(box.X+(w-len([]rune(line2)))/2, box.Y+3, line2, platformcore.ColorGray)
	}
}
