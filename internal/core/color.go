package core

// Color is the foreground of a screen cell. Each piece kind has its own;
// the rest are for frames, text and the garbage gauge.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
	ColorBrightYellow
	ColorBrightWhite
)

// ansi holds the 256-color palette index for each Color.
var ansi = [...]string{
	ColorDefault:      "",
	ColorRed:          "1",
	ColorGreen:        "2",
	ColorYellow:       "3",
	ColorBlue:         "4",
	ColorMagenta:      "5",
	ColorCyan:         "6",
	ColorWhite:        "7",
	ColorOrange:       "208",
	ColorGray:         "245",
	ColorBrightYellow: "11",
	ColorBrightWhite:  "15",
}

// ANSI returns the terminal palette index, or "" for the default color.
func (c Color) ANSI() string {
	if int(c) >= len(ansi) {
		return ""
	}
	return ansi[c]
}
