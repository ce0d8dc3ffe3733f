package core

import "testing"

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(8, 3)
	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, expected 8x3", s.Width(), s.Height())
	}
	for y := range s.Height() {
		for x := range s.Width() {
			if c := s.GetCell(x, y); c != blank {
				t.Fatalf("cell (%d, %d) = %+v, expected blank", x, y, c)
			}
		}
	}
}

func TestScreenSetGetBounds(t *testing.T) {
	s := NewScreen(4, 4)
	s.Set(2, 1, 'X')
	if s.Get(2, 1) != 'X' {
		t.Errorf("Get(2, 1) = %q, expected 'X'", s.Get(2, 1))
	}

	// Out-of-bounds writes are dropped and do not wrap into the next row.
	s.Set(4, 0, 'A')
	s.Set(-1, 1, 'A')
	s.Set(0, 4, 'A')
	if s.Get(0, 1) != ' ' || s.Get(3, 0) != ' ' {
		t.Error("out-of-bounds Set leaked into the buffer")
	}
	if s.Get(-1, 0) != ' ' || s.Get(0, 99) != ' ' {
		t.Error("out-of-bounds Get should return space")
	}
}

func TestScreenColors(t *testing.T) {
	s := NewScreen(10, 3)
	s.SetWithColor(1, 1, '█', ColorCyan)
	if c := s.GetCell(1, 1); c.Rune != '█' || c.Color != ColorCyan {
		t.Errorf("GetCell(1, 1) = %+v, expected cyan block", c)
	}

	s.Set(1, 1, 'x')
	if s.GetCell(1, 1).Color != ColorDefault {
		t.Error("Set should use the default color")
	}

	s.DrawTextWithColor(0, 0, "ab", ColorRed)
	if s.GetCell(0, 0).Color != ColorRed || s.GetCell(1, 0).Color != ColorRed {
		t.Error("DrawTextWithColor should color every rune")
	}

	s.Clear()
	if s.GetCell(0, 0) != blank {
		t.Error("Clear should reset runes and colors")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(6, 2)
	s.DrawText(4, 0, "hello")
	if s.String() != "    he\n      " {
		t.Errorf("clipped text = %q", s.String())
	}

	s.Clear()
	s.DrawText(0, 1, "█▒x")
	if s.Get(0, 1) != '█' || s.Get(1, 1) != '▒' || s.Get(2, 1) != 'x' {
		t.Error("multibyte text should occupy one cell per rune")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(10, 1)
	s.DrawTextCentered(0, "▒▒")
	if s.Get(4, 0) != '▒' || s.Get(5, 0) != '▒' {
		t.Errorf("centered text = %q, expected runes at 4 and 5", s.String())
	}
}

func TestScreenDrawBoxAndClearRect(t *testing.T) {
	s := NewScreen(5, 4)
	s.DrawBox(NewRect(0, 0, 5, 4))
	want := "┌───┐\n│   │\n│   │\n└───┘"
	if s.String() != want {
		t.Errorf("box =\n%s\nexpected\n%s", s.String(), want)
	}

	s.ClearRect(NewRect(3, 2, 10, 10))
	if s.Get(4, 3) != ' ' || s.Get(4, 1) != '│' {
		t.Errorf("ClearRect should blank only the clipped area:\n%s", s.String())
	}

	// Degenerate boxes draw nothing.
	s.Clear()
	s.DrawBox(NewRect(0, 0, 1, 4))
	if s.Get(0, 0) != ' ' {
		t.Error("a one-wide box should not be drawn")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(4, 2)
	s.Set(0, 0, 'X')
	s.Resize(4, 2)
	if s.Get(0, 0) != 'X' {
		t.Error("resize to the same size should keep content")
	}

	s.Resize(6, 3)
	if s.Width() != 6 || s.Height() != 3 || s.Get(0, 0) != ' ' {
		t.Errorf("resize = %dx%d first=%q", s.Width(), s.Height(), s.Get(0, 0))
	}

	s.Resize(-1, 2)
	if s.Width() != 0 || s.String() != "\n" {
		t.Errorf("negative width should clamp to zero, got %q", s.String())
	}
}

func TestColorANSI(t *testing.T) {
	if ColorDefault.ANSI() != "" {
		t.Error("default color should have no palette index")
	}
	if ColorOrange.ANSI() != "208" {
		t.Errorf("orange = %q", ColorOrange.ANSI())
	}
	if Color(200).ANSI() != "" {
		t.Error("unknown colors fall back to the default")
	}
}
