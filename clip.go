package sheetview

import "github.com/gdamore/tcell/v2"

// clippedScreen drops writes outside a rectangle. Lists draw partially visible
// items through it, and the sheet draws its translated child through it.
type clippedScreen struct {
	tcell.Screen
	x      int
	y      int
	width  int
	height int
}

func newClippedScreen(screen tcell.Screen, x, y, width, height int) *clippedScreen {
	// Nested clips intersect with the outer rectangle.
	if outer, ok := screen.(*clippedScreen); ok {
		right := min(x+width, outer.x+outer.width)
		bottom := min(y+height, outer.y+outer.height)
		x, y = max(x, outer.x), max(y, outer.y)
		width, height = max(right-x, 0), max(bottom-y, 0)
		screen = outer.Screen
	}
	return &clippedScreen{
		Screen: screen,
		x:      x,
		y:      y,
		width:  width,
		height: height,
	}
}

func (s *clippedScreen) inBounds(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

func (s *clippedScreen) SetContent(x int, y int, primary rune, combining []rune, style tcell.Style) {
	if !s.inBounds(x, y) {
		return
	}
	s.Screen.SetContent(x, y, primary, combining, style)
}

func (s *clippedScreen) ShowCursor(x int, y int) {
	if !s.inBounds(x, y) {
		s.Screen.HideCursor()
		return
	}
	s.Screen.ShowCursor(x, y)
}
