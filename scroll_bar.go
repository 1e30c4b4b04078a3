package sheetview

import "github.com/gdamore/tcell/v2"

// ScrollLengths bundles content and viewport lengths in rows.
type ScrollLengths struct {
	ContentLen  int
	ViewportLen int
}

// Thumb geometry is computed in eighths of a cell.
const subcell = 8

// GlyphSet defines the vertical track and fractional thumb glyphs.
type GlyphSet struct {
	TrackVertical string

	ThumbVerticalLower [8]string
	ThumbVerticalUpper [8]string
}

// LegacyComputingGlyphSet returns legacy-computing symbols for full 1/8
// fractional fidelity.
func LegacyComputingGlyphSet() GlyphSet {
	return GlyphSet{
		TrackVertical:      "│",
		ThumbVerticalLower: [8]string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"},
		ThumbVerticalUpper: [8]string{"▔", "🮂", "🮃", "▀", "🮄", "🮅", "🮆", "█"},
	}
}

// UnicodeGlyphSet returns a standard-unicode-only approximation.
func UnicodeGlyphSet() GlyphSet {
	return GlyphSet{
		TrackVertical:      "│",
		ThumbVerticalLower: [8]string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"},
		ThumbVerticalUpper: [8]string{"▔", "▔", "▀", "▀", "▀", "▀", "█", "█"},
	}
}

// ScrollBar renders a vertical scroll position indicator.
type ScrollBar struct {
	*Box

	autoHide    bool
	contentLen  int
	viewportLen int
	offset      int

	trackStyle tcell.Style
	thumbStyle tcell.Style
	glyphSet   GlyphSet
}

// NewScrollBar returns a new vertical scroll bar.
func NewScrollBar() *ScrollBar {
	return &ScrollBar{
		Box:        NewBox(),
		autoHide:   true,
		trackStyle: tcell.StyleDefault.Dim(true),
		thumbStyle: tcell.StyleDefault,
		glyphSet:   UnicodeGlyphSet(),
	}
}

// SetLengths sets content and viewport lengths.
func (s *ScrollBar) SetLengths(lengths ScrollLengths) *ScrollBar {
	s.contentLen = max(lengths.ContentLen, 0)
	s.viewportLen = max(lengths.ViewportLen, 0)
	return s
}

// SetOffset sets the number of rows scrolled past the content start.
func (s *ScrollBar) SetOffset(offset int) *ScrollBar {
	s.offset = max(offset, 0)
	return s
}

// SetGlyphSet applies a glyph set.
func (s *ScrollBar) SetGlyphSet(g GlyphSet) *ScrollBar {
	s.glyphSet = g
	return s
}

// SetAutoHide controls whether the bar is hidden when there is nothing to
// scroll.
func (s *ScrollBar) SetAutoHide(autoHide bool) *ScrollBar {
	s.autoHide = autoHide
	return s
}

// SetThumbStyle sets the thumb style.
func (s *ScrollBar) SetThumbStyle(style tcell.Style) *ScrollBar {
	s.thumbStyle = style
	return s
}

// SetTrackStyle sets the track style.
func (s *ScrollBar) SetTrackStyle(style tcell.Style) *ScrollBar {
	s.trackStyle = style
	return s
}

type scrollMetrics struct {
	trackCells int
	trackLen   int
	thumbLen   int
	thumbStart int
}

func computeScrollMetrics(trackCells int, contentLen int, viewportLen int, offset int) scrollMetrics {
	trackLen := trackCells * subcell
	if trackLen == 0 {
		return scrollMetrics{}
	}

	contentLen = max(contentLen, 1)
	viewportLen = min(max(viewportLen, 1), contentLen)
	maxOffset := max(contentLen-viewportLen, 0)
	offset = min(max(offset, 0), maxOffset)

	if maxOffset == 0 {
		return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: trackLen}
	}

	// Subcell math lets the thumb move in 1/8-cell steps while staying
	// proportional to viewport/content size.
	thumbLen := min(max((trackLen*viewportLen)/contentLen, subcell), trackLen)
	thumbTravel := max(trackLen-thumbLen, 0)
	thumbStart := (thumbTravel * offset) / maxOffset
	return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: thumbLen, thumbStart: thumbStart}
}

// cellFill returns the thumb coverage of one cell as a cell-local start and
// length in subcells.
func cellFill(m scrollMetrics, cellIndex int) (start int, fillLen int) {
	if m.thumbLen == 0 {
		return 0, 0
	}
	cellStart := cellIndex * subcell
	cellEnd := cellStart + subcell
	thumbEnd := m.thumbStart + m.thumbLen
	start = max(m.thumbStart, cellStart)
	end := min(thumbEnd, cellEnd)
	if end <= start {
		return 0, 0
	}
	fillLen = min(end-start, subcell)
	start = min(max(start-cellStart, 0), subcell)
	return start, fillLen
}

func (s *ScrollBar) glyphFor(start, fillLen int) (string, tcell.Style) {
	switch {
	case fillLen <= 0:
		return s.glyphSet.TrackVertical, s.trackStyle
	case fillLen >= subcell:
		return s.glyphSet.ThumbVerticalLower[7], s.thumbStyle
	case start == 0:
		return s.glyphSet.ThumbVerticalUpper[fillLen-1], s.thumbStyle
	}
	return s.glyphSet.ThumbVerticalLower[fillLen-1], s.thumbStyle
}

// Draw draws the scroll bar.
func (s *ScrollBar) Draw(screen tcell.Screen) {
	s.DrawForSubclass(screen, s)

	x, y, _, height := s.GetInnerRect()
	if height <= 0 || s.contentLen <= 0 {
		return
	}
	viewport := s.viewportLen
	if viewport <= 0 {
		viewport = height
	}
	if s.autoHide && s.contentLen <= viewport {
		return
	}

	m := computeScrollMetrics(height, s.contentLen, viewport, s.offset)
	for cell := 0; cell < m.trackCells; cell++ {
		glyph, style := s.glyphFor(cellFill(m, cell))
		putGrapheme(screen, x, y+cell, glyph, style)
	}
}

var _ Primitive = &ScrollBar{}
