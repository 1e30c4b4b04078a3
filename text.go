package sheetview

import (
	"strings"

	"github.com/rivo/uniseg"
)

// stepState represents the current state of the grapheme parser.
type stepState struct {
	unisegState int
	boundaries  int
	grossLength int
}

// lineBreak reports whether a line may (optional) or must end after the last
// stepped grapheme cluster.
func (s *stepState) lineBreak() (lineBreak, optional bool) {
	switch s.boundaries & uniseg.MaskLine {
	case uniseg.LineCanBreak:
		return true, true
	case uniseg.LineMustBreak:
		return true, false
	}
	return false, false
}

// Width returns the grapheme cluster's width in cells.
func (s *stepState) Width() int {
	return s.boundaries >> uniseg.ShiftWidth
}

// GrossLength returns the grapheme cluster's length in bytes.
func (s *stepState) GrossLength() int {
	return s.grossLength
}

// step iterates over grapheme clusters of a string.
func step(str string, state *stepState) (cluster, rest string, newState *stepState) {
	if state == nil {
		state = &stepState{unisegState: -1}
	}
	if len(str) == 0 {
		return "", "", state
	}

	cluster, rest, state.boundaries, state.unisegState = uniseg.StepString(str, state.unisegState)
	state.grossLength = len(cluster)
	if rest == "" && !uniseg.HasTrailingLineBreakInString(cluster) {
		state.boundaries &^= uniseg.MaskLine
	}
	return cluster, rest, state
}

// StringWidth returns the number of cells needed to print text.
func StringWidth(text string) (width int) {
	var state *stepState
	for len(text) > 0 {
		_, text, state = step(text, state)
		width += state.Width()
	}
	return width
}

// WordWrap splits text into lines no wider than width cells. Lines are broken
// at the last break opportunity that fits, or mid-word when a single word is
// wider than the line. Hard line breaks are always honored.
func WordWrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var (
		lines []string
		state *stepState

		lineStart  int // Byte offset of the current line in text.
		pos        int // Byte offset of the next cluster.
		lineWidth  int
		breakAt    int // Byte offset of the last break opportunity, 0 if none.
		breakWidth int // Line width up to breakAt.
	)
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, state = step(rest, state)
		clusterWidth := state.Width()

		// Spaces may hang past the right edge; they are trimmed below.
		if lineWidth+clusterWidth > width && pos > lineStart && cluster != " " {
			cut := pos
			if breakAt > lineStart {
				cut = breakAt
				lineWidth -= breakWidth
			} else {
				lineWidth = 0
			}
			lines = append(lines, strings.TrimRight(text[lineStart:cut], " "))
			lineStart, breakAt, breakWidth = cut, 0, 0
		}

		pos += state.GrossLength()
		lineWidth += clusterWidth

		if lineBreak, optional := state.lineBreak(); lineBreak {
			if optional {
				breakAt, breakWidth = pos, lineWidth
				continue
			}
			lines = append(lines, strings.TrimRight(text[lineStart:pos], "\n\r"))
			lineStart, lineWidth, breakAt, breakWidth = pos, 0, 0, 0
		}
	}
	if lineStart < len(text) || len(lines) == 0 {
		lines = append(lines, text[lineStart:])
	}
	return lines
}
