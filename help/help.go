package help

import (
	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/sheetview"
	"github.com/xqrs/sheetview/keybind"
)

// KeyMap is implemented by primitives that can describe their key bindings.
type KeyMap interface {
	// ShortHelp returns keybinds for single-line help.
	ShortHelp() []keybind.Keybind
}

type Styles struct {
	KeyStyle       tcell.Style
	DescStyle      tcell.Style
	SeparatorStyle tcell.Style
	EllipsisStyle  tcell.Style
}

func DefaultStyles() Styles {
	dim := tcell.StyleDefault.Dim(true)
	return Styles{
		KeyStyle:       dim,
		DescStyle:      tcell.StyleDefault,
		SeparatorStyle: dim,
		EllipsisStyle:  dim,
	}
}

// Help draws a one-line summary of the key bindings of one or more key maps.
// Entries that do not fit are replaced by an ellipsis.
type Help struct {
	*sheetview.Box
	Styles Styles

	keyMaps   []KeyMap
	separator string
	ellipsis  string
}

func New() *Help {
	return &Help{
		Box:       sheetview.NewBox(),
		Styles:    DefaultStyles(),
		separator: " • ",
		ellipsis:  "…",
	}
}

// SetKeyMaps sets the key maps shown, in order.
func (h *Help) SetKeyMaps(keyMaps ...KeyMap) *Help {
	h.keyMaps = keyMaps
	return h
}

// SetSeparator sets the separator between entries.
func (h *Help) SetSeparator(separator string) *Help {
	h.separator = separator
	return h
}

// SetEllipsis sets the marker drawn when entries are cut off.
func (h *Help) SetEllipsis(ellipsis string) *Help {
	h.ellipsis = ellipsis
	return h
}

// Draw draws this primitive onto the screen.
func (h *Help) Draw(screen tcell.Screen) {
	h.DrawForSubclass(screen, h)

	x, y, width, height := h.GetInnerRect()
	if height <= 0 {
		return
	}
	var bindings []keybind.Keybind
	for _, keyMap := range h.keyMaps {
		bindings = append(bindings, keyMap.ShortHelp()...)
	}
	drawSegments(screen, x, y, width, h.segments(bindings, width))
}

type segment struct {
	text  string
	style tcell.Style
}

// segments lays out as many entries as fit into maxWidth.
func (h *Help) segments(bindings []keybind.Keybind, maxWidth int) []segment {
	var out []segment
	for _, kb := range bindings {
		if !kb.Enabled() {
			continue
		}
		item := itemSegments(kb.Help(), h.Styles)
		if len(item) == 0 {
			continue
		}

		candidate := out
		if len(out) > 0 {
			candidate = append(cloneSegments(out), segment{text: h.separator, style: h.Styles.SeparatorStyle})
		}
		candidate = append(candidate, item...)
		if maxWidth > 0 && segmentsWidth(candidate) > maxWidth {
			return append(out, h.truncationTail(out, maxWidth)...)
		}
		out = candidate
	}
	return out
}

func (h *Help) truncationTail(current []segment, maxWidth int) []segment {
	if h.ellipsis == "" {
		return nil
	}
	// Only added when it fully fits.
	tail := []segment{{text: " " + h.ellipsis, style: h.Styles.EllipsisStyle}}
	if segmentsWidth(current)+segmentsWidth(tail) <= maxWidth {
		return tail
	}
	return nil
}

func itemSegments(help keybind.Help, styles Styles) []segment {
	switch {
	case help.Key == "" && help.Desc == "":
		return nil
	case help.Key == "":
		return []segment{{text: help.Desc, style: styles.DescStyle}}
	case help.Desc == "":
		return []segment{{text: help.Key, style: styles.KeyStyle}}
	}
	return []segment{{text: help.Key, style: styles.KeyStyle}, {text: " " + help.Desc, style: styles.DescStyle}}
}

func drawSegments(screen tcell.Screen, x, y, width int, segments []segment) {
	for _, s := range segments {
		if width <= 0 {
			return
		}
		_, printed := sheetview.PrintStyled(screen, s.text, x, y, width, sheetview.AlignmentLeft, s.style)
		x += printed
		width -= printed
	}
}

func segmentsWidth(segments []segment) int {
	width := 0
	for _, s := range segments {
		width += sheetview.StringWidth(s.text)
	}
	return width
}

func cloneSegments(in []segment) []segment {
	out := make([]segment, len(in))
	copy(out, in)
	return out
}
