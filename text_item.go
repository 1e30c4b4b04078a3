package sheetview

import "github.com/gdamore/tcell/v2"

// TextItem is a word-wrapped block of text for use in a ScrollList.
type TextItem struct {
	*Box

	text     string
	style    tcell.Style
	selected bool
}

// NewTextItem returns an item showing text.
func NewTextItem(text string) *TextItem {
	return &TextItem{
		Box:   NewBox(),
		text:  text,
		style: tcell.StyleDefault.Foreground(Styles.PrimaryTextColor),
	}
}

// SetText sets the displayed text.
func (t *TextItem) SetText(text string) *TextItem {
	t.text = text
	return t
}

// GetText returns the displayed text.
func (t *TextItem) GetText() string {
	return t.text
}

// SetTextStyle sets the style used for the text.
func (t *TextItem) SetTextStyle(style tcell.Style) *TextItem {
	t.style = style
	return t
}

// SetSelected highlights the item as the list's cursor.
func (t *TextItem) SetSelected(selected bool) *TextItem {
	t.selected = selected
	return t
}

// Height implements ScrollListItem.
func (t *TextItem) Height(width int) int {
	horizontal, vertical := t.chrome()
	return len(WordWrap(t.text, width-horizontal)) + vertical
}

// Draw draws this primitive onto the screen.
func (t *TextItem) Draw(screen tcell.Screen) {
	if t.selected {
		t.SetBackgroundColor(Styles.ContrastBackgroundColor)
	} else {
		t.SetBackgroundColor(Styles.PrimitiveBackgroundColor)
	}
	t.DrawForSubclass(screen, t)

	x, y, width, height := t.GetInnerRect()
	style := t.style.Background(t.GetBackgroundColor())
	if t.selected {
		style = style.Foreground(Styles.InverseTextColor)
	}
	for i, line := range WordWrap(t.text, width) {
		if i >= height {
			break
		}
		PrintStyled(screen, line, x, y+i, width, AlignmentLeft, style)
	}
}

var _ ScrollListItem = &TextItem{}
