package sheetview

import "github.com/gdamore/tcell/v2"

// Theme defines the colors used when primitives are initialized.
type Theme struct {
	PrimitiveBackgroundColor tcell.Color // Main background color for primitives.
	ContrastBackgroundColor  tcell.Color // Background color for contrasting elements (e.g. the cursor row).
	SheetBackgroundColor     tcell.Color // Background of a scrolling sheet.
	BorderColor              tcell.Color // Box borders.
	TitleColor               tcell.Color // Box titles.
	HandleColor              tcell.Color // The grab handle drawn on a sheet's top edge.
	PrimaryTextColor         tcell.Color // Primary text.
	SecondaryTextColor       tcell.Color // Secondary text (e.g. labels).
	InverseTextColor         tcell.Color // Text on ContrastBackgroundColor-colored backgrounds.
	OverScrollColor          tcell.Color // Edge glow shown by lists that are pulled past their bounds.
}

// Styles defines the theme for applications. The default is for a black
// background and some basic colors.
var Styles = Theme{
	PrimitiveBackgroundColor: tcell.ColorBlack,
	ContrastBackgroundColor:  tcell.ColorBlue,
	SheetBackgroundColor:     tcell.ColorNavy,
	BorderColor:              tcell.ColorWhite,
	TitleColor:               tcell.ColorWhite,
	HandleColor:              tcell.ColorSilver,
	PrimaryTextColor:         tcell.ColorWhite,
	SecondaryTextColor:       tcell.ColorYellow,
	InverseTextColor:         tcell.ColorWhite,
	OverScrollColor:          tcell.ColorTeal,
}
