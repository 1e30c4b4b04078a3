package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/sheetview"
	"github.com/xqrs/sheetview/help"
	"github.com/xqrs/sheetview/internal/config"
	"github.com/xqrs/sheetview/keybind"
	"github.com/xqrs/sheetview/layers"
)

// Rows kept free above the expanded sheet for the background title.
const sheetTopMargin = 2

const intro = `This list lives in a sheet that rests collapsed at the bottom of the screen.

Dragging the list up, scrolling the wheel down, or pressing page down first moves the sheet up until it covers the screen. Only then does the list itself scroll.

Scrolling back works the other way round: the list returns to its first item before the sheet collapses. Fling the list to see the motion handed between the two.`

// demo is the root primitive: a background, a help bar, and the sheet.
type demo struct {
	*layers.Layers

	app   *sheetview.Application
	sheet *peekSheet
	help  *help.Help
	quit  keybind.Keybind
}

func newDemo(cfg config.Config, logger *slog.Logger) *demo {
	app := sheetview.NewApplication().
		SetLogger(logger).
		SetFrameInterval(cfg.App.FrameInterval)

	background := sheetview.NewTextItem(intro)
	background.SetTitle(" sheetdemo ")
	background.SetBorders(sheetview.BordersAll)
	background.SetBorderPadding(0, 0, 1, 1)

	list := newItemList(cfg.Demo.Items).
		SetConfig(cfg.SheetConfig()).
		SetFrameScheduler(app)

	sheet := sheetview.NewScrollingSheet().
		SetConfig(cfg.SheetConfig()).
		SetFrameScheduler(app).
		SetLogger(logger.With("component", "sheet")).
		SetKeybinds(cfg.SheetKeybinds())
	sheet.SetBorders(sheetview.BordersTop)
	sheet.SetBorderStyle(tcell.StyleDefault.Foreground(sheetview.Styles.BorderColor).Background(sheetview.Styles.SheetBackgroundColor))
	sheet.MustAttachChild(list)

	d := &demo{
		Layers: layers.New(),
		app:    app,
		sheet:  &peekSheet{ScrollingSheet: sheet, peekRows: cfg.Sheet.PeekRows},
		help:   help.New(),
		quit:   keybind.NewKeybind(keybind.WithKeys("q", "ctrl+c"), keybind.WithHelp("q", "quit")),
	}
	d.help.SetKeyMaps(d, sheet)

	sheet.SetStateChangedFunc(func(state sheetview.SheetState) {
		logger.Debug("sheet state changed", "state", state)
		d.updateScrim(state)
	})
	sheet.AddScrollChangeListener(func(offsetY float64) {
		logger.Debug("sheet moved", "offset", offsetY)
	})
	d.updateScrim(sheet.State())

	d.AddLayer(background, layers.WithName("background"), layers.WithResize(true), layers.WithEnabled(false))
	d.AddLayer(d.help, layers.WithName("help"), layers.WithEnabled(false))
	d.AddLayer(d.sheet, layers.WithName("sheet"), layers.WithOverlay())

	app.SetRoot(d)
	return d
}

// updateScrim dims the background while the sheet is raised.
func (d *demo) updateScrim(state sheetview.SheetState) {
	style := tcell.StyleDefault
	if state != sheetview.SheetAtMaxScrollY {
		style = style.Dim(true)
	}
	d.SetBackgroundLayerStyle(style)
}

// ShortHelp implements help.KeyMap.
func (d *demo) ShortHelp() []keybind.Keybind {
	return []keybind.Keybind{d.quit}
}

// SetRect lays out the help bar on the last row and the sheet above it.
func (d *demo) SetRect(x, y, width, height int) {
	d.Layers.SetRect(x, y, width, height)
	d.help.SetRect(x+1, y+height-1, max(width-2, 0), 1)
	d.sheet.SetRect(x, y+sheetTopMargin, width, max(height-sheetTopMargin-1, 0))
}

// InputHandler handles quitting and forwards everything else to the layers.
func (d *demo) InputHandler(event *tcell.EventKey) sheetview.Command {
	if keybind.Matches(event, d.quit) {
		return sheetview.QuitCommand{}
	}
	return d.Layers.InputHandler(event)
}

// peekSheet keeps the collapsed sheet peekRows rows tall, whatever its
// height. It starts out collapsed.
type peekSheet struct {
	*sheetview.ScrollingSheet

	peekRows int
	placed   bool
}

func (p *peekSheet) SetRect(x, y, width, height int) {
	p.ScrollingSheet.SetRect(x, y, width, height)

	maxScrollY := float64(max(height-p.peekRows, 0))
	if maxScrollY == p.MaxScrollY() {
		return
	}
	p.SetMaxScrollY(maxScrollY)
	if !p.placed {
		p.placed = true
		p.ScrollTo(maxScrollY)
	}
}

func newItemList(count int) *sheetview.ScrollList {
	items := make([]*sheetview.TextItem, count)
	for i := range items {
		text := fmt.Sprintf("Item %d", i+1)
		if i%5 == 4 {
			text += ": " + strings.Repeat("a longer entry that wraps onto more than one row ", 2)
		}
		items[i] = sheetview.NewTextItem(text)
		items[i].SetBorderPadding(0, 0, 1, 1)
	}

	list := sheetview.NewScrollList().
		SetGap(1).
		SetScrollBar(sheetview.NewScrollBar())
	list.SetBuilder(func(index int, cursor int) sheetview.ScrollListItem {
		if index < 0 || index >= len(items) {
			return nil
		}
		return items[index].SetSelected(index == cursor)
	})
	list.SetCursor(0)
	return list
}
