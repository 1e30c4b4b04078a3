package sheetview

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
)

// ScrollListItem represents a primitive which can be measured for a given width.
//
// Scroll list items are responsible for reporting their own height so the list can
// layout and scroll variable-height items.
type ScrollListItem interface {
	Primitive
	Height(width int) int
}

// ScrollListBuilder returns a list item for the given index and cursor position.
// It must return nil when the index is out of range.
type ScrollListBuilder func(index int, cursor int) ScrollListItem

// wheelRows is the number of rows one mouse wheel notch scrolls.
const wheelRows = 3

// ScrollList displays a virtual list of primitives returned by a builder
// function. It scrolls by rows and takes part in nested scrolling: when a
// NestedScrollParent is set, every drag, wheel and page gesture is offered to
// the parent before the list consumes it, and drag releases are offered to
// the parent as flings.
type ScrollList struct {
	*Box

	Builder  ScrollListBuilder
	gap      int
	trackEnd bool
	atEnd    bool

	cursor  int
	changed func(index int)

	// Rows scrolled past the start of the content.
	scrollY float64

	listeners scrollListeners

	parent NestedScrollParent
	// Whether the parent accepted the gesture in progress.
	nested bool

	config SheetConfig
	frames FrameScheduler
	now    func() time.Time
	fling  *listFling

	velocity *VelocityTracker
	dragging bool
	dragY    int

	overScroll bool
	// The edge the content was last pulled past, or 0.
	edge Direction

	scrollBar *ScrollBar

	lastDraw []scrollListDrawnItem
	lastRect scrollListRect
}

// listFling is one run of the list's own fling. Replacing or clearing
// ScrollList.fling cancels the run; its pending frame callback then does
// nothing.
type listFling struct {
	scroller *Scroller
	lastY    float64
}

type scrollListDrawnItem struct {
	index  int
	item   ScrollListItem
	row    int
	height int
}

type scrollListRect struct {
	x      int
	y      int
	width  int
	height int
}

// NewScrollList returns a new scroll list.
func NewScrollList() *ScrollList {
	return &ScrollList{
		Box:        NewBox(),
		cursor:     -1,
		config:     DefaultSheetConfig(),
		now:        time.Now,
		velocity:   NewVelocityTracker(),
		overScroll: true,
	}
}

// SetBuilder sets the builder used to create list items on demand.
func (l *ScrollList) SetBuilder(builder ScrollListBuilder) *ScrollList {
	l.Builder = builder
	l.clampScroll()
	return l
}

// Clear removes all items from the list by clearing the builder and resetting
// scroll state.
func (l *ScrollList) Clear() *ScrollList {
	l.StopFling()
	l.Builder = nil
	l.cursor = -1
	l.setScrollY(0)
	l.lastDraw = nil
	l.lastRect = scrollListRect{}
	l.atEnd = false
	return l
}

// SetGap sets the number of blank rows between items.
func (l *ScrollList) SetGap(gap int) *ScrollList {
	l.gap = max(gap, 0)
	return l
}

// SetTrackEnd toggles auto-scrolling when the view is already at the end.
func (l *ScrollList) SetTrackEnd(track bool) *ScrollList {
	l.trackEnd = track
	return l
}

// SetScrollBar attaches a scroll bar drawn in the list's rightmost column. Pass
// nil to remove it.
func (l *ScrollList) SetScrollBar(scrollBar *ScrollBar) *ScrollList {
	l.scrollBar = scrollBar
	return l
}

// SetConfig sets the fling tuning. The list shares it with its sheet.
func (l *ScrollList) SetConfig(config SheetConfig) *ScrollList {
	l.config = config
	return l
}

// SetFrameScheduler sets the scheduler that drives the list's own flings.
// Without one, the list does not fling.
func (l *ScrollList) SetFrameScheduler(frames FrameScheduler) *ScrollList {
	l.frames = frames
	return l
}

// SetClock replaces the time source used for flings and velocity tracking.
func (l *ScrollList) SetClock(now func() time.Time) *ScrollList {
	if now != nil {
		l.now = now
	}
	return l
}

// SetNestedScrollParent implements NestedScrollChild.
func (l *ScrollList) SetNestedScrollParent(parent NestedScrollParent) {
	l.parent = parent
}

// SetOverScrollEnabled implements NestedScrollChild.
func (l *ScrollList) SetOverScrollEnabled(enabled bool) {
	l.overScroll = enabled
	if !enabled {
		l.edge = 0
	}
}

// AddScrollListener implements NestedScrollChild.
func (l *ScrollList) AddScrollListener(listener func(dy float64)) ScrollListener {
	return l.listeners.add(listener)
}

// RemoveScrollListener implements NestedScrollChild.
func (l *ScrollList) RemoveScrollListener(handle ScrollListener) {
	l.listeners.remove(handle)
}

// SetCursor sets the currently selected item index.
func (l *ScrollList) SetCursor(index int) *ScrollList {
	if index < -1 {
		index = -1
	}
	if l.cursor != index {
		l.cursor = index
		l.atEnd = false
		l.ensureCursorVisible()
		if l.changed != nil {
			l.changed(l.cursor)
		}
	}
	return l
}

// Cursor returns the current cursor index.
func (l *ScrollList) Cursor() int {
	return l.cursor
}

// SetChangedFunc sets a handler that is called when the cursor changes.
func (l *ScrollList) SetChangedFunc(handler func(index int)) *ScrollList {
	l.changed = handler
	return l
}

// NextItem moves the cursor to the next item, if any.
func (l *ScrollList) NextItem() bool {
	if l.Builder == nil || l.Builder(l.cursor+1, l.cursor) == nil {
		return false
	}
	l.SetCursor(l.cursor + 1)
	return true
}

// PrevItem moves the cursor to the previous item, if any.
func (l *ScrollList) PrevItem() bool {
	if l.cursor <= 0 || l.Builder == nil || l.Builder(l.cursor-1, l.cursor) == nil {
		return false
	}
	l.SetCursor(l.cursor - 1)
	return true
}

// ScrollToStart scrolls to the first row without changing the cursor.
func (l *ScrollList) ScrollToStart() *ScrollList {
	l.StopFling()
	l.ScrollBy(-l.scrollY)
	return l
}

// ScrollToEnd scrolls so the last rows are visible.
func (l *ScrollList) ScrollToEnd() *ScrollList {
	l.StopFling()
	l.ScrollBy(l.maxScroll() - l.scrollY)
	return l
}

// ScrollBy scrolls the content by dy rows, positive toward the end, clamped
// to the content bounds. It notifies scroll listeners and returns the
// distance actually scrolled. The nested scroll parent is not consulted.
func (l *ScrollList) ScrollBy(dy float64) float64 {
	target := clamp(l.scrollY+dy, 0, l.maxScroll())
	consumed := target - l.scrollY
	if consumed != dy && l.overScroll {
		if dy < 0 {
			l.edge = DirectionUp
		} else {
			l.edge = DirectionDown
		}
	}
	if consumed == 0 {
		return 0
	}
	l.atEnd = target >= l.maxScroll()
	l.setScrollY(target)
	return consumed
}

// CanScrollVertically implements NestedScrollChild.
func (l *ScrollList) CanScrollVertically(dir Direction) bool {
	switch {
	case dir < 0:
		return l.scrollY > 0
	case dir > 0:
		return l.scrollY < l.maxScroll()
	}
	return false
}

// ScrollOffset implements NestedScrollChild. A partially scrolled first row
// counts as one row, so the offset is 0 only at the very start.
func (l *ScrollList) ScrollOffset() int {
	return int(math.Ceil(l.scrollY))
}

// Fling implements NestedScrollChild. Velocities above the configured maximum
// are capped.
func (l *ScrollList) Fling(velocity float64) bool {
	l.StopFling()
	if l.frames == nil || math.Abs(velocity) <= l.config.MinFlingVelocity {
		return false
	}
	velocity = clamp(velocity, -l.config.MaxFlingVelocity, l.config.MaxFlingVelocity)

	run := &listFling{scroller: NewScroller(l.config.Friction)}
	run.scroller.Fling(l.now(), 0, velocity)
	l.fling = run
	l.frames.PostFrame(func(now time.Time) {
		l.stepFling(run, now)
	})
	return true
}

func (l *ScrollList) stepFling(run *listFling, now time.Time) {
	if l.fling != run {
		return
	}
	if !run.scroller.ComputeScrollOffset(now) {
		l.fling = nil
		return
	}
	dy := run.scroller.CurrY() - run.lastY
	run.lastY = run.scroller.CurrY()
	consumed := l.ScrollBy(dy)

	// A scroll listener may have taken the fling over.
	if l.fling != run {
		return
	}
	if consumed != dy || run.scroller.IsFinished() {
		run.scroller.ForceFinished()
		l.fling = nil
		return
	}
	l.frames.PostFrame(func(now time.Time) {
		l.stepFling(run, now)
	})
}

// StopFling implements NestedScrollChild.
func (l *ScrollList) StopFling() {
	if l.fling != nil {
		l.fling.scroller.ForceFinished()
		l.fling = nil
	}
}

// IsFlinging implements NestedScrollChild.
func (l *ScrollList) IsFlinging() bool {
	return l.fling != nil
}

// FlingVelocity implements NestedScrollChild.
func (l *ScrollList) FlingVelocity() float64 {
	if l.fling == nil {
		return 0
	}
	return l.fling.scroller.CurrVelocity()
}

// startGesture begins a user gesture: it stops any fling and asks the parent
// whether it wants to share the gesture.
func (l *ScrollList) startGesture() {
	l.StopFling()
	l.edge = 0
	l.nested = l.parent != nil && l.parent.OnStartNestedScroll(l)
}

// dispatchScroll offers dy to the parent and scrolls the list by the rest.
func (l *ScrollList) dispatchScroll(dy float64) {
	if l.nested {
		dy -= l.parent.OnNestedPreScroll(l, dy)
	}
	if dy != 0 {
		l.ScrollBy(dy)
	}
}

// dispatchFling offers the release velocity to the parent and flings the list
// itself when the parent declines.
func (l *ScrollList) dispatchFling(velocity float64) {
	if math.Abs(velocity) <= l.config.MinFlingVelocity {
		return
	}
	if l.nested && l.parent.OnNestedPreFling(l, velocity) {
		return
	}
	l.Fling(velocity)
}

// itemWidth is the width available to items, without the scroll bar column.
func (l *ScrollList) itemWidth() int {
	_, _, width, _ := l.GetInnerRect()
	if l.scrollBar != nil && width > 1 {
		width--
	}
	return width
}

func (l *ScrollList) itemHeight(item ScrollListItem, width int) int {
	if item == nil {
		return 0
	}
	return max(item.Height(width), 1)
}

// contentHeight measures all items at the current width.
func (l *ScrollList) contentHeight() int {
	if l.Builder == nil {
		return 0
	}
	width := l.itemWidth()
	total := 0
	for i := 0; ; i++ {
		item := l.Builder(i, l.cursor)
		if item == nil {
			break
		}
		if i > 0 {
			total += l.gap
		}
		total += l.itemHeight(item, width)
	}
	return total
}

func (l *ScrollList) maxScroll() float64 {
	_, _, _, height := l.GetInnerRect()
	return float64(max(l.contentHeight()-height, 0))
}

func (l *ScrollList) clampScroll() {
	l.setScrollY(clamp(l.scrollY, 0, l.maxScroll()))
}

// setScrollY moves the content to y without clamping and notifies scroll
// listeners of the change.
func (l *ScrollList) setScrollY(y float64) {
	dy := y - l.scrollY
	if dy == 0 {
		return
	}
	l.scrollY = y
	l.listeners.notify(dy)
}

// itemSpan returns the first row and height of the item at index.
func (l *ScrollList) itemSpan(index int) (top, height int, ok bool) {
	if l.Builder == nil || index < 0 {
		return 0, 0, false
	}
	width := l.itemWidth()
	for i := 0; i <= index; i++ {
		item := l.Builder(i, l.cursor)
		if item == nil {
			return 0, 0, false
		}
		height = l.itemHeight(item, width)
		if i < index {
			top += height + l.gap
		}
	}
	return top, height, true
}

func (l *ScrollList) ensureCursorVisible() {
	top, height, ok := l.itemSpan(l.cursor)
	if !ok {
		return
	}
	_, _, _, viewport := l.GetInnerRect()
	switch {
	case float64(top) < l.scrollY:
		l.ScrollBy(float64(top) - l.scrollY)
	case float64(top+height) > l.scrollY+float64(viewport):
		l.ScrollBy(float64(top+height-viewport) - l.scrollY)
	}
}

// Draw draws this primitive onto the screen.
func (l *ScrollList) Draw(screen tcell.Screen) {
	l.DrawForSubclass(screen, l)

	x, y, width, height := l.GetInnerRect()
	l.lastRect = scrollListRect{x: x, y: y, width: width, height: height}
	l.lastDraw = l.lastDraw[:0]
	if width <= 0 || height <= 0 || l.Builder == nil {
		return
	}

	if l.trackEnd && l.atEnd {
		l.setScrollY(l.maxScroll())
	}
	l.clampScroll()

	usableWidth := l.itemWidth()
	first := int(math.Floor(l.scrollY))
	clipped := newClippedScreen(screen, x, y, usableWidth, height)

	row := -first
	for i := 0; row < height; i++ {
		item := l.Builder(i, l.cursor)
		if item == nil {
			break
		}
		itemHeight := l.itemHeight(item, usableWidth)
		if row+itemHeight > 0 {
			item.SetRect(x, y+row, usableWidth, itemHeight)
			item.Draw(clipped)
			l.lastDraw = append(l.lastDraw, scrollListDrawnItem{
				index:  i,
				item:   item,
				row:    row,
				height: itemHeight,
			})
		}
		row += itemHeight + l.gap
	}

	if l.overScroll && l.edge != 0 {
		edgeRow := y
		if l.edge == DirectionDown {
			edgeRow = y + height - 1
		}
		glow := tcell.StyleDefault.Background(Styles.OverScrollColor)
		for col := x; col < x+usableWidth; col++ {
			screen.SetContent(col, edgeRow, ' ', nil, glow)
		}
	}

	if l.scrollBar != nil && usableWidth < width {
		l.scrollBar.SetLengths(ScrollLengths{ContentLen: l.contentHeight(), ViewportLen: height})
		l.scrollBar.SetOffset(first)
		l.scrollBar.SetRect(x+width-1, y, 1, height)
		l.scrollBar.Draw(screen)
	}
}

// InputHandler handles cursor movement and paging.
func (l *ScrollList) InputHandler(event *tcell.EventKey) Command {
	_, _, _, height := l.GetInnerRect()
	page := float64(max(height, 1))
	switch event.Key() {
	case tcell.KeyDown:
		l.NextItem()
	case tcell.KeyUp:
		l.PrevItem()
	case tcell.KeyPgDn:
		l.startGesture()
		l.dispatchScroll(page)
	case tcell.KeyPgUp:
		l.startGesture()
		l.dispatchScroll(-page)
	case tcell.KeyHome:
		l.ScrollToStart()
	case tcell.KeyEnd:
		l.ScrollToEnd()
	default:
		return nil
	}
	return RedrawCommand{}
}

// MouseHandler handles clicks, drags, and the mouse wheel. Dragging captures
// the mouse until the button is released.
func (l *ScrollList) MouseHandler(action MouseAction, event *tcell.EventMouse) (Primitive, Command) {
	x, y := event.Position()

	if l.dragging {
		switch action {
		case MouseMove:
			dy := float64(l.dragY - y)
			l.dragY = y
			l.velocity.AddMovement(l.now(), float64(y))
			if dy != 0 {
				l.dispatchScroll(dy)
			}
			return l, RedrawCommand{}
		case MouseLeftUp:
			l.dragging = false
			l.velocity.AddMovement(l.now(), float64(y))
			// Pointer moving down the screen scrolls the content toward its start.
			l.dispatchFling(-l.velocity.Velocity())
			l.edge = 0
			return nil, RedrawCommand{}
		}
	}

	if !l.InRect(x, y) {
		return nil, nil
	}

	switch action {
	case MouseLeftDown:
		l.dragging = true
		l.dragY = y
		l.velocity.Clear()
		l.velocity.AddMovement(l.now(), float64(y))
		l.startGesture()
		return l, SetFocusCommand{Target: l}
	case MouseLeftClick:
		index := l.indexAtPoint(x, y)
		if index >= 0 {
			l.SetCursor(index)
		}
		return nil, RedrawCommand{}
	case MouseScrollUp:
		l.startGesture()
		l.dispatchScroll(-wheelRows)
		return nil, RedrawCommand{}
	case MouseScrollDown:
		l.startGesture()
		l.dispatchScroll(wheelRows)
		return nil, RedrawCommand{}
	}

	return nil, nil
}

func (l *ScrollList) indexAtPoint(x, y int) int {
	if len(l.lastDraw) == 0 {
		return -1
	}
	if x < l.lastRect.x || x >= l.lastRect.x+l.lastRect.width || y < l.lastRect.y || y >= l.lastRect.y+l.lastRect.height {
		return -1
	}

	row := y - l.lastRect.y
	for _, child := range l.lastDraw {
		if row >= child.row && row < child.row+child.height+l.gap {
			return child.index
		}
	}
	return -1
}

var _ NestedScrollChild = &ScrollList{}
