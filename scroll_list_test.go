package sheetview

import (
	"fmt"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingParent is a NestedScrollParent that consumes deltas toward the end
// of the content until its budget runs out.
type recordingParent struct {
	accept     bool
	budget     float64
	claimFling bool

	started    int
	preScrolls []float64
	flings     []float64
}

func (p *recordingParent) OnStartNestedScroll(child NestedScrollChild) bool {
	p.started++
	return p.accept
}

func (p *recordingParent) OnNestedPreScroll(child NestedScrollChild, dy float64) float64 {
	p.preScrolls = append(p.preScrolls, dy)
	if dy <= 0 {
		return 0
	}
	consumed := min(dy, p.budget)
	p.budget -= consumed
	return consumed
}

func (p *recordingParent) OnNestedPreFling(child NestedScrollChild, velocity float64) bool {
	p.flings = append(p.flings, velocity)
	return p.claimFling
}

// newTestList returns a list of count one-row items in a viewport of height
// rows.
func newTestList(count, height int) (*ScrollList, *manualFrames) {
	frames := newManualFrames()
	list := NewScrollList().
		SetFrameScheduler(frames).
		SetClock(frames.clock)
	list.SetBuilder(func(index, cursor int) ScrollListItem {
		if index < 0 || index >= count {
			return nil
		}
		return NewTextItem(fmt.Sprintf("item %d", index))
	})
	list.SetRect(0, 0, 20, height)
	return list, frames
}

func wheel(list *ScrollList, action MouseAction) Command {
	_, cmd := list.MouseHandler(action, tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone))
	return cmd
}

func TestScrollListScrollBy(t *testing.T) {
	list, _ := newTestList(30, 10)
	var deltas []float64
	list.AddScrollListener(func(dy float64) { deltas = append(deltas, dy) })

	assert.Equal(t, 5.0, list.ScrollBy(5))
	assert.Equal(t, 15.0, list.ScrollBy(40))
	assert.Zero(t, list.ScrollBy(1))
	assert.Equal(t, -20.0, list.ScrollBy(-25))

	assert.Equal(t, []float64{5, 15, -20}, deltas)
	assert.Equal(t, DirectionUp, list.edge)
}

func TestScrollListCanScrollVertically(t *testing.T) {
	list, _ := newTestList(30, 10)
	assert.False(t, list.CanScrollVertically(DirectionUp))
	assert.True(t, list.CanScrollVertically(DirectionDown))
	assert.False(t, list.CanScrollVertically(0))

	list.ScrollBy(0.5)
	assert.True(t, list.CanScrollVertically(DirectionUp))
	assert.Equal(t, 1, list.ScrollOffset())

	list.ScrollToEnd()
	assert.False(t, list.CanScrollVertically(DirectionDown))
	assert.Equal(t, 20, list.ScrollOffset())

	list.ScrollToStart()
	assert.Zero(t, list.ScrollOffset())
}

func TestScrollListGapAndHeights(t *testing.T) {
	list, _ := newTestList(5, 4)
	list.SetGap(1)

	assert.Equal(t, 9, list.contentHeight())
	assert.Equal(t, 5.0, list.maxScroll())

	top, height, ok := list.itemSpan(2)
	require.True(t, ok)
	assert.Equal(t, 4, top)
	assert.Equal(t, 1, height)

	_, _, ok = list.itemSpan(5)
	assert.False(t, ok)
}

func TestScrollListWheelWithoutParent(t *testing.T) {
	list, _ := newTestList(30, 10)

	assert.Equal(t, RedrawCommand{}, wheel(list, MouseScrollDown))
	assert.Equal(t, 3.0, list.scrollY)

	wheel(list, MouseScrollUp)
	assert.Zero(t, list.scrollY)
}

func TestScrollListOffersDeltasToParent(t *testing.T) {
	list, _ := newTestList(30, 10)
	parent := &recordingParent{accept: true, budget: 4}
	list.SetNestedScrollParent(parent)

	wheel(list, MouseScrollDown)
	assert.Zero(t, list.scrollY)
	wheel(list, MouseScrollDown)
	assert.Equal(t, 2.0, list.scrollY)

	assert.Equal(t, 2, parent.started)
	assert.Equal(t, []float64{3, 3}, parent.preScrolls)
}

func TestScrollListParentDeclinesGesture(t *testing.T) {
	list, _ := newTestList(30, 10)
	parent := &recordingParent{accept: false, budget: 100}
	list.SetNestedScrollParent(parent)

	list.InputHandler(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))

	assert.Equal(t, 1, parent.started)
	assert.Empty(t, parent.preScrolls)
	assert.Equal(t, 10.0, list.scrollY)
}

func TestScrollListKeys(t *testing.T) {
	list, _ := newTestList(30, 10)
	list.SetCursor(0)

	assert.Equal(t, RedrawCommand{}, list.InputHandler(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)))
	assert.Equal(t, 1, list.Cursor())
	list.InputHandler(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	list.InputHandler(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 0, list.Cursor())

	list.InputHandler(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	assert.Equal(t, 20.0, list.scrollY)
	list.InputHandler(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone))
	assert.Equal(t, 10.0, list.scrollY)
	list.InputHandler(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	assert.Zero(t, list.scrollY)

	assert.Nil(t, list.InputHandler(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestScrollListCursorStaysVisible(t *testing.T) {
	list, _ := newTestList(30, 10)
	var changes []int
	list.SetChangedFunc(func(index int) { changes = append(changes, index) })

	list.SetCursor(15)
	assert.Equal(t, 6.0, list.scrollY)

	list.SetCursor(2)
	assert.Equal(t, 2.0, list.scrollY)
	assert.Equal(t, []int{15, 2}, changes)

	list.SetCursor(29)
	assert.False(t, list.NextItem())
}

func TestScrollListDragAndRelease(t *testing.T) {
	list, frames := newTestList(30, 10)
	parent := &recordingParent{accept: true, budget: 1, claimFling: true}
	list.SetNestedScrollParent(parent)

	capture, cmd := list.MouseHandler(MouseLeftDown, tcell.NewEventMouse(1, 5, tcell.Button1, tcell.ModNone))
	assert.Same(t, list, capture)
	assert.Equal(t, SetFocusCommand{Target: list}, cmd)

	// Dragging the pointer up two rows scrolls the content down.
	frames.now = frames.now.Add(10 * time.Millisecond)
	capture, _ = list.MouseHandler(MouseMove, tcell.NewEventMouse(1, 3, tcell.Button1, tcell.ModNone))
	assert.Same(t, list, capture)
	assert.Equal(t, []float64{2}, parent.preScrolls)
	assert.Equal(t, 1.0, list.scrollY)

	capture, _ = list.MouseHandler(MouseLeftUp, tcell.NewEventMouse(1, 3, tcell.ButtonNone, tcell.ModNone))
	assert.Nil(t, capture)
	require.Len(t, parent.flings, 1)
	assert.Positive(t, parent.flings[0])
	assert.False(t, list.IsFlinging())
}

func TestScrollListReleaseFlingsWhenDeclined(t *testing.T) {
	list, frames := newTestList(100, 10)
	parent := &recordingParent{accept: true}
	list.SetNestedScrollParent(parent)

	list.MouseHandler(MouseLeftDown, tcell.NewEventMouse(1, 8, tcell.Button1, tcell.ModNone))
	frames.now = frames.now.Add(10 * time.Millisecond)
	list.MouseHandler(MouseMove, tcell.NewEventMouse(1, 6, tcell.Button1, tcell.ModNone))
	list.MouseHandler(MouseLeftUp, tcell.NewEventMouse(1, 6, tcell.ButtonNone, tcell.ModNone))

	require.Len(t, parent.flings, 1)
	assert.True(t, list.IsFlinging())
	start := list.scrollY
	frames.drain(t)
	assert.Greater(t, list.scrollY, start)
	assert.False(t, list.IsFlinging())
}

func TestScrollListClickSelects(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 10)

	list, _ := newTestList(30, 10)
	list.ScrollBy(4)
	list.Draw(screen)

	_, cmd := list.MouseHandler(MouseLeftClick, tcell.NewEventMouse(2, 3, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, RedrawCommand{}, cmd)
	assert.Equal(t, 7, list.Cursor())

	capture, cmd := list.MouseHandler(MouseLeftClick, tcell.NewEventMouse(2, 12, tcell.ButtonNone, tcell.ModNone))
	assert.Nil(t, capture)
	assert.Nil(t, cmd)
}

func TestScrollListFling(t *testing.T) {
	list, frames := newTestList(100, 10)
	var deltas []float64
	list.AddScrollListener(func(dy float64) { deltas = append(deltas, dy) })

	require.True(t, list.Fling(100))
	assert.True(t, list.IsFlinging())
	assert.Equal(t, 100.0, list.FlingVelocity())

	frames.drain(t)
	assert.False(t, list.IsFlinging())
	assert.Zero(t, list.FlingVelocity())
	assert.InDelta(t, 24.75, list.scrollY, 1e-6)
	for _, dy := range deltas {
		assert.Positive(t, dy)
	}
}

func TestScrollListFlingStopsAtEdge(t *testing.T) {
	list, frames := newTestList(20, 10)

	require.True(t, list.Fling(100))
	frames.drain(t)

	assert.Equal(t, 10.0, list.scrollY)
	assert.False(t, list.IsFlinging())
	assert.Equal(t, DirectionDown, list.edge)
}

func TestScrollListFlingRejected(t *testing.T) {
	list, frames := newTestList(100, 10)
	assert.False(t, list.Fling(5))
	assert.False(t, list.Fling(-2))
	assert.Empty(t, frames.pending)

	list.SetFrameScheduler(nil)
	assert.False(t, list.Fling(100))
}

func TestScrollListFlingCapped(t *testing.T) {
	list, _ := newTestList(1000, 10)

	require.True(t, list.Fling(-5000))
	assert.Equal(t, -400.0, list.FlingVelocity())

	list.StopFling()
	assert.False(t, list.IsFlinging())
}

func TestScrollListOverScrollDisabled(t *testing.T) {
	list, _ := newTestList(20, 10)
	list.ScrollBy(-3)
	assert.Equal(t, DirectionUp, list.edge)

	list.SetOverScrollEnabled(false)
	assert.Zero(t, list.edge)
	list.ScrollBy(-3)
	assert.Zero(t, list.edge)
}

func TestScrollListDrawOverScrollGlow(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 10)

	list, _ := newTestList(20, 10)
	list.ScrollBy(-1)
	list.Draw(screen)

	_, _, style, _ := screen.GetContent(3, 0)
	_, bg, _ := style.Decompose()
	assert.Equal(t, Styles.OverScrollColor, bg)

	_, _, style, _ = screen.GetContent(3, 1)
	_, bg, _ = style.Decompose()
	assert.NotEqual(t, Styles.OverScrollColor, bg)
}

func TestScrollListClear(t *testing.T) {
	list, _ := newTestList(30, 10)
	list.SetCursor(12)
	list.Clear()

	assert.Equal(t, -1, list.Cursor())
	assert.Zero(t, list.scrollY)
	assert.Zero(t, list.contentHeight())
}

func TestSheetWheelScrollsSheetBeforeList(t *testing.T) {
	list, _ := newTestList(50, 20)
	sheet := NewScrollingSheet().MustAttachChild(list)
	sheet.SetMaxScrollY(16)
	sheet.ScrollTo(16)
	require.Equal(t, SheetAtMaxScrollY, sheet.State())

	for range 5 {
		wheel(list, MouseScrollDown)
	}
	assert.Equal(t, 1.0, sheet.ScrollY())
	assert.Zero(t, list.scrollY)

	// The sixth notch finishes expanding the sheet and scrolls the rest.
	wheel(list, MouseScrollDown)
	assert.Zero(t, sheet.ScrollY())
	assert.Equal(t, 2.0, list.scrollY)
	assert.Equal(t, SheetExpanded, sheet.State())

	// Back up: the list returns to its start first.
	wheel(list, MouseScrollUp)
	assert.Zero(t, sheet.ScrollY())
	assert.Zero(t, list.scrollY)
	assert.Zero(t, list.edge)

	wheel(list, MouseScrollUp)
	assert.Equal(t, 3.0, sheet.ScrollY())
	assert.Equal(t, SheetDragging, sheet.State())
}

func TestSheetFlingContinuesInList(t *testing.T) {
	list, frames := newTestList(100, 20)
	sheet := NewScrollingSheet().
		SetFrameScheduler(frames).
		SetClock(frames.clock).
		MustAttachChild(list)
	sheet.SetMaxScrollY(16)
	sheet.ScrollTo(16)

	require.True(t, sheet.OnNestedPreFling(list, TowardExpansion(100)))
	frames.drain(t)

	assert.Zero(t, sheet.ScrollY())
	// About 32 rows per second are left when the sheet is expanded.
	assert.Greater(t, list.scrollY, 5.0)
	assert.Less(t, list.scrollY, 10.0)
	assert.False(t, list.IsFlinging())
	assert.Equal(t, FlingIdle, sheet.FlingState())
}

func TestSheetStateFollowsListClamping(t *testing.T) {
	list, _ := newTestList(50, 20)
	sheet := NewScrollingSheet().MustAttachChild(list)
	sheet.SetMaxScrollY(16)
	sheet.ScrollTo(16)

	list.ScrollBy(10)
	require.Equal(t, SheetDragging, sheet.State())

	// 25 items leave 5 rows to scroll, so the list is clamped but not at
	// its start.
	list.SetBuilder(func(index, cursor int) ScrollListItem {
		if index < 0 || index >= 25 {
			return nil
		}
		return NewTextItem("item")
	})
	assert.Equal(t, 5.0, list.scrollY)
	assert.Equal(t, SheetDragging, sheet.State())

	list.Clear()
	assert.Zero(t, list.scrollY)
	assert.False(t, sheet.CanScrollDownwardsAnyFurther())
	assert.Equal(t, SheetAtMaxScrollY, sheet.State())
}

func TestSheetCollapseFlingReturnsFromList(t *testing.T) {
	list, frames := newTestList(100, 20)
	sheet := NewScrollingSheet().
		SetFrameScheduler(frames).
		SetClock(frames.clock).
		MustAttachChild(list)
	sheet.SetMaxScrollY(16)

	list.ScrollBy(8)
	require.Equal(t, SheetExpanded, sheet.State())

	// The list has room toward its start, so the fling goes to the list
	// and comes back once the list is at its first row.
	require.True(t, sheet.OnNestedPreFling(list, TowardCollapse(200)))
	frames.drain(t)

	assert.Zero(t, list.scrollY)
	assert.False(t, list.IsFlinging())
	assert.Greater(t, sheet.ScrollY(), 0.0)
	assert.LessOrEqual(t, sheet.ScrollY(), 16.0)
	assert.Equal(t, FlingIdle, sheet.FlingState())
}
