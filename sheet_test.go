package sheetview

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSheet(t *testing.T, maxScrollY float64) (*ScrollingSheet, *fakeList, *manualFrames) {
	t.Helper()
	frames := newManualFrames()
	list := newFakeList(100)
	sheet := NewScrollingSheet().
		SetFrameScheduler(frames).
		SetClock(frames.clock)
	require.NoError(t, sheet.AttachChild(list))
	sheet.SetMaxScrollY(maxScrollY)
	return sheet, list, frames
}

func TestSheetCollapseClampsAtMaxScrollY(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)

	consumed := sheet.consumeScrollY(TowardCollapse(600))

	assert.Equal(t, TowardCollapse(500), consumed)
	assert.Equal(t, 500.0, sheet.ScrollY())
	assert.Equal(t, SheetAtMaxScrollY, sheet.State())
	assert.True(t, sheet.IsAtMaxScrollY())
}

func TestSheetCollapseWaitsForList(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 500)
	sheet.ScrollTo(300)
	require.Equal(t, 300.0, sheet.ScrollY())
	list.offset = 20

	consumed := sheet.consumeScrollY(TowardCollapse(400))

	assert.Zero(t, consumed)
	assert.Equal(t, 300.0, sheet.ScrollY())
}

func TestSheetCollapseFromMiddle(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	sheet.ScrollTo(200)

	consumed := sheet.consumeScrollY(TowardCollapse(250))

	assert.Equal(t, TowardCollapse(250), consumed)
	assert.Equal(t, 450.0, sheet.ScrollY())
	assert.Equal(t, SheetDragging, sheet.State())
}

func TestSheetExpansionClampsAtTop(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	sheet.ScrollTo(200)

	consumed := sheet.consumeScrollY(TowardExpansion(500))

	assert.Equal(t, 200.0, consumed)
	assert.Zero(t, sheet.ScrollY())
	assert.Equal(t, SheetExpanded, sheet.State())
	assert.True(t, sheet.HasReachedTop())
}

func TestSheetExpansionIgnoresList(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 500)
	sheet.ScrollTo(200)
	list.offset = 50

	assert.Equal(t, 30.0, sheet.consumeScrollY(TowardExpansion(30)))
	assert.Equal(t, 170.0, sheet.ScrollY())
}

func TestSheetBoundaryConsumesNothing(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	calls := 0
	sheet.AddScrollChangeListener(func(float64) { calls++ })

	assert.Zero(t, sheet.consumeScrollY(TowardExpansion(10)))

	sheet.ScrollTo(500)
	calls = 0
	assert.Zero(t, sheet.consumeScrollY(TowardCollapse(10)))
	assert.Zero(t, sheet.consumeScrollY(0))
	assert.Zero(t, calls)
}

func TestSheetOffsetStaysInBounds(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 40)
	for _, dy := range []float64{-7, -13, 25, -90, 3.5, 60, -41, 12, -0.25} {
		sheet.consumeScrollY(dy)
		require.GreaterOrEqual(t, sheet.ScrollY(), 0.0)
		require.LessOrEqual(t, sheet.ScrollY(), 40.0)
	}
}

func TestSheetScrollToIsIdempotent(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	var offsets []float64
	sheet.AddScrollChangeListener(func(offsetY float64) { offsets = append(offsets, offsetY) })

	sheet.ScrollTo(200)
	sheet.ScrollTo(200)

	assert.Equal(t, []float64{200}, offsets)
}

func TestSheetMaxScrollYDoesNotClamp(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	sheet.ScrollTo(400)

	sheet.SetMaxScrollY(100)

	assert.Equal(t, 400.0, sheet.ScrollY())
	assert.True(t, sheet.IsAtMaxScrollY())
	assert.Zero(t, sheet.consumeScrollY(TowardCollapse(10)))
	assert.Equal(t, 50.0, sheet.consumeScrollY(TowardExpansion(50)))
	assert.Equal(t, 350.0, sheet.ScrollY())
}

func TestSheetStateChangedFiresOnChange(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	var states []SheetState
	sheet.SetStateChangedFunc(func(state SheetState) { states = append(states, state) })

	sheet.ScrollTo(100)
	sheet.ScrollTo(200)
	sheet.ScrollTo(500)
	sheet.ScrollTo(0)

	assert.Equal(t, []SheetState{SheetDragging, SheetAtMaxScrollY, SheetExpanded}, states)
}

func TestSheetListScrollRederivesState(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 500)
	sheet.ScrollTo(500)
	require.Equal(t, SheetAtMaxScrollY, sheet.State())

	list.scrollTo(10)

	// The list can still move back, so the sheet is not at rest.
	assert.Equal(t, SheetDragging, sheet.State())
	assert.True(t, sheet.CanScrollDownwardsAnyFurther())
}

func TestSheetCanScrollFurther(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 500)

	assert.True(t, sheet.CanScrollDownwardsAnyFurther())
	assert.True(t, sheet.CanScrollUpwardsAnyFurther())

	sheet.ScrollTo(500)
	assert.False(t, sheet.CanScrollDownwardsAnyFurther())
	assert.True(t, sheet.CanScrollUpwardsAnyFurther())

	sheet.ScrollTo(0)
	list.offset = list.maxOffset
	assert.False(t, sheet.CanScrollUpwardsAnyFurther())
}

func TestSheetScrollingDisabled(t *testing.T) {
	sheet, list, frames := newTestSheet(t, 500)
	sheet.ScrollTo(100)
	require.Equal(t, SheetDragging, sheet.State())
	sheet.SetScrollingEnabled(false)

	assert.False(t, sheet.OnStartNestedScroll(list))
	assert.False(t, sheet.OnNestedPreFling(list, 100))
	assert.Empty(t, frames.pending)

	// Only the list counts while disabled.
	assert.False(t, sheet.CanScrollDownwardsAnyFurther())
	assert.Equal(t, SheetAtMaxScrollY, sheet.State())
	list.offset = 5
	assert.True(t, sheet.CanScrollDownwardsAnyFurther())

	sheet.SetScrollingEnabled(true)
	assert.True(t, sheet.OnStartNestedScroll(list))
	assert.Equal(t, SheetDragging, sheet.State())
}

func TestSheetListenersInOrder(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	var calls []string
	sheet.AddScrollChangeListener(func(float64) { calls = append(calls, "first") })
	sheet.AddScrollChangeListener(func(float64) { calls = append(calls, "second") })

	sheet.ScrollTo(10)

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSheetListenerDuplicatesAndRemoval(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	calls := 0
	listener := func(float64) { calls++ }
	first := sheet.AddScrollChangeListener(listener)
	sheet.AddScrollChangeListener(listener)

	sheet.ScrollTo(10)
	assert.Equal(t, 2, calls)

	sheet.RemoveScrollChangeListener(first)
	sheet.ScrollTo(20)
	assert.Equal(t, 3, calls)
}

func TestSheetListenerMutationDuringNotify(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	var (
		calls  []string
		second ScrollChangeListener
	)
	sheet.AddScrollChangeListener(func(float64) {
		calls = append(calls, "first")
		sheet.RemoveScrollChangeListener(second)
		sheet.AddScrollChangeListener(func(float64) { calls = append(calls, "added") })
	})
	second = sheet.AddScrollChangeListener(func(float64) { calls = append(calls, "second") })

	sheet.ScrollTo(10)
	assert.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	sheet.ScrollTo(20)
	assert.Equal(t, []string{"first", "added"}, calls)
}

func TestSheetListenerReentrantScroll(t *testing.T) {
	sheet, _, _ := newTestSheet(t, 500)
	var offsets []float64
	sheet.AddScrollChangeListener(func(offsetY float64) {
		offsets = append(offsets, offsetY)
		if offsetY == 100 {
			sheet.ScrollTo(150)
		}
	})

	sheet.ScrollTo(100)

	assert.Equal(t, []float64{100, 150}, offsets)
	assert.Equal(t, 150.0, sheet.ScrollY())
	assert.Equal(t, SheetDragging, sheet.State())
}

func TestSheetAttachChild(t *testing.T) {
	sheet := NewScrollingSheet()
	list := newFakeList(10)

	require.NoError(t, sheet.AttachChild(list))
	assert.Same(t, sheet, list.parent)
	assert.False(t, list.overScroll)
	assert.Same(t, list, sheet.Child())

	err := sheet.AttachChild(newFakeList(10))
	assert.ErrorIs(t, err, ErrChildAlreadyAttached)
}

func TestSheetAttachChildNotScrollable(t *testing.T) {
	sheet := NewScrollingSheet()

	err := sheet.AttachChild(NewBox())
	assert.ErrorIs(t, err, ErrChildNotScrollable)
	assert.Nil(t, sheet.Child())

	assert.Panics(t, func() { sheet.MustAttachChild(NewTextItem("x")) })
}

func TestSheetWithoutChild(t *testing.T) {
	sheet := NewScrollingSheet().SetMaxScrollY(50)

	sheet.ScrollTo(30)
	assert.Equal(t, 30.0, sheet.ScrollY())
	assert.True(t, sheet.CanScrollUpwardsAnyFurther())
	assert.True(t, sheet.CanScrollDownwardsAnyFurther())
}

func TestSheetOnNestedPreScroll(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 500)
	sheet.ScrollTo(100)

	assert.Equal(t, 40.0, sheet.OnNestedPreScroll(list, 40))
	assert.Equal(t, 60.0, sheet.ScrollY())
}

func TestSheetStateStrings(t *testing.T) {
	assert.Equal(t, "expanded", SheetExpanded.String())
	assert.Equal(t, "at-max-scroll-y", SheetAtMaxScrollY.String())
	assert.Equal(t, "transferred-to-list", FlingTransferredToList.String())
	assert.Equal(t, "SheetState(9)", SheetState(9).String())
}

func TestSheetKeybinds(t *testing.T) {
	sheet, _, frames := newTestSheet(t, 20)

	cmd := sheet.InputHandler(tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl))
	assert.Equal(t, RedrawCommand{}, cmd)
	assert.True(t, sheet.IsSmoothScrolling())
	frames.drain(t)
	assert.InDelta(t, 20, sheet.ScrollY(), 1e-9)

	sheet.InputHandler(tcell.NewEventKey(tcell.KeyCtrlE, 0, tcell.ModCtrl))
	frames.drain(t)
	assert.InDelta(t, 0, sheet.ScrollY(), 1e-9)

	sheet.InputHandler(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))
	frames.drain(t)
	assert.InDelta(t, 20, sheet.ScrollY(), 1e-9)

	sheet.InputHandler(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))
	frames.drain(t)
	assert.InDelta(t, 0, sheet.ScrollY(), 1e-9)

	// Other keys go to the list.
	assert.Nil(t, sheet.InputHandler(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestSheetFocusGoesToChild(t *testing.T) {
	sheet, list, _ := newTestSheet(t, 20)

	var focused Primitive
	sheet.Focus(func(p Primitive) { focused = p })
	assert.Same(t, list, focused)

	list.Focus(nil)
	assert.True(t, sheet.HasFocus())
}

func TestSheetDrawTranslatesAndClips(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 10)

	list := NewScrollList()
	list.SetBuilder(func(index, cursor int) ScrollListItem {
		if index < 0 || index >= 20 {
			return nil
		}
		return NewTextItem("row")
	})
	sheet := NewScrollingSheet().MustAttachChild(list)
	sheet.SetBorders(BordersTop)
	sheet.SetRect(0, 0, 20, 6)
	sheet.SetMaxScrollY(4)
	sheet.ScrollTo(2)

	sheet.Draw(screen)

	cell := func(x, y int) rune {
		primary, _, _, _ := screen.GetContent(x, y)
		return primary
	}
	// Rows above the translated sheet are left alone.
	assert.Equal(t, ' ', cell(1, 1))
	_, _, style, _ := screen.GetContent(1, 1)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorDefault, bg)

	// The top border and handle are on the translated first row.
	assert.Equal(t, '─', cell(1, 2))
	assert.Equal(t, '━', cell(9, 2))
	_, _, style, _ = screen.GetContent(1, 2)
	_, bg, _ = style.Decompose()
	assert.Equal(t, Styles.SheetBackgroundColor, bg)

	// The list starts right below and is cut off at the layout rect.
	assert.Equal(t, 'r', cell(0, 3))
	assert.Equal(t, 'r', cell(0, 5))
	assert.Equal(t, ' ', cell(0, 6))

	x, y, width, height := sheet.GetRect()
	assert.Equal(t, []int{0, 0, 20, 6}, []int{x, y, width, height})
}

func TestSheetMouse(t *testing.T) {
	sheet, _, frames := newTestSheet(t, 8)
	sheet.SetRect(0, 0, 20, 10)
	sheet.ScrollTo(4)

	// Above the visible sheet.
	capture, cmd := sheet.MouseHandler(MouseLeftClick, tcell.NewEventMouse(3, 2, tcell.ButtonPrimary, tcell.ModNone))
	assert.Nil(t, capture)
	assert.Nil(t, cmd)

	// A click on the top row toggles.
	_, cmd = sheet.MouseHandler(MouseLeftClick, tcell.NewEventMouse(3, 4, tcell.ButtonPrimary, tcell.ModNone))
	assert.Equal(t, RedrawCommand{}, cmd)
	frames.drain(t)
	assert.InDelta(t, 0, sheet.ScrollY(), 1e-9)
}
