package sheetview

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/sheetview/keybind"
)

// SheetState describes where a ScrollingSheet rests. It is derived from the
// sheet offset, its max scroll, and the wrapped list's position.
type SheetState int

const (
	// SheetExpanded means the sheet is at offset 0 and can still move.
	SheetExpanded SheetState = iota
	// SheetDragging means the sheet is between its bounds.
	SheetDragging
	// SheetAtMaxScrollY means neither the sheet nor its list can move any
	// further when pulled downwards.
	SheetAtMaxScrollY
)

func (s SheetState) String() string {
	switch s {
	case SheetExpanded:
		return "expanded"
	case SheetDragging:
		return "dragging"
	case SheetAtMaxScrollY:
		return "at-max-scroll-y"
	}
	return fmt.Sprintf("SheetState(%d)", int(s))
}

// FlingState tracks which side owns a fling.
type FlingState int

const (
	FlingIdle FlingState = iota
	// FlingSheet means the sheet is moving under its own simulation.
	FlingSheet
	// FlingTransferredToList means the sheet handed its fling to the list.
	// The list may hand it back when it reaches its first row.
	FlingTransferredToList
)

func (s FlingState) String() string {
	switch s {
	case FlingIdle:
		return "idle"
	case FlingSheet:
		return "sheet"
	case FlingTransferredToList:
		return "transferred-to-list"
	}
	return fmt.Sprintf("FlingState(%d)", int(s))
}

var (
	ErrChildAlreadyAttached = errors.New("sheet can only host one scrollable child")
	ErrChildNotScrollable   = errors.New("sheet child must be a NestedScrollChild")
)

// TowardExpansion returns a scroll delta that moves the sheet rows closer to
// its expanded position (offset 0).
func TowardExpansion(rows float64) float64 {
	return math.Abs(rows)
}

// TowardCollapse returns a scroll delta that moves the sheet rows closer to
// its max scroll.
func TowardCollapse(rows float64) float64 {
	return -math.Abs(rows)
}

func towardExpansion(dy float64) bool {
	return dy > 0
}

// ScrollChangeListener is a handle identifying one registered listener.
type ScrollChangeListener = *scrollChangeEntry

type scrollChangeEntry struct {
	fn func(offsetY float64)
}

// SheetKeybinds are the keys a sheet handles itself. Everything else goes to
// the wrapped list.
type SheetKeybinds struct {
	Expand   keybind.Keybind
	Collapse keybind.Keybind
	Toggle   keybind.Keybind
}

// DefaultSheetKeybinds returns ctrl+e (expand), ctrl+d (collapse), and
// ctrl+t (toggle).
func DefaultSheetKeybinds() SheetKeybinds {
	return SheetKeybinds{
		Expand:   keybind.NewKeybind(keybind.WithKeys("ctrl+e"), keybind.WithHelp("ctrl+e", "expand")),
		Collapse: keybind.NewKeybind(keybind.WithKeys("ctrl+d"), keybind.WithHelp("ctrl+d", "collapse")),
		Toggle:   keybind.NewKeybind(keybind.WithKeys("ctrl+t"), keybind.WithHelp("ctrl+t", "toggle sheet")),
	}
}

// ScrollingSheet is a draggable panel wrapping exactly one scrollable list.
// The sheet and the list scroll as one surface: scrolling the content down
// first expands the sheet to offset 0 and only then scrolls the list, while
// scrolling the content up first scrolls the list back to its first row and
// only then moves the sheet toward its max scroll. Flings are handed between
// the two in both directions.
//
// The offset is the number of rows the sheet is pushed down from its layout
// rect; 0 is fully expanded. The sheet is confined to the event loop; it is
// not safe for concurrent use.
type ScrollingSheet struct {
	*Box

	// The untranslated rect assigned by the layout.
	layoutX, layoutY, layoutWidth, layoutHeight int

	child         NestedScrollChild
	childListener ScrollListener

	offsetY    float64
	maxScrollY float64

	state        SheetState
	stateChanged func(state SheetState)

	scrollingEnabled   bool
	resizeCompensation bool

	listeners []*scrollChangeEntry

	config SheetConfig
	frames FrameScheduler
	now    func() time.Time
	logger *slog.Logger

	fling      *sheetFling
	flingState FlingState
	smooth     *smoothScroll

	keybinds    SheetKeybinds
	handle      string
	handleStyle tcell.Style
}

// NewScrollingSheet returns an expanded sheet without a child.
func NewScrollingSheet() *ScrollingSheet {
	s := &ScrollingSheet{
		Box:                NewBox(),
		state:              SheetExpanded,
		scrollingEnabled:   true,
		resizeCompensation: true,
		config:             DefaultSheetConfig(),
		now:                time.Now,
		logger:             slog.New(slog.DiscardHandler),
		keybinds:           DefaultSheetKeybinds(),
		handle:             "━━━━━━",
		handleStyle:        tcell.StyleDefault.Foreground(Styles.HandleColor).Background(Styles.SheetBackgroundColor),
	}
	s.Box.SetBackgroundColor(Styles.SheetBackgroundColor)
	return s
}

// AttachChild wraps p, which must be a NestedScrollChild. A sheet accepts
// exactly one child for its whole life. The child's over-scroll effect is
// disabled: the sheet provides the feel at the boundaries.
func (s *ScrollingSheet) AttachChild(p Primitive) error {
	if s.child != nil {
		return ErrChildAlreadyAttached
	}
	child, ok := p.(NestedScrollChild)
	if !ok {
		return fmt.Errorf("%T: %w", p, ErrChildNotScrollable)
	}

	s.child = child
	s.childListener = child.AddScrollListener(s.onChildScrolled)
	child.SetOverScrollEnabled(false)
	child.SetNestedScrollParent(s)
	s.refreshState()
	return nil
}

// MustAttachChild is like AttachChild but panics on misuse.
func (s *ScrollingSheet) MustAttachChild(p Primitive) *ScrollingSheet {
	if err := s.AttachChild(p); err != nil {
		panic(err)
	}
	return s
}

// Child returns the wrapped list, or nil.
func (s *ScrollingSheet) Child() NestedScrollChild {
	return s.child
}

// SetConfig sets the fling and animation tuning.
func (s *ScrollingSheet) SetConfig(config SheetConfig) *ScrollingSheet {
	s.config = config
	return s
}

// SetFrameScheduler sets the scheduler that drives flings and smooth scrolls.
// Without one the sheet declines flings and smooth scrolls jump.
func (s *ScrollingSheet) SetFrameScheduler(frames FrameScheduler) *ScrollingSheet {
	s.frames = frames
	return s
}

// SetClock replaces the time source used to start animations.
func (s *ScrollingSheet) SetClock(now func() time.Time) *ScrollingSheet {
	if now != nil {
		s.now = now
	}
	return s
}

// SetLogger sets the logger for debug output. Nil discards.
func (s *ScrollingSheet) SetLogger(logger *slog.Logger) *ScrollingSheet {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s.logger = logger
	return s
}

// SetKeybinds replaces the sheet's own key bindings.
func (s *ScrollingSheet) SetKeybinds(keybinds SheetKeybinds) *ScrollingSheet {
	s.keybinds = keybinds
	return s
}

// ShortHelp returns the sheet's own key bindings.
func (s *ScrollingSheet) ShortHelp() []keybind.Keybind {
	return []keybind.Keybind{s.keybinds.Expand, s.keybinds.Collapse, s.keybinds.Toggle}
}

// SetHandle sets the grab handle drawn centered on the sheet's top row when
// there is no title. An empty string hides it.
func (s *ScrollingSheet) SetHandle(handle string, style tcell.Style) *ScrollingSheet {
	s.handle = handle
	s.handleStyle = style
	return s
}

// SetStateChangedFunc sets a handler called whenever the sheet state changes.
func (s *ScrollingSheet) SetStateChangedFunc(handler func(state SheetState)) *ScrollingSheet {
	s.stateChanged = handler
	return s
}

// SetResizeCompensation toggles nudging the sheet by the height delta when
// its layout height changes, e.g. when the terminal shrinks.
func (s *ScrollingSheet) SetResizeCompensation(enabled bool) *ScrollingSheet {
	s.resizeCompensation = enabled
	return s
}

// AddScrollChangeListener registers fn to be called with the new offset after
// every offset change. Listeners are called in registration order. Adding the
// same function twice registers it twice.
func (s *ScrollingSheet) AddScrollChangeListener(fn func(offsetY float64)) ScrollChangeListener {
	entry := &scrollChangeEntry{fn: fn}
	s.listeners = append(s.listeners, entry)
	return entry
}

// RemoveScrollChangeListener unregisters a listener returned by
// AddScrollChangeListener.
func (s *ScrollingSheet) RemoveScrollChangeListener(handle ScrollChangeListener) {
	for i, entry := range s.listeners {
		if entry == handle {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// SetMaxScrollY sets the offset of the collapsed position. The current offset
// is not clamped; call ScrollTo to reposition.
func (s *ScrollingSheet) SetMaxScrollY(y float64) *ScrollingSheet {
	s.logger.Debug("setting max scroll", "maxScrollY", y)
	s.maxScrollY = y
	s.refreshState()
	return s
}

// MaxScrollY returns the offset of the collapsed position.
func (s *ScrollingSheet) MaxScrollY() float64 {
	return s.maxScrollY
}

// ScrollY returns the current offset.
func (s *ScrollingSheet) ScrollY() float64 {
	return s.offsetY
}

// State returns the sheet state as of the last offset change or list scroll.
func (s *ScrollingSheet) State() SheetState {
	return s.state
}

// FlingState returns who owns the current fling.
func (s *ScrollingSheet) FlingState() FlingState {
	if s.flingState == FlingTransferredToList && (s.child == nil || !s.child.IsFlinging()) {
		return FlingIdle
	}
	return s.flingState
}

// SetScrollingEnabled toggles nested scrolling. A disabled sheet declines all
// gestures, so the wrapped list scrolls on its own.
func (s *ScrollingSheet) SetScrollingEnabled(enabled bool) *ScrollingSheet {
	s.scrollingEnabled = enabled
	s.refreshState()
	return s
}

// IsScrollingEnabled reports whether the sheet takes part in gestures.
func (s *ScrollingSheet) IsScrollingEnabled() bool {
	return s.scrollingEnabled
}

// CanScrollDownwardsAnyFurther reports whether the sheet or the list within
// can still move when pulled downwards. With scrolling disabled only the list
// counts.
func (s *ScrollingSheet) CanScrollDownwardsAnyFurther() bool {
	sheetCan := s.offsetY < s.maxScrollY
	listCan := s.childCanScroll(DirectionUp)
	if s.scrollingEnabled {
		return sheetCan || listCan
	}
	return listCan
}

// CanScrollUpwardsAnyFurther reports whether the sheet or the list within can
// still move when pushed upwards.
func (s *ScrollingSheet) CanScrollUpwardsAnyFurther() bool {
	return s.offsetY != 0 || s.childCanScroll(DirectionDown)
}

// HasReachedTop reports whether the sheet is fully expanded.
func (s *ScrollingSheet) HasReachedTop() bool {
	return s.offsetY <= 0
}

// IsAtMaxScrollY reports whether the sheet has reached its max scroll.
func (s *ScrollingSheet) IsAtMaxScrollY() bool {
	return s.offsetY >= s.maxScrollY
}

func (s *ScrollingSheet) childCanScroll(dir Direction) bool {
	return s.child != nil && s.child.CanScrollVertically(dir)
}

// ScrollTo moves the sheet to offset y, subject to the same rules as a drag.
func (s *ScrollingSheet) ScrollTo(y float64) {
	s.consumeScrollY(s.offsetY - y)
}

// ScrollToSmooth moves the sheet to offset y, animated when smooth is true.
func (s *ScrollingSheet) ScrollToSmooth(y float64, smooth bool) {
	if smooth {
		s.SmoothScrollTo(y)
	} else {
		s.ScrollTo(y)
	}
}

// SmoothScrollTo animates the sheet to offset y, replacing any running smooth
// scroll. Every frame goes through the same rules as a drag.
func (s *ScrollingSheet) SmoothScrollTo(y float64) {
	s.smooth = nil
	if s.offsetY == y {
		return
	}
	if s.frames == nil {
		s.ScrollTo(y)
		return
	}

	run := &smoothScroll{
		from:     s.offsetY,
		to:       y,
		start:    s.now(),
		duration: s.config.SmoothScrollDuration,
	}
	s.smooth = run
	s.frames.PostFrame(func(now time.Time) {
		s.onSmoothFrame(run, now)
	})
}

// IsSmoothScrolling reports whether a smooth scroll is running.
func (s *ScrollingSheet) IsSmoothScrolling() bool {
	return s.smooth != nil
}

// consumeScrollY applies as much of dy as the sheet may take and returns the
// amount consumed. Toward expansion the sheet takes the delta as long as it
// is not at offset 0. Toward collapse it takes the delta only when it is not
// at its max scroll and the list cannot scroll toward its first row any more.
func (s *ScrollingSheet) consumeScrollY(dy float64) float64 {
	if towardExpansion(dy) {
		if s.HasReachedTop() {
			return 0
		}
		adjusted := dy
		if s.offsetY-dy < 0 {
			adjusted = s.offsetY
		}
		s.adjustOffsetBy(adjusted)
		return adjusted
	}

	if s.IsAtMaxScrollY() || s.childCanScroll(DirectionUp) {
		return 0
	}
	adjusted := dy
	if s.offsetY-dy > s.maxScrollY {
		adjusted = s.offsetY - s.maxScrollY
	}
	if adjusted == 0 {
		return 0
	}
	s.adjustOffsetBy(adjusted)
	return adjusted
}

// adjustOffsetBy moves the sheet by dy (positive moves it up), updates the
// state, and notifies listeners.
func (s *ScrollingSheet) adjustOffsetBy(dy float64) {
	s.offsetY -= dy
	s.syncBoxRect()
	s.refreshState()

	offset := s.offsetY
	snapshot := make([]*scrollChangeEntry, len(s.listeners))
	copy(snapshot, s.listeners)
	for _, entry := range snapshot {
		entry.fn(offset)
	}
}

func (s *ScrollingSheet) deriveState() SheetState {
	switch {
	case !s.CanScrollDownwardsAnyFurther():
		return SheetAtMaxScrollY
	case s.HasReachedTop():
		return SheetExpanded
	}
	return SheetDragging
}

func (s *ScrollingSheet) refreshState() {
	state := s.deriveState()
	if state == s.state {
		return
	}
	s.state = state
	if s.stateChanged != nil {
		s.stateChanged(state)
	}
}

// OnStartNestedScroll implements NestedScrollParent. Every gesture is
// accepted while scrolling is enabled; whether the sheet moves is decided per
// delta. A new gesture stops the sheet's fling.
func (s *ScrollingSheet) OnStartNestedScroll(child NestedScrollChild) bool {
	s.cancelFling()
	return s.scrollingEnabled
}

// OnNestedPreScroll implements NestedScrollParent.
func (s *ScrollingSheet) OnNestedPreScroll(child NestedScrollChild, dy float64) float64 {
	s.cancelFling()
	return s.consumeScrollY(dy)
}

// OnNestedPreFling implements NestedScrollParent. The sheet claims every fling
// within the configured velocity bounds and runs it itself; the fling is
// handed to the list once the sheet reaches offset 0 and stops moving.
func (s *ScrollingSheet) OnNestedPreFling(child NestedScrollChild, velocity float64) bool {
	s.cancelFling()

	if !s.scrollingEnabled || !s.config.acceptsFling(velocity) {
		s.logger.Debug("declining fling", "velocity", velocity, "enabled", s.scrollingEnabled)
		return false
	}
	if s.frames == nil {
		s.logger.Warn("declining fling without a frame scheduler", "velocity", velocity)
		return false
	}

	s.logger.Debug("claiming fling", "velocity", velocity, "offset", s.offsetY)
	s.startFling(velocity)
	return true
}

// onChildScrolled re-derives the state and hands a transferred fling back to
// the sheet when the list reaches its first row while still flinging.
func (s *ScrollingSheet) onChildScrolled(dy float64) {
	s.refreshState()

	if s.flingState != FlingTransferredToList || s.child == nil {
		return
	}
	if !s.child.IsFlinging() {
		s.flingState = FlingIdle
		return
	}
	if s.child.ScrollOffset() != 0 {
		return
	}

	velocity := math.Abs(s.child.FlingVelocity()) / s.config.TransferDamping
	if dy < 0 {
		velocity = -velocity
	}
	s.logger.Debug("list reached its start mid-fling", "velocity", velocity)
	if s.OnNestedPreFling(s.child, velocity) {
		s.child.StopFling()
	}
}

// SetRect implements Primitive. When resize compensation is on, a change in
// height nudges the sheet by the difference.
func (s *ScrollingSheet) SetRect(x, y, width, height int) {
	oldHeight := s.layoutHeight
	s.layoutX, s.layoutY, s.layoutWidth, s.layoutHeight = x, y, width, height
	s.syncBoxRect()

	if s.resizeCompensation && oldHeight != 0 && height != oldHeight {
		s.SmoothScrollTo(s.offsetY + float64(height-oldHeight))
	}
}

// GetRect implements Primitive. It returns the layout rect, not the rect the
// sheet currently covers.
func (s *ScrollingSheet) GetRect() (int, int, int, int) {
	return s.layoutX, s.layoutY, s.layoutWidth, s.layoutHeight
}

// syncBoxRect moves the frame to the translated position.
func (s *ScrollingSheet) syncBoxRect() {
	s.Box.SetRect(s.layoutX, s.layoutY+int(math.Round(s.offsetY)), s.layoutWidth, s.layoutHeight)
}

// Draw draws the sheet frame and the child, translated by the offset and
// clipped to the layout rect.
func (s *ScrollingSheet) Draw(screen tcell.Screen) {
	s.syncBoxRect()
	clipped := newClippedScreen(screen, s.layoutX, s.layoutY, s.layoutWidth, s.layoutHeight)
	s.DrawForSubclass(clipped, s)

	x, y, width, _ := s.Box.GetRect()
	if s.handle != "" && s.GetTitle() == "" && width > 0 {
		PrintStyled(clipped, s.handle, x, y, width, AlignmentCenter, s.handleStyle)
	}

	if s.child != nil {
		innerX, innerY, innerWidth, innerHeight := s.GetInnerRect()
		s.child.SetRect(innerX, innerY, innerWidth, innerHeight)
		s.child.Draw(clipped)
	}
}

// InputHandler handles the sheet's own keys and forwards the rest to the
// child.
func (s *ScrollingSheet) InputHandler(event *tcell.EventKey) Command {
	switch {
	case keybind.Matches(event, s.keybinds.Expand):
		s.SmoothScrollTo(0)
		return RedrawCommand{}
	case keybind.Matches(event, s.keybinds.Collapse):
		s.SmoothScrollTo(s.maxScrollY)
		return RedrawCommand{}
	case keybind.Matches(event, s.keybinds.Toggle):
		s.toggle()
		return RedrawCommand{}
	}
	if s.child != nil {
		return s.child.InputHandler(event)
	}
	return nil
}

func (s *ScrollingSheet) toggle() {
	if s.HasReachedTop() {
		s.SmoothScrollTo(s.maxScrollY)
	} else {
		s.SmoothScrollTo(0)
	}
}

// MouseHandler forwards mouse events inside the visible sheet to the child.
// Clicking the sheet's top row toggles it.
func (s *ScrollingSheet) MouseHandler(action MouseAction, event *tcell.EventMouse) (Primitive, Command) {
	x, y := event.Position()
	if !s.InRect(x, y) || y < s.layoutY || y >= s.layoutY+s.layoutHeight {
		return nil, nil
	}

	_, top, _, _ := s.Box.GetRect()
	if y == top && action == MouseLeftClick {
		s.toggle()
		return nil, RedrawCommand{}
	}

	if s.child != nil {
		capture, cmd := s.child.MouseHandler(action, event)
		if capture != nil || cmd != nil {
			return capture, cmd
		}
	}
	if action == MouseLeftDown {
		return nil, SetFocusCommand{Target: s}
	}
	return nil, nil
}

// Focus implements Primitive. Focus goes to the child when there is one.
func (s *ScrollingSheet) Focus(delegate func(p Primitive)) {
	if s.child != nil && delegate != nil {
		delegate(s.child)
		return
	}
	s.Box.Focus(delegate)
}

// HasFocus implements Primitive.
func (s *ScrollingSheet) HasFocus() bool {
	if s.child != nil && s.child.HasFocus() {
		return true
	}
	return s.Box.HasFocus()
}

var (
	_ Primitive          = &ScrollingSheet{}
	_ NestedScrollParent = &ScrollingSheet{}
)
