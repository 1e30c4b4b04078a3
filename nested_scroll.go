package sheetview

// Direction is a vertical scroll direction in content terms.
type Direction int

const (
	// DirectionUp moves toward the first row of the content. The pointer is
	// being pulled downwards.
	DirectionUp Direction = -1
	// DirectionDown moves toward the last row of the content. The pointer is
	// being pushed upwards.
	DirectionDown Direction = 1
)

// Scroll deltas passed through the nested scrolling protocol are measured in
// rows. A positive delta means the content wants to scroll down (toward its
// end); a parent sheet receiving it moves toward its expanded position.

// NestedScrollParent is implemented by containers that want to intercept the
// scroll gestures of a nested scrollable child.
//
// For one gesture the child calls OnStartNestedScroll once, then
// OnNestedPreScroll zero or more times, and optionally OnNestedPreFling when
// the gesture ends with a velocity.
type NestedScrollParent interface {
	// OnStartNestedScroll reports whether the parent takes part in the gesture
	// that is starting.
	OnStartNestedScroll(child NestedScrollChild) bool
	// OnNestedPreScroll offers dy to the parent before the child scrolls. The
	// returned amount was consumed by the parent; the child scrolls the rest.
	// A consumed amount of 0 means the child handles the whole delta.
	OnNestedPreScroll(child NestedScrollChild, dy float64) (consumed float64)
	// OnNestedPreFling offers a fling to the parent before the child flings.
	// It returns true when the parent claimed the fling.
	OnNestedPreFling(child NestedScrollChild, velocity float64) bool
}

// NestedScrollChild is a scrollable primitive that can be wrapped by a
// NestedScrollParent.
type NestedScrollChild interface {
	Primitive

	// CanScrollVertically reports whether the content has room left to scroll
	// in the given direction.
	CanScrollVertically(dir Direction) bool
	// ScrollOffset returns the number of rows scrolled past the content start.
	ScrollOffset() int

	// AddScrollListener subscribes to scroll position changes. The listener
	// receives the delta that was just applied.
	AddScrollListener(listener func(dy float64)) ScrollListener
	// RemoveScrollListener unsubscribes a listener returned by
	// AddScrollListener.
	RemoveScrollListener(handle ScrollListener)

	// Fling starts a ballistic scroll with the given velocity, in rows per
	// second. It returns false when the velocity is too small to fling.
	Fling(velocity float64) bool
	// StopFling terminates a running fling.
	StopFling()
	// IsFlinging reports whether the child's own fling is running.
	IsFlinging() bool
	// FlingVelocity returns the current velocity of the child's own fling.
	FlingVelocity() float64

	// SetOverScrollEnabled toggles the edge effect shown when the content is
	// pulled past its bounds.
	SetOverScrollEnabled(enabled bool)
	// SetNestedScrollParent sets the parent that is offered scroll gestures
	// before the child consumes them.
	SetNestedScrollParent(parent NestedScrollParent)
}

// ScrollListener is a handle identifying one registered scroll listener.
type ScrollListener = *scrollListenerEntry

type scrollListenerEntry struct {
	fn func(dy float64)
}

// scrollListeners is an ordered listener set. Notification iterates over a
// snapshot so listeners may add or remove listeners while being called.
type scrollListeners struct {
	entries []*scrollListenerEntry
}

func (l *scrollListeners) add(fn func(dy float64)) *scrollListenerEntry {
	entry := &scrollListenerEntry{fn: fn}
	l.entries = append(l.entries, entry)
	return entry
}

func (l *scrollListeners) remove(entry *scrollListenerEntry) {
	for i, e := range l.entries {
		if e == entry {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *scrollListeners) notify(dy float64) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := make([]*scrollListenerEntry, len(l.entries))
	copy(snapshot, l.entries)
	for _, entry := range snapshot {
		entry.fn(dy)
	}
}
