package layers

import (
	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/sheetview"
)

// layer represents one layer of a Layers object.
type layer struct {
	name    string              // The layer's name.
	item    sheetview.Primitive // The layer's primitive.
	resize  bool                // Whether or not to resize the layer when it is drawn.
	visible bool                // Whether or not this layer is visible.
	enabled bool                // Whether or not this layer can receive focus/input.
	overlay bool                // Whether this layer applies a background style to layers behind it.
}

// Layers is a container for other primitives laid out on top of each other.
// The layers are drawn from back to front and can optionally apply a
// background style to the layers behind them, e.g. a scrim behind an
// expanded sheet.
type Layers struct {
	*sheetview.Box

	// The contained layers. (Visible) layers are drawn from back to front.
	layers []*layer
	// The style applied to layers behind the active overlay layer.
	backgroundLayerStyle tcell.Style

	// We keep a reference to the function which allows us to set the focus to
	// a newly visible layer.
	setFocus func(p sheetview.Primitive)
	// An optional handler which is called whenever the visibility or the order of
	// layers changes.
	changed func()
}

// Option configures a layer on Add.
type Option func(*layer)

// WithName sets the layer's name.
func WithName(name string) Option {
	return func(l *layer) {
		l.name = name
	}
}

// WithResize sets whether the layer is resized to the container's inner rect.
func WithResize(resize bool) Option {
	return func(l *layer) {
		l.resize = resize
	}
}

// WithVisible sets the initial visibility of the layer.
func WithVisible(visible bool) Option {
	return func(l *layer) {
		l.visible = visible
	}
}

// WithEnabled sets whether the layer can receive focus and input.
func WithEnabled(enabled bool) Option {
	return func(l *layer) {
		l.enabled = enabled
	}
}

// WithOverlay marks this layer as an overlay layer.
func WithOverlay() Option {
	return func(l *layer) {
		l.overlay = true
	}
}

// New returns a new Layers object.
func New() *Layers {
	return &Layers{Box: sheetview.NewBox()}
}

// SetChangedFunc sets a handler which is called whenever the visibility or the
// order of any visible layers changes.
func (l *Layers) SetChangedFunc(handler func()) *Layers {
	l.changed = handler
	return l
}

func (l *Layers) notifyChanged() {
	if l.changed != nil {
		l.changed()
	}
}

// GetLayerCount returns the number of layers currently stored in this object.
func (l *Layers) GetLayerCount() int {
	return len(l.layers)
}

// GetVisible returns whether the given layer is visible.
func (l *Layers) GetVisible(name string) bool {
	if layer := l.find(name); layer != nil {
		return layer.visible
	}
	return false
}

func (l *Layers) find(name string) *layer {
	for _, layer := range l.layers {
		if layer.name == name {
			return layer
		}
	}
	return nil
}

// AddLayer adds a new layer for the given primitive. A layer with the same
// name is replaced.
func (l *Layers) AddLayer(item sheetview.Primitive, opts ...Option) *Layers {
	hasFocus := l.HasFocus()
	newLayer := &layer{
		item:    item,
		visible: true,
		enabled: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(newLayer)
		}
	}
	if newLayer.name != "" {
		for index, layer := range l.layers {
			if layer.name == newLayer.name {
				l.layers = append(l.layers[:index], l.layers[index+1:]...)
				break
			}
		}
	}
	l.layers = append(l.layers, newLayer)
	l.notifyChanged()
	if hasFocus {
		l.Focus(l.setFocus)
	}
	return l
}

// HasLayer returns true if a layer with the given name exists in this object.
func (l *Layers) HasLayer(name string) bool {
	return l.find(name) != nil
}

// ShowLayer sets a layer's visibility to "true".
func (l *Layers) ShowLayer(name string) *Layers {
	return l.setVisible(name, true)
}

// HideLayer sets a layer's visibility to "false".
func (l *Layers) HideLayer(name string) *Layers {
	return l.setVisible(name, false)
}

func (l *Layers) setVisible(name string, visible bool) *Layers {
	if layer := l.find(name); layer != nil && layer.visible != visible {
		layer.visible = visible
		l.notifyChanged()
	}
	if l.HasFocus() {
		l.Focus(l.setFocus)
	}
	return l
}

// GetFrontLayer returns the front-most visible layer. If there are no visible
// layers, ("", nil) is returned.
func (l *Layers) GetFrontLayer() (name string, item sheetview.Primitive) {
	for index := len(l.layers) - 1; index >= 0; index-- {
		if l.layers[index].visible {
			return l.layers[index].name, l.layers[index].item
		}
	}
	return
}

// SetBackgroundLayerStyle sets the style applied to layers behind the active
// overlay layer.
func (l *Layers) SetBackgroundLayerStyle(style tcell.Style) *Layers {
	if l.backgroundLayerStyle != style {
		l.backgroundLayerStyle = style
		l.notifyChanged()
	}
	return l
}

// HasFocus returns whether or not this primitive has focus.
func (l *Layers) HasFocus() bool {
	for _, layer := range l.layers {
		if layer.enabled && layer.item.HasFocus() {
			return true
		}
	}
	return l.Box.HasFocus()
}

// Focus is called by the application when the primitive receives focus.
func (l *Layers) Focus(delegate func(p sheetview.Primitive)) {
	if delegate == nil {
		return // We cannot delegate so we cannot focus.
	}
	l.setFocus = delegate
	if top := l.topVisibleEnabledLayer(); top != nil {
		delegate(top.item)
		return
	}
	l.Box.Focus(delegate)
}

// Draw draws this primitive onto the screen.
func (l *Layers) Draw(screen tcell.Screen) {
	l.DrawForSubclass(screen, l)

	overlayIndex := l.topVisibleEnabledOverlayIndex()
	var ovScreen *overlayScreen
	if overlayIndex >= 0 {
		ovScreen = newOverlayScreen(screen, l.backgroundLayerStyle)
	}
	for index, layer := range l.layers {
		if !layer.visible {
			continue
		}
		layerScreen := screen
		if ovScreen != nil && index < overlayIndex {
			// Only the touched cells of lower layers get styled.
			layerScreen = ovScreen
		}
		if layer.resize {
			x, y, width, height := l.GetInnerRect()
			layer.item.SetRect(x, y, width, height)
		}
		layer.item.Draw(layerScreen)
	}
}

// MouseHandler passes mouse events to the front-most visible layer that takes
// them, but never to layers behind an active overlay layer.
func (l *Layers) MouseHandler(action sheetview.MouseAction, event *tcell.EventMouse) (sheetview.Primitive, sheetview.Command) {
	if !l.InRect(event.Position()) {
		return nil, nil
	}

	overlayIndex := l.topVisibleEnabledOverlayIndex()
	for index := len(l.layers) - 1; index >= 0; index-- {
		layer := l.layers[index]
		if !layer.visible || !layer.enabled {
			continue
		}
		if overlayIndex >= 0 && index < overlayIndex {
			break
		}
		capture, cmd := layer.item.MouseHandler(action, event)
		if capture != nil || cmd != nil {
			return capture, cmd
		}
	}

	// An active overlay blocks input to layers behind it even if the top
	// layer didn't take the event.
	if overlayIndex >= 0 {
		return nil, sheetview.ConsumeEventCommand{}
	}
	return nil, nil
}

// InputHandler forwards key events to the focused layer.
func (l *Layers) InputHandler(event *tcell.EventKey) sheetview.Command {
	for _, layer := range l.layers {
		if layer.enabled && layer.item.HasFocus() {
			return layer.item.InputHandler(event)
		}
	}
	return nil
}

func (l *Layers) topVisibleEnabledLayer() *layer {
	for index := len(l.layers) - 1; index >= 0; index-- {
		layer := l.layers[index]
		if layer.visible && layer.enabled {
			return layer
		}
	}
	return nil
}

// topVisibleEnabledOverlayIndex returns the index of the top-most overlay
// layer that is both visible and enabled, or -1.
func (l *Layers) topVisibleEnabledOverlayIndex() int {
	for index := len(l.layers) - 1; index >= 0; index-- {
		layer := l.layers[index]
		if layer.visible && layer.enabled && layer.overlay {
			return index
		}
	}
	return -1
}

type overlayScreen struct {
	tcell.Screen
	overlay tcell.Style
}

func newOverlayScreen(screen tcell.Screen, overlay tcell.Style) *overlayScreen {
	return &overlayScreen{
		Screen:  screen,
		overlay: overlay,
	}
}

func (s *overlayScreen) SetContent(x int, y int, primary rune, combining []rune, style tcell.Style) {
	s.Screen.SetContent(x, y, primary, combining, applyBackgroundStyle(style, s.overlay))
}

// applyBackgroundStyle sets the overlay's explicit colors on base and adds its
// attributes. Attributes already on base are kept.
func applyBackgroundStyle(base tcell.Style, overlay tcell.Style) tcell.Style {
	overlayFg, overlayBg, overlayAttrs := overlay.Decompose()
	_, _, baseAttrs := base.Decompose()

	if overlayFg != tcell.ColorDefault {
		base = base.Foreground(overlayFg)
	}
	if overlayBg != tcell.ColorDefault {
		base = base.Background(overlayBg)
	}
	return base.Attributes(baseAttrs | overlayAttrs)
}
