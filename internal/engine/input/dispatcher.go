package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Dispatcher routes events to handlers bound at registration time.
// Handlers are closures over whatever state they act on, so no global
// instance is needed to reach it from an event.
type Dispatcher struct {
	keys map[sdl.Scancode]func()
	held map[sdl.Scancode]bool

	dragButton uint8
	dragging   bool

	onDrag      func(dx, dy float32)
	onDragState func(active bool)
	onWheel     func(delta float32)
	onResize    func(width, height int)
	onQuit      func()
}

// NewDispatcher creates a dispatcher that treats the given mouse button as
// the drag button.
func NewDispatcher(dragButton uint8) *Dispatcher {
	return &Dispatcher{
		keys:       make(map[sdl.Scancode]func()),
		held:       make(map[sdl.Scancode]bool),
		dragButton: dragButton,
	}
}

// OnKey binds fn to the press of key. Auto-repeat presses are ignored.
func (d *Dispatcher) OnKey(key sdl.Scancode, fn func()) {
	d.keys[key] = fn
}

// OnDrag binds fn to mouse motion while the drag button is down.
func (d *Dispatcher) OnDrag(fn func(dx, dy float32)) {
	d.onDrag = fn
}

// OnDragState binds fn to the start and end of a drag.
func (d *Dispatcher) OnDragState(fn func(active bool)) {
	d.onDragState = fn
}

// OnWheel binds fn to mouse wheel movement.
func (d *Dispatcher) OnWheel(fn func(delta float32)) {
	d.onWheel = fn
}

// OnResize binds fn to window size changes.
func (d *Dispatcher) OnResize(fn func(width, height int)) {
	d.onResize = fn
}

// OnQuit binds fn to quit requests.
func (d *Dispatcher) OnQuit(fn func()) {
	d.onQuit = fn
}

// Held reports whether key is currently down.
func (d *Dispatcher) Held(key sdl.Scancode) bool {
	return d.held[key]
}

// Dragging reports whether a drag is in progress.
func (d *Dispatcher) Dragging() bool {
	return d.dragging
}

// Dispatch delivers events in order.
func (d *Dispatcher) Dispatch(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventQuit:
			if d.onQuit != nil {
				d.onQuit()
			}
		case EventWindowResize:
			if d.onResize != nil {
				d.onResize(e.Width, e.Height)
			}
		case EventKeyDown:
			d.held[e.Key] = true
			if e.Repeat {
				continue
			}
			if fn, ok := d.keys[e.Key]; ok {
				fn()
			}
		case EventKeyUp:
			delete(d.held, e.Key)
		case EventMouseDown:
			if e.Button == d.dragButton {
				d.setDragging(true)
			}
		case EventMouseUp:
			if e.Button == d.dragButton {
				d.setDragging(false)
			}
		case EventMouseMove:
			if d.dragging && d.onDrag != nil {
				d.onDrag(float32(e.DX), float32(e.DY))
			}
		case EventMouseWheel:
			if d.onWheel != nil {
				d.onWheel(e.Wheel)
			}
		}
	}
}

func (d *Dispatcher) setDragging(active bool) {
	if d.dragging == active {
		return
	}
	d.dragging = active
	if d.onDragState != nil {
		d.onDragState(active)
	}
}
