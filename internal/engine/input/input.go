// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventDrag
	EventWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	// DX and DY hold the drag motion or wheel delta.
	DX float32
	DY float32
}

// Input handles all input processing.
type Input struct {
	events   []Event
	dragging bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				i.events = append(i.events, Event{
					Type: EventDrag,
					DX:   float32(e.XRel),
					DY:   float32(e.YRel),
				})
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type: EventWheel,
				DY:   float32(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
