// Package display puts frames in front of the user and turns what they do
// back into key code events.
package display

import (
	"context"
	"errors"
	"image"

	"github.com/atomicstack/runstrip/internal/input"
)

// ErrClosed is returned by a surface that has been closed or whose event
// source has ended.
var ErrClosed = errors.New("display surface closed")

// EventKind tags an Event.
type EventKind int

const (
	EventRedraw EventKind = iota
	EventResize
	EventKeyDown
	EventKeyUp
	EventFocusLost
)

var eventNames = map[EventKind]string{
	EventRedraw:    "redraw",
	EventResize:    "resize",
	EventKeyDown:   "key-down",
	EventKeyUp:     "key-up",
	EventFocusLost: "focus-lost",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one thing that happened on a surface. Width and Height are set
// for resizes, Code and Mods for key events.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
	Code   uint8
	Mods   input.Modifiers
}

// Redraw asks for the current frame to be drawn again.
func Redraw() Event { return Event{Kind: EventRedraw} }

// Resize reports a new drawable size in pixels.
func Resize(w, h int) Event { return Event{Kind: EventResize, Width: w, Height: h} }

// KeyDown reports a key press.
func KeyDown(code uint8, mods input.Modifiers) Event {
	return Event{Kind: EventKeyDown, Code: code, Mods: mods}
}

// KeyUp reports a key release.
func KeyUp(code uint8) Event { return Event{Kind: EventKeyUp, Code: code} }

// FocusLost reports that the surface no longer has keyboard focus.
func FocusLost() Event { return Event{Kind: EventFocusLost} }

// Surface is a place frames are shown.
type Surface interface {
	PollEvent(ctx context.Context) (Event, error)
	Present(frame *image.RGBA) error
	Size() (w, h int)
	Hide() error
	Close() error
}
