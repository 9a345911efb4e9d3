package display

import (
	"context"
	"image"
	"sync"
)

// Headless replays scripted events and records what was presented.
type Headless struct {
	mu     sync.Mutex
	events chan Event
	frames []*image.RGBA
	hides  int
	width  int
	height int
	ended  bool
	closed bool
}

// NewHeadless returns a surface of the given pixel size that will deliver
// events in order and then report ErrClosed.
func NewHeadless(w, h int, events ...Event) *Headless {
	ch := make(chan Event, len(events)+64)
	for _, ev := range events {
		ch <- ev
	}
	return &Headless{events: ch, width: w, height: h}
}

// Push adds events after the scripted ones.
func (s *Headless) Push(events ...Event) {
	for _, ev := range events {
		s.events <- ev
	}
}

// End makes PollEvent report ErrClosed once queued events are drained.
func (s *Headless) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	close(s.events)
}

func (s *Headless) PollEvent(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return Event{}, ErrClosed
		}
		if ev.Kind == EventResize {
			s.mu.Lock()
			s.width, s.height = ev.Width, ev.Height
			s.mu.Unlock()
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (s *Headless) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *Headless) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Headless) Hide() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hides++
	return nil
}

func (s *Headless) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns every presented frame in order.
func (s *Headless) Frames() []*image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*image.RGBA(nil), s.frames...)
}

// LastFrame returns the most recent frame or nil.
func (s *Headless) LastFrame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Hides reports how many times the surface was hidden.
func (s *Headless) Hides() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hides
}

// Closed reports whether Close was called.
func (s *Headless) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
