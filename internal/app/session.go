package app

import (
	"context"
	"errors"
	"time"

	"github.com/atomicstack/runstrip/internal/display"
	"github.com/atomicstack/runstrip/internal/frequency"
	"github.com/atomicstack/runstrip/internal/input"
	"github.com/atomicstack/runstrip/internal/launcher"
	"github.com/atomicstack/runstrip/internal/logging"
	"github.com/atomicstack/runstrip/internal/logging/events"
	"github.com/atomicstack/runstrip/internal/match"
	"github.com/atomicstack/runstrip/internal/render"
	"github.com/atomicstack/runstrip/internal/ui/state"
)

// ExitReason says why a session ended.
type ExitReason string

const (
	ExitQuit      ExitReason = "quit"
	ExitLaunched  ExitReason = "launched"
	ExitFocusLost ExitReason = "focus-lost"
	ExitSignal    ExitReason = "signal"
)

// Launcher starts a command line.
type Launcher interface {
	Launch(input string) (launcher.Result, error)
}

// SessionOptions wires a Session together.
type SessionOptions struct {
	Surface  display.Surface
	Renderer *render.Renderer
	Store    *frequency.Store
	Launcher Launcher
	Catalog  []string
	// Delay is how long to linger after a launch that asks for it.
	Delay time.Duration
	Sleep func(time.Duration)
}

// Session owns all interactive state. It is driven from one goroutine.
type Session struct {
	surface   display.Surface
	renderer  *render.Renderer
	store     *frequency.Store
	launcher  Launcher
	catalog   []string
	delay     time.Duration
	sleep     func(time.Duration)
	selection *state.Selection
	decoder   input.Decoder
	width     int
	height    int
}

// NewSession builds a session and ranks the catalog against the empty query.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		surface:  opts.Surface,
		renderer: opts.Renderer,
		store:    opts.Store,
		launcher: opts.Launcher,
		catalog:  opts.Catalog,
		delay:    opts.Delay,
		sleep:    opts.Sleep,
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	s.width, s.height = s.surface.Size()
	s.selection = state.NewSelection(s.renderer.Strip(s.width), s.store)
	s.recompute()
	return s
}

// Selection exposes the state machine for inspection.
func (s *Session) Selection() *state.Selection {
	return s.selection
}

// Run handles surface events until the session ends. Only surface failures
// are returned; everything that goes wrong while handling a key is logged.
func (s *Session) Run(ctx context.Context) (ExitReason, error) {
	if err := s.redraw(); err != nil {
		return "", err
	}
	for {
		ev, err := s.surface.PollEvent(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ExitSignal, nil
			}
			return "", err
		}
		switch ev.Kind {
		case display.EventResize:
			s.resize(ev.Width, ev.Height)
		case display.EventRedraw:
		case display.EventKeyUp:
			s.decoder.KeyUp(ev.Code)
			continue
		case display.EventFocusLost:
			return ExitFocusLost, nil
		case display.EventKeyDown:
			action := s.decoder.KeyDown(ev.Code, ev.Mods)
			if action.Key == input.KeyNone {
				continue
			}
			if reason, done := s.apply(action); done {
				return reason, nil
			}
		default:
			continue
		}
		if err := s.redraw(); err != nil {
			return "", err
		}
	}
}

func (s *Session) apply(action input.Action) (ExitReason, bool) {
	before := s.selection.Mode
	effect := s.selection.Apply(action)
	switch effect.Kind {
	case state.EffectQueryChanged:
		s.recompute()
	case state.EffectDelete:
		s.store.Remove(effect.Name)
		events.Frequency.Remove(effect.Name)
		s.save()
		s.recompute()
	case state.EffectLaunch:
		if s.launch(effect.Command) {
			return ExitLaunched, true
		}
	case state.EffectQuit:
		return ExitQuit, true
	}
	sel := s.selection
	if sel.Mode == state.ModeConfirmDelete && before != state.ModeConfirmDelete {
		events.Selection.ConfirmDelete(sel.PendingDelete)
	}
	events.Selection.Move(sel.Mode.String(), sel.Selected, sel.ScrollOffset, sel.LastVisible)
	return "", false
}

// launch reports whether the session should end.
func (s *Session) launch(command string) bool {
	res, err := s.launcher.Launch(command)
	if err != nil {
		events.Launch.Error(err)
		logging.Error(err)
		return false
	}
	s.store.Increment(res.Command)
	s.save()
	if res.NeedsDelay {
		if err := s.surface.Hide(); err != nil {
			logging.Error(err)
		}
		s.sleep(s.delay)
	}
	return true
}

func (s *Session) save() {
	err := s.store.Save()
	events.Frequency.Save(s.store.Path(), s.store.Len(), err)
	if err != nil {
		logging.Error(err)
	}
}

func (s *Session) recompute() {
	results := match.Filter(s.catalog, s.selection.Query, s.store)
	s.selection.SetResults(results)
	events.Query.Edit(s.selection.Query, s.selection.Caret, len(results))
}

func (s *Session) resize(w, h int) {
	s.width, s.height = w, h
	s.selection.SetPager(s.renderer.Strip(w))
}

func (s *Session) redraw() error {
	if s.width <= 0 || s.height <= 0 {
		return nil
	}
	sel := s.selection
	frame, _ := s.renderer.Render(render.View{
		Query:         sel.Query,
		Caret:         sel.Caret,
		Results:       sel.Results,
		Selected:      sel.Selected,
		ScrollOffset:  sel.ScrollOffset,
		PendingDelete: sel.PendingDelete,
	}, s.width, s.height)
	return s.surface.Present(frame)
}
