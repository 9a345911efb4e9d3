// Package state holds the launcher session state machine: the query being
// edited, the browsing cursor in the result strip, and the delete
// confirmation sub-state.
package state

import (
	"strings"

	"github.com/atomicstack/runstrip/internal/input"
	"github.com/atomicstack/runstrip/internal/match"
)

// Mode says where the cursor lives.
type Mode int

const (
	ModeEditing Mode = iota
	ModeBrowsing
	ModeConfirmDelete
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeBrowsing:
		return "browsing"
	case ModeConfirmDelete:
		return "confirm-delete"
	}
	return "unknown"
}

// EffectKind tells the session loop what to do after a transition.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectQueryChanged
	EffectLaunch
	EffectDelete
	EffectQuit
)

// Effect is the outcome of one Apply. Command is set for EffectLaunch and
// Name for EffectDelete.
type Effect struct {
	Kind    EffectKind
	Command string
	Name    string
}

// Frequencies reports launch counts; only nonzero entries can be deleted.
type Frequencies interface {
	Get(name string) uint32
}

// Selection is the session state. Fields are exported for rendering and
// tests; mutate it only through Apply and SetResults.
type Selection struct {
	Query         string
	Caret         int
	Mode          Mode
	PendingDelete string
	Selected      int
	ScrollOffset  int
	LastVisible   int
	PageSize      int
	Results       []match.Result

	priorMode Mode
	names     []string
	pager     Pager
	freq      Frequencies
}

// NewSelection returns a selection in the editing state.
func NewSelection(pager Pager, freq Frequencies) *Selection {
	return &Selection{pager: pager, freq: freq}
}

// SetPager swaps the page geometry, for example after a resize.
func (s *Selection) SetPager(p Pager) {
	s.pager = p
	s.reflow()
}

// SetResults installs a freshly ranked result list.
func (s *Selection) SetResults(results []match.Result) {
	s.Results = results
	s.names = make([]string, len(results))
	for i, r := range results {
		s.names[i] = r.Name
	}
	if len(results) == 0 && s.Mode == ModeConfirmDelete {
		s.Mode = ModeEditing
		s.PendingDelete = ""
	}
	s.reflow()
}

// Names returns the names of the current results in rank order.
func (s *Selection) Names() []string {
	return s.names
}

// Current returns the selected result, if any.
func (s *Selection) Current() (match.Result, bool) {
	if len(s.Results) == 0 || s.Selected < 0 || s.Selected >= len(s.Results) {
		return match.Result{}, false
	}
	return s.Results[s.Selected], true
}

// Apply performs one transition.
func (s *Selection) Apply(action input.Action) Effect {
	var effect Effect
	if s.Mode == ModeConfirmDelete {
		effect = s.applyConfirm(action)
	} else {
		effect = s.applyNormal(action)
	}
	s.reflow()
	return effect
}

func (s *Selection) applyConfirm(action input.Action) Effect {
	switch {
	case action.Key == input.KeyEnter,
		action.Key == input.KeyRune && (action.Rune == 'y' || action.Rune == 'Y'):
		name := s.PendingDelete
		s.PendingDelete = ""
		s.resetToEditing()
		return Effect{Kind: EffectDelete, Name: name}
	case action.Key == input.KeyEscape,
		action.Key == input.KeyRune && (action.Rune == 'n' || action.Rune == 'N'):
		s.PendingDelete = ""
		s.Mode = s.priorMode
	}
	return Effect{}
}

func (s *Selection) applyNormal(action input.Action) Effect {
	switch action.Key {
	case input.KeyRune:
		s.insertText(string(action.Rune))
		s.resetToEditing()
		return Effect{Kind: EffectQueryChanged}
	case input.KeyBackspace:
		changed := s.deleteRuneBackward()
		s.resetToEditing()
		if changed {
			return Effect{Kind: EffectQueryChanged}
		}
	case input.KeyLeft:
		s.left()
	case input.KeyRight:
		s.right()
	case input.KeyTab:
		if cur, ok := s.Current(); ok {
			s.setQuery(cur.Name, len([]rune(cur.Name)))
			s.resetToEditing()
			return Effect{Kind: EffectQueryChanged}
		}
	case input.KeyDelete:
		if cur, ok := s.Current(); ok && s.freq != nil && s.freq.Get(cur.Name) > 0 {
			s.priorMode = s.Mode
			s.Mode = ModeConfirmDelete
			s.PendingDelete = cur.Name
		}
	case input.KeyEnter:
		if cur, ok := s.Current(); ok {
			return Effect{Kind: EffectLaunch, Command: cur.Name}
		}
		if strings.TrimSpace(s.Query) != "" {
			return Effect{Kind: EffectLaunch, Command: s.Query}
		}
		return Effect{Kind: EffectQuit}
	case input.KeyEscape:
		return Effect{Kind: EffectQuit}
	}
	return Effect{}
}

func (s *Selection) left() {
	if s.Mode != ModeBrowsing {
		s.moveCaretBackward()
		return
	}
	if s.Selected <= 1 {
		s.resetToEditing()
		return
	}
	s.Selected--
	if s.Selected < s.ScrollOffset {
		s.ScrollOffset = s.pageStartFor(s.Selected)
	}
}

func (s *Selection) right() {
	if s.Mode != ModeBrowsing {
		if s.CaretAtEnd() && len(s.Results) > 1 {
			s.Mode = ModeBrowsing
			s.Selected = 1
			return
		}
		s.moveCaretForward()
		return
	}
	if s.Selected < s.LastVisible {
		s.Selected++
		return
	}
	if s.LastVisible+1 < len(s.Results) {
		s.ScrollOffset = s.LastVisible + 1
		s.Selected = s.ScrollOffset
	}
}

func (s *Selection) resetToEditing() {
	s.Mode = ModeEditing
	s.Selected = 0
	s.ScrollOffset = 0
}
