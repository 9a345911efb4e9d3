package state

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/atomicstack/runstrip/internal/input"
	"github.com/atomicstack/runstrip/internal/match"
)

type freqMap map[string]uint32

func (f freqMap) Get(name string) uint32 { return f[name] }

// fixedPager fits perPage names on every page.
func fixedPager(perPage int) Pager {
	return PagerFunc(func(names []string, start int) int {
		return start + perPage - 1
	})
}

// widthPager fits names while the sum of their lengths stays within limit.
func widthPager(limit int) Pager {
	return PagerFunc(func(names []string, start int) int {
		used := 0
		end := start
		for i := start; i < len(names); i++ {
			used += len(names[i])
			if used > limit && i > start {
				break
			}
			end = i
		}
		return end
	})
}

func results(names ...string) []match.Result {
	out := make([]match.Result, len(names))
	for i, n := range names {
		out[i] = match.Result{Name: n}
	}
	return out
}

func numbered(n int) []match.Result {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("cmd%02d", i)
	}
	return results(names...)
}

func newTestSelection(pager Pager, res []match.Result) *Selection {
	s := NewSelection(pager, freqMap{})
	s.SetResults(res)
	return s
}

func press(s *Selection, keys ...input.Key) {
	for _, k := range keys {
		s.Apply(input.Action{Key: k})
	}
}

func TestRightEntersBrowsingAtSecondResult(t *testing.T) {
	s := newTestSelection(fixedPager(5), numbered(3))
	press(s, input.KeyRight)
	if s.Mode != ModeBrowsing || s.Selected != 1 {
		t.Fatalf("expected browsing at 1, got %s at %d", s.Mode, s.Selected)
	}
}

func TestRightWithSingleResultStaysEditing(t *testing.T) {
	s := newTestSelection(fixedPager(5), numbered(1))
	press(s, input.KeyRight)
	if s.Mode != ModeEditing {
		t.Fatalf("expected editing, got %s", s.Mode)
	}
}

func TestRightMovesCaretUntilEnd(t *testing.T) {
	s := newTestSelection(fixedPager(5), numbered(4))
	s.Apply(input.RuneAction('a'))
	s.Apply(input.RuneAction('b'))
	press(s, input.KeyLeft, input.KeyLeft)
	if s.Caret != 0 {
		t.Fatalf("expected caret 0, got %d", s.Caret)
	}
	press(s, input.KeyLeft)
	if s.Caret != 0 {
		t.Fatalf("expected caret clamped at 0, got %d", s.Caret)
	}
	press(s, input.KeyRight)
	if s.Mode != ModeEditing || s.Caret != 1 {
		t.Fatalf("expected caret move to 1 in editing, got %s/%d", s.Mode, s.Caret)
	}
	press(s, input.KeyRight, input.KeyRight)
	if s.Mode != ModeBrowsing {
		t.Fatalf("expected browsing once caret at end, got %s", s.Mode)
	}
}

func TestRightAdvancesOnePage(t *testing.T) {
	s := newTestSelection(fixedPager(5), numbered(12))
	press(s, input.KeyRight, input.KeyRight, input.KeyRight, input.KeyRight)
	if s.Selected != s.LastVisible || s.LastVisible != 4 {
		t.Fatalf("expected selected at last visible 4, got %d/%d", s.Selected, s.LastVisible)
	}
	if s.PageSize != 5 {
		t.Fatalf("expected page of 5, got %d", s.PageSize)
	}
	press(s, input.KeyRight)
	if s.ScrollOffset != 5 || s.Selected != 5 {
		t.Fatalf("expected scroll 5 and selected 5, got %d/%d", s.ScrollOffset, s.Selected)
	}
}

func TestRightStopsAtLastResult(t *testing.T) {
	s := newTestSelection(fixedPager(5), numbered(7))
	for i := 0; i < 20; i++ {
		press(s, input.KeyRight)
	}
	if s.Selected != 6 || s.ScrollOffset != 5 || s.LastVisible != 6 {
		t.Fatalf("expected to rest on last result, got sel=%d scroll=%d last=%d", s.Selected, s.ScrollOffset, s.LastVisible)
	}
}

func TestLeftRewalksPagesFromStart(t *testing.T) {
	// Names of uneven width so page boundaries are content dependent.
	res := results("aaaa", "b", "c", "dddd", "e", "ffff", "g", "h")
	s := newTestSelection(widthPager(6), res)
	// Pages: [0 1 2] [3 4] [5 6 7]
	for i := 0; i < 5; i++ {
		press(s, input.KeyRight)
	}
	if s.Selected != 5 || s.ScrollOffset != 5 {
		t.Fatalf("expected sel 5 scroll 5, got %d/%d", s.Selected, s.ScrollOffset)
	}
	press(s, input.KeyLeft)
	if s.Selected != 4 || s.ScrollOffset != 3 || s.LastVisible != 4 {
		t.Fatalf("expected page [3 4], got sel=%d scroll=%d last=%d", s.Selected, s.ScrollOffset, s.LastVisible)
	}
	press(s, input.KeyLeft, input.KeyLeft)
	if s.Selected != 2 || s.ScrollOffset != 0 {
		t.Fatalf("expected back on first page, got sel=%d scroll=%d", s.Selected, s.ScrollOffset)
	}
	press(s, input.KeyLeft, input.KeyLeft)
	if s.Mode != ModeEditing || s.Selected != 0 || s.ScrollOffset != 0 {
		t.Fatalf("expected editing reset, got %s sel=%d scroll=%d", s.Mode, s.Selected, s.ScrollOffset)
	}
}

func TestOverflowingNameGetsItsOwnPage(t *testing.T) {
	res := results("a-very-long-name", "b", "c")
	s := newTestSelection(widthPager(4), res)
	if s.LastVisible != 0 || s.PageSize != 1 {
		t.Fatalf("expected overflowing first page of one, got last=%d size=%d", s.LastVisible, s.PageSize)
	}
	press(s, input.KeyRight)
	if s.Selected != 1 || s.ScrollOffset != 1 {
		t.Fatalf("expected browsing to scroll to keep selection visible, got sel=%d scroll=%d", s.Selected, s.ScrollOffset)
	}
}

func TestEditResetsBrowsing(t *testing.T) {
	s := newTestSelection(fixedPager(2), numbered(8))
	press(s, input.KeyRight, input.KeyRight, input.KeyRight)
	if s.Mode != ModeBrowsing || s.ScrollOffset == 0 {
		t.Fatalf("expected scrolled browsing, got %s scroll=%d", s.Mode, s.ScrollOffset)
	}
	eff := s.Apply(input.RuneAction('x'))
	if eff.Kind != EffectQueryChanged {
		t.Fatalf("expected query change, got %v", eff.Kind)
	}
	if s.Mode != ModeEditing || s.Selected != 0 || s.ScrollOffset != 0 || s.Query != "x" {
		t.Fatalf("expected reset editing state, got %s sel=%d scroll=%d query=%q", s.Mode, s.Selected, s.ScrollOffset, s.Query)
	}

	press(s, input.KeyRight)
	if eff := s.Apply(input.Action{Key: input.KeyBackspace}); eff.Kind != EffectQueryChanged {
		t.Fatalf("expected backspace to change query, got %v", eff.Kind)
	}
	if s.Query != "" || s.Mode != ModeEditing {
		t.Fatalf("expected empty query in editing, got %q %s", s.Query, s.Mode)
	}
	if eff := s.Apply(input.Action{Key: input.KeyBackspace}); eff.Kind != EffectNone {
		t.Fatalf("expected no-op backspace on empty query, got %v", eff.Kind)
	}
}

func TestInsertAtCaret(t *testing.T) {
	s := newTestSelection(nil, nil)
	for _, r := range "ab" {
		s.Apply(input.RuneAction(r))
	}
	press(s, input.KeyLeft)
	s.Apply(input.RuneAction('é'))
	if s.Query != "aéb" || s.Caret != 2 {
		t.Fatalf("expected aéb with caret 2, got %q/%d", s.Query, s.Caret)
	}
	press(s, input.KeyBackspace)
	if s.Query != "ab" || s.Caret != 1 {
		t.Fatalf("expected ab with caret 1, got %q/%d", s.Query, s.Caret)
	}
}

func TestTabCompletesSelectedName(t *testing.T) {
	s := newTestSelection(fixedPager(5), results("firefox", "file-manager"))
	s.Apply(input.RuneAction('f'))
	s.SetResults(results("firefox", "file-manager"))
	press(s, input.KeyRight)
	eff := s.Apply(input.Action{Key: input.KeyTab})
	if eff.Kind != EffectQueryChanged {
		t.Fatalf("expected query change, got %v", eff.Kind)
	}
	if s.Query != "file-manager" || s.Caret != len("file-manager") || s.Mode != ModeEditing {
		t.Fatalf("expected completed query, got %q/%d/%s", s.Query, s.Caret, s.Mode)
	}

	empty := newTestSelection(nil, nil)
	if eff := empty.Apply(input.Action{Key: input.KeyTab}); eff.Kind != EffectNone {
		t.Fatalf("expected tab without results to do nothing, got %v", eff.Kind)
	}
}

func TestEnterLaunches(t *testing.T) {
	s := newTestSelection(fixedPager(5), results("vim", "vimdiff"))
	press(s, input.KeyRight)
	eff := s.Apply(input.Action{Key: input.KeyEnter})
	if eff.Kind != EffectLaunch || eff.Command != "vimdiff" {
		t.Fatalf("expected launch of vimdiff, got %#v", eff)
	}

	raw := newTestSelection(nil, nil)
	for _, r := range "echo hi" {
		raw.Apply(input.RuneAction(r))
	}
	eff = raw.Apply(input.Action{Key: input.KeyEnter})
	if eff.Kind != EffectLaunch || eff.Command != "echo hi" {
		t.Fatalf("expected raw query launch, got %#v", eff)
	}

	blank := newTestSelection(nil, nil)
	blank.Apply(input.RuneAction(' '))
	if eff := blank.Apply(input.Action{Key: input.KeyEnter}); eff.Kind != EffectQuit {
		t.Fatalf("expected blank enter to quit, got %#v", eff)
	}
}

func TestEscapeQuits(t *testing.T) {
	s := newTestSelection(nil, numbered(2))
	if eff := s.Apply(input.Action{Key: input.KeyEscape}); eff.Kind != EffectQuit {
		t.Fatalf("expected quit, got %#v", eff)
	}
}

func TestDeleteRequiresFrequency(t *testing.T) {
	s := NewSelection(fixedPager(5), freqMap{"vim": 3})
	s.SetResults(results("ls", "vim"))
	press(s, input.KeyDelete)
	if s.Mode != ModeEditing {
		t.Fatalf("expected delete of unlaunched name to be ignored, got %s", s.Mode)
	}
	press(s, input.KeyRight, input.KeyDelete)
	if s.Mode != ModeConfirmDelete || s.PendingDelete != "vim" {
		t.Fatalf("expected confirm for vim, got %s %q", s.Mode, s.PendingDelete)
	}

	// Other keys are swallowed while confirming.
	if eff := s.Apply(input.RuneAction('x')); eff.Kind != EffectNone || s.Query != "" {
		t.Fatalf("expected ignored key, got %#v query=%q", eff, s.Query)
	}
	if eff := s.Apply(input.Action{Key: input.KeyLeft}); eff.Kind != EffectNone || s.Mode != ModeConfirmDelete {
		t.Fatalf("expected navigation ignored while confirming")
	}

	s.Apply(input.RuneAction('n'))
	if s.Mode != ModeBrowsing || s.Selected != 1 || s.PendingDelete != "" {
		t.Fatalf("expected cancel back to browsing at 1, got %s %d %q", s.Mode, s.Selected, s.PendingDelete)
	}

	press(s, input.KeyDelete)
	eff := s.Apply(input.RuneAction('Y'))
	if eff.Kind != EffectDelete || eff.Name != "vim" {
		t.Fatalf("expected delete of vim, got %#v", eff)
	}
	if s.Mode != ModeEditing || s.Selected != 0 {
		t.Fatalf("expected editing after delete, got %s %d", s.Mode, s.Selected)
	}
}

func TestConfirmDeleteWithEnterAndEscape(t *testing.T) {
	s := NewSelection(nil, freqMap{"vim": 1})
	s.SetResults(results("vim"))
	press(s, input.KeyDelete, input.KeyEscape)
	if s.Mode != ModeEditing {
		t.Fatalf("expected escape to cancel to editing, got %s", s.Mode)
	}
	press(s, input.KeyDelete)
	if eff := s.Apply(input.Action{Key: input.KeyEnter}); eff.Kind != EffectDelete || eff.Name != "vim" {
		t.Fatalf("expected enter to confirm, got %#v", eff)
	}
}

func TestSetResultsClampsSelection(t *testing.T) {
	s := newTestSelection(fixedPager(3), numbered(9))
	for i := 0; i < 7; i++ {
		press(s, input.KeyRight)
	}
	s.SetResults(numbered(2))
	if s.Selected != 1 || s.ScrollOffset > s.Selected || s.Selected > s.LastVisible {
		t.Fatalf("expected clamped selection, got sel=%d scroll=%d last=%d", s.Selected, s.ScrollOffset, s.LastVisible)
	}
	s.SetResults(nil)
	if s.Mode != ModeEditing || s.Selected != 0 || s.PageSize != 0 {
		t.Fatalf("expected empty results to force editing, got %s sel=%d size=%d", s.Mode, s.Selected, s.PageSize)
	}
}

func TestPaginationInvariantUnderRandomNavigation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(30)
		names := make([]string, n)
		for i := range names {
			names[i] = string(make([]byte, 1+rng.Intn(8)))
		}
		s := newTestSelection(widthPager(4+rng.Intn(16)), results(names...))
		for step := 0; step < 60; step++ {
			key := input.KeyRight
			if rng.Intn(3) == 0 {
				key = input.KeyLeft
			}
			press(s, key)
			if s.Mode != ModeBrowsing {
				continue
			}
			if !(s.ScrollOffset <= s.Selected && s.Selected <= s.LastVisible) {
				t.Fatalf("trial %d step %d: broken invariant scroll=%d sel=%d last=%d", trial, step, s.ScrollOffset, s.Selected, s.LastVisible)
			}
			if s.Selected < 0 || s.Selected >= n {
				t.Fatalf("trial %d: selection %d out of range %d", trial, s.Selected, n)
			}
		}
	}
}
