package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/atomicstack/runstrip/internal/input"
	"github.com/atomicstack/runstrip/internal/theme"
)

// MinColumns is the narrowest terminal a frame is drawn in.
const MinColumns = 40

const eventBuffer = 256

// KeyMap lists the terminal keys with a fixed meaning.
type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Backspace key.Binding
	Tab       key.Binding
	Delete    key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Interrupt key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "caret left / previous")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "caret right / next")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete rune")),
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "forget entry")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "launch")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// TerminalOptions configures a Terminal.
type TerminalOptions struct {
	Input  io.Reader
	Output io.Writer
	Styles *theme.Styles
	Keys   *KeyMap

	// Height caps the pixel height of frames; zero uses the whole terminal.
	Height    int
	AltScreen bool
}

// Terminal shows frames in a terminal through a bubbletea program. One
// pixel is one column wide and half a row tall.
type Terminal struct {
	program *tea.Program
	events  chan Event
	done    chan struct{}
	keys    KeyMap
	styles  *theme.Styles

	mu        sync.Mutex
	cols      int
	rows      int
	maxHeight int
	started   bool
	runErr    error
	closeOnce sync.Once
}

// NewTerminal prepares a terminal surface. Call Start to take over the
// terminal.
func NewTerminal(opts TerminalOptions) *Terminal {
	t := newTerminal(opts)
	progOpts := []tea.ProgramOption{tea.WithReportFocus()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if f, ok := opts.Output.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil {
			t.cols, t.rows = w, h
		}
	}
	t.program = tea.NewProgram(&terminalModel{t: t}, progOpts...)
	return t
}

func newTerminal(opts TerminalOptions) *Terminal {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	return &Terminal{
		events:    make(chan Event, eventBuffer),
		done:      make(chan struct{}),
		keys:      keys,
		styles:    opts.Styles,
		maxHeight: opts.Height,
	}
}

// Start runs the bubbletea program in the background.
func (t *Terminal) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()
	go func() {
		_, err := t.program.Run()
		t.mu.Lock()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			t.runErr = err
		}
		t.mu.Unlock()
		close(t.done)
	}()
}

func (t *Terminal) PollEvent(ctx context.Context) (Event, error) {
	select {
	case ev := <-t.events:
		return ev, nil
	case <-t.done:
		select {
		case ev := <-t.events:
			return ev, nil
		default:
		}
		return Event{}, t.err()
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (t *Terminal) Present(frame *image.RGBA) error {
	if t.exited() {
		return t.err()
	}
	t.program.Send(frameMsg{view: EncodeHalfBlocks(frame)})
	return nil
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixelSize()
}

func (t *Terminal) pixelSize() (int, int) {
	h := t.rows * 2
	if t.maxHeight > 0 && h > t.maxHeight {
		h = t.maxHeight
	}
	return t.cols, h
}

func (t *Terminal) Hide() error {
	if t.exited() {
		return t.err()
	}
	t.program.Send(hideMsg{})
	return nil
}

func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		started := t.started
		t.mu.Unlock()
		if !started {
			return
		}
		t.program.Quit()
		<-t.done
	})
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runErr
}

func (t *Terminal) exited() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Terminal) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runErr != nil {
		return fmt.Errorf("terminal: %w", t.runErr)
	}
	return ErrClosed
}

// push never blocks the bubbletea loop; a full queue drops the event.
func (t *Terminal) push(ev Event) {
	select {
	case t.events <- ev:
	default:
	}
}

func (t *Terminal) resize(cols, rows int) {
	t.mu.Lock()
	t.cols, t.rows = cols, rows
	w, h := t.pixelSize()
	t.mu.Unlock()
	t.push(Resize(w, h))
}

// translateKey maps a terminal key message to key code events.
func (t *Terminal) translateKey(msg tea.KeyMsg) []Event {
	switch {
	case key.Matches(msg, t.keys.Left):
		return []Event{KeyDown(input.CodeLeft, 0)}
	case key.Matches(msg, t.keys.Right):
		return []Event{KeyDown(input.CodeRight, 0)}
	case key.Matches(msg, t.keys.Backspace):
		return []Event{KeyDown(input.CodeBackspace, 0)}
	case key.Matches(msg, t.keys.Tab):
		return []Event{KeyDown(input.CodeTab, 0)}
	case key.Matches(msg, t.keys.Delete):
		return []Event{KeyDown(input.CodeDelete, 0)}
	case key.Matches(msg, t.keys.Enter):
		return []Event{KeyDown(input.CodeEnter, 0)}
	case key.Matches(msg, t.keys.Escape):
		return []Event{KeyDown(input.CodeEscape, 0)}
	case key.Matches(msg, t.keys.Interrupt):
		code, _, _ := input.CodeFor('c')
		return []Event{KeyDown(code, input.ModControl)}
	}

	var runes []rune
	switch msg.Type {
	case tea.KeySpace:
		runes = []rune{' '}
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		runes = msg.Runes
	default:
		return nil
	}
	events := make([]Event, 0, len(runes))
	for _, r := range runes {
		code, mods, ok := input.CodeFor(r)
		if !ok {
			continue
		}
		events = append(events, KeyDown(code, mods))
	}
	return events
}

type frameMsg struct{ view string }

type hideMsg struct{}

type terminalModel struct {
	t      *Terminal
	frame  string
	hidden bool
	cols   int
	rows   int
}

func (m *terminalModel) Init() tea.Cmd { return nil }

func (m *terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.t.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		for _, ev := range m.t.translateKey(msg) {
			m.t.push(ev)
		}
	case tea.BlurMsg:
		m.t.push(FocusLost())
	case frameMsg:
		m.frame = msg.view
		m.hidden = false
	case hideMsg:
		m.hidden = true
	}
	return m, nil
}

func (m *terminalModel) View() string {
	if m.hidden {
		return ""
	}
	if m.cols > 0 && (m.cols < MinColumns || m.rows < 1) {
		text := fmt.Sprintf("terminal too small (need %d columns)", MinColumns)
		if m.t.styles != nil && m.t.styles.Notice != nil {
			text = m.t.styles.Notice.Render(text)
		}
		return ansi.Truncate(text, m.cols, "…")
	}
	return m.frame
}
