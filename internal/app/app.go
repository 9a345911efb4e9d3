// Package app wires configuration, storage and the display together and
// runs one launcher session.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/atomicstack/runstrip/internal/backend"
	"github.com/atomicstack/runstrip/internal/config"
	"github.com/atomicstack/runstrip/internal/discovery"
	"github.com/atomicstack/runstrip/internal/display"
	"github.com/atomicstack/runstrip/internal/frequency"
	"github.com/atomicstack/runstrip/internal/launcher"
	"github.com/atomicstack/runstrip/internal/lock"
	"github.com/atomicstack/runstrip/internal/logging"
	"github.com/atomicstack/runstrip/internal/logging/events"
	"github.com/atomicstack/runstrip/internal/render"
	"github.com/atomicstack/runstrip/internal/theme"
)

// refreshGrace bounds how long exit waits for an unfinished catalog refresh.
const refreshGrace = 2 * time.Second

// Run bootstraps and executes one session in the terminal.
func Run(cfg config.Config) error {
	instance, err := lock.Acquire(lock.Options{
		LockPath: cfg.Paths.LockFile,
		PidPath:  cfg.Paths.PidFile,
		Takeover: cfg.Takeover,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := instance.Release(); err != nil {
			logging.Error(fmt.Errorf("release lock: %w", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsys := afero.NewOsFs()
	store, err := frequency.Load(fsys, cfg.Paths.FrequencyFile)
	if err != nil {
		logging.Error(err)
	}
	catalog, refresher := buildCatalog(ctx, fsys, store, scanner(fsys, cfg.Discovery))

	renderer, err := NewRenderer(fsys, cfg.Appearance)
	if err != nil {
		return err
	}

	term := display.NewTerminal(terminalOptions(cfg.Appearance))
	term.Start()

	session := NewSession(SessionOptions{
		Surface:  term,
		Renderer: renderer,
		Store:    store,
		Launcher: launcher.New(cfg.Launch.Home, cfg.Launch.Tmux),
		Catalog:  catalog,
		Delay:    time.Duration(cfg.Launch.DelayMS) * time.Millisecond,
	})
	reason, runErr := session.Run(ctx)
	if err := term.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		events.App.Exit("error")
		return runErr
	}
	events.App.Exit(string(reason))
	logging.Info("session ended: %s", reason)
	waitForRefresh(refresher, refreshGrace)
	return nil
}

// terminalOptions binds the terminal to the process's stdio so the initial
// size can be read from stdout before the first resize arrives.
func terminalOptions(a config.Appearance) display.TerminalOptions {
	return display.TerminalOptions{
		Input:     os.Stdin,
		Output:    os.Stdout,
		Styles:    theme.NewStyles(a.Foreground, a.Background, a.PromptColor),
		Height:    a.Height,
		AltScreen: true,
	}
}

func scanner(fsys afero.Fs, d config.Discovery) backend.ScanFunc {
	opts := discovery.Options{SearchPath: d.SearchPath, ExcludePrefixes: d.ExcludePrefixes}
	return func() []string {
		return discovery.Discover(fsys, opts)
	}
}

// buildCatalog scans synchronously when the store is empty and persists the
// result. Otherwise it uses the stored names and refreshes in the
// background; the returned catalog does not change when that finishes.
func buildCatalog(ctx context.Context, fsys afero.Fs, store *frequency.Store, scan backend.ScanFunc) ([]string, *backend.Refresher) {
	if store.IsEmpty() {
		store.AddNames(scan())
		names := store.Names()
		events.Catalog.Build(len(names), true)
		err := store.Save()
		events.Frequency.Save(store.Path(), store.Len(), err)
		if err != nil {
			logging.Error(err)
		}
		return names, nil
	}
	names := discovery.Catalog(nil, store.Names())
	events.Catalog.Build(len(names), false)
	return names, backend.StartRefresh(ctx, fsys, store.Path(), scan)
}

func waitForRefresh(r *backend.Refresher, grace time.Duration) bool {
	if r == nil {
		return true
	}
	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(grace):
		logging.Warn("catalog refresh still running after %s, exiting anyway", grace)
		return false
	}
}

// NewRenderer resolves the configured font and palette. A font that cannot
// be loaded is fatal.
func NewRenderer(fsys afero.Fs, a config.Appearance) (*render.Renderer, error) {
	f, err := render.ResolveFont(fsys, a.FontFamily)
	if err != nil {
		return nil, err
	}
	return &render.Renderer{
		Cache:       render.NewGlyphCache(render.NewFaceRasterizer(f)),
		Palette:     NewPalette(a),
		PixelSize:   render.PixelSize(a.FontSize, a.DPIScale),
		Supersample: a.Supersample,
	}, nil
}

// NewPalette parses the appearance colours, keeping the default for any
// value that is not "#RRGGBB".
func NewPalette(a config.Appearance) render.Palette {
	return render.Palette{
		Foreground:  theme.ParseHex(a.Foreground, theme.MustHex(theme.DefaultForeground)),
		Background:  theme.ParseHex(a.Background, theme.MustHex(theme.DefaultBackground)),
		SelectionFg: theme.ParseHex(a.SelectionFg, theme.MustHex(theme.DefaultSelectionFg)),
		SelectionBg: theme.ParseHex(a.SelectionBg, theme.MustHex(theme.DefaultSelectionBg)),
		Highlight:   theme.ParseHex(a.MatchHighlight, theme.MustHex(theme.DefaultMatchHighlight)),
		Prompt:      theme.ParseHex(a.PromptColor, theme.MustHex(theme.DefaultPromptColor)),
	}
}
