// Package tmux asks the tmux server about the pane that invoked the
// launcher.
package tmux

import (
	"errors"
	"fmt"
	"os/user"
	"path/filepath"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

type displayClient interface {
	DisplayMessage(target, format string) (string, error)
	Close() error
}

var newTmux = func(socketPath string) (displayClient, error) {
	if socketPath != "" {
		return gotmux.NewTmux(socketPath)
	}
	return gotmux.DefaultTmux()
}

// ErrNotInTmux is returned when the environment carries no tmux session.
var ErrNotInTmux = errors.New("not running inside tmux")

// Env is the tmux-related part of the process environment.
type Env struct {
	// TMUX holds "socket,pid,session" when running inside tmux.
	TMUX    string
	Pane    string
	TmpDir  string
	Present bool
}

// EnvFrom extracts the tmux variables from a key/value environment.
func EnvFrom(env map[string]string) Env {
	tmuxVar, ok := env["TMUX"]
	return Env{
		TMUX:    tmuxVar,
		Pane:    strings.TrimSpace(env["TMUX_PANE"]),
		TmpDir:  env["TMUX_TMPDIR"],
		Present: ok && strings.TrimSpace(tmuxVar) != "",
	}
}

// ResolveSocketPath chooses the tmux socket: an explicit value first, then
// the socket named in $TMUX, then tmux's default location for this user.
func ResolveSocketPath(explicit string, env Env) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env.TMUX != "" {
		parts := strings.Split(env.TMUX, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0], nil
		}
	}
	baseDir := env.TmpDir
	if baseDir == "" {
		baseDir = "/tmp"
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, fmt.Sprintf("tmux-%s", u.Uid), "default"), nil
}

// PaneWorkingDirectory returns the current path of the pane that launched
// us.
func PaneWorkingDirectory(env Env) (string, error) {
	if !env.Present {
		return "", ErrNotInTmux
	}
	socket, err := ResolveSocketPath("", env)
	if err != nil {
		return "", err
	}
	client, err := newTmux(socket)
	if err != nil {
		return "", fmt.Errorf("connect to tmux: %w", err)
	}
	defer client.Close()
	dir, err := client.DisplayMessage(env.Pane, "#{pane_current_path}")
	if err != nil {
		return "", fmt.Errorf("query pane path: %w", err)
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("tmux reported an empty pane path")
	}
	return dir, nil
}
