// Package launcher starts the chosen command detached from the launcher.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atomicstack/runstrip/internal/logging/events"
	"github.com/atomicstack/runstrip/internal/tmux"
)

// ErrEmptyCommand is returned for a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// SpawnError reports a command that could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Result describes a launch. Command is the whitespace-normalized command
// line; NeedsDelay asks the caller to stay alive briefly after the spawn.
type Result struct {
	Success    bool
	Command    string
	NeedsDelay bool
}

// Launcher spawns commands. The zero value is not usable; call New.
type Launcher struct {
	home  string
	tmux  tmux.Env
	shell string

	start   func(*exec.Cmd) error
	paneDir func(tmux.Env) (string, error)
}

// New returns a launcher that runs commands from home, or from the calling
// tmux pane's directory when env says we are inside tmux.
func New(home string, env tmux.Env) *Launcher {
	return &Launcher{
		home:    home,
		tmux:    env,
		shell:   "bash",
		start:   startDetached,
		paneDir: tmux.PaneWorkingDirectory,
	}
}

// Launch splits input on whitespace and starts it. Programs whose resolved
// path ends in .exe are started directly with no stdio; everything else is
// handed to the shell under nohup.
func (l *Launcher) Launch(input string) (Result, error) {
	cmd, res, err := l.Command(input)
	if err != nil {
		return Result{}, err
	}
	events.Launch.Spawn(res.Command, cmd.Dir, res.NeedsDelay)
	if err := l.start(cmd); err != nil {
		return Result{}, &SpawnError{Command: res.Command, Err: err}
	}
	res.Success = true
	return res, nil
}

// Command builds the process Launch would start, without starting it.
func (l *Launcher) Command(input string) (*exec.Cmd, Result, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, Result{}, ErrEmptyCommand
	}
	normalized := strings.Join(parts, " ")
	program := resolveProgram(parts[0])

	var cmd *exec.Cmd
	direct := strings.HasSuffix(strings.ToLower(program), ".exe")
	if direct {
		// exec.Cmd leaves nil stdio attached to the null device.
		cmd = exec.Command(program, parts[1:]...)
	} else {
		cmd = exec.Command(l.shell, "-c", fmt.Sprintf("nohup %s >/dev/null 2>&1 &", normalized))
	}
	cmd.Dir = l.workingDir()
	return cmd, Result{Command: normalized, NeedsDelay: direct}, nil
}

func (l *Launcher) workingDir() string {
	if l.tmux.Present && l.paneDir != nil {
		dir, err := l.paneDir(l.tmux)
		if err == nil {
			return dir
		}
		events.Launch.Error(err)
	}
	return l.home
}

// resolveProgram follows symlinks when program names an existing path.
func resolveProgram(program string) string {
	if _, err := os.Stat(program); err != nil {
		return program
	}
	resolved, err := filepath.EvalSymlinks(program)
	if err != nil {
		return program
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return resolved
	}
	return abs
}

func startDetached(cmd *exec.Cmd) error {
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
