// Package lock keeps a single launcher instance running.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

const (
	defaultWait  = 500 * time.Millisecond
	retryBackoff = 25 * time.Millisecond
)

// Options locates the lock and pid files. With Takeover set, a running
// instance is asked to exit instead of failing.
type Options struct {
	LockPath string
	PidPath  string
	Takeover bool
	// Wait bounds how long a takeover waits for the old instance.
	Wait time.Duration
}

// Instance is a held lock.
type Instance struct {
	flock   *flock.Flock
	pidPath string
}

var signalProcess = func(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

// Acquire takes the instance lock.
func Acquire(opts Options) (*Instance, error) {
	if err := os.MkdirAll(filepath.Dir(opts.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(opts.LockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", opts.LockPath, err)
	}
	if !ok {
		if !opts.Takeover {
			return nil, ErrAlreadyRunning
		}
		if err := takeover(fl, opts); err != nil {
			return nil, err
		}
	}
	inst := &Instance{flock: fl, pidPath: opts.PidPath}
	if opts.PidPath != "" {
		if err := os.WriteFile(opts.PidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
			_ = fl.Unlock()
			return nil, fmt.Errorf("write pid file: %w", err)
		}
	}
	return inst, nil
}

// takeover signals the recorded owner and retries the lock until it is
// released or the wait runs out.
func takeover(fl *flock.Flock, opts Options) error {
	pid, err := ReadPid(opts.PidPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
	}
	if pid != os.Getpid() {
		if err := signalProcess(pid); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("%w: signal pid %d: %v", ErrAlreadyRunning, pid, err)
		}
	}
	wait := opts.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	deadline := time.Now().Add(wait)
	for {
		ok, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", opts.LockPath, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrAlreadyRunning
		}
		time.Sleep(retryBackoff)
	}
}

// ReadPid returns the pid recorded by the current lock owner.
func ReadPid(path string) (int, error) {
	if path == "" {
		return 0, errors.New("no pid file configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pid file %s", path)
	}
	return pid, nil
}

// Release drops the lock and removes the pid file.
func (i *Instance) Release() error {
	if i == nil || i.flock == nil {
		return nil
	}
	if i.pidPath != "" {
		_ = os.Remove(i.pidPath)
	}
	return i.flock.Unlock()
}
