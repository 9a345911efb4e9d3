package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/atomicstack/runstrip/internal/app"
	"github.com/atomicstack/runstrip/internal/config"
	"github.com/atomicstack/runstrip/internal/format/table"
	"github.com/atomicstack/runstrip/internal/frequency"
	"github.com/atomicstack/runstrip/internal/logging"
	"github.com/atomicstack/runstrip/internal/logging/events"
	"github.com/atomicstack/runstrip/internal/theme"
)

var version = "dev"

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	if runtimeCfg.Info {
		printInfo(os.Stdout, afero.NewOsFs(), runtimeCfg)
		return
	}
	if runtimeCfg.InitConfig {
		os.Exit(initConfig(afero.NewOsFs(), runtimeCfg.Paths.ConfigFile, os.Stdin, os.Stdout))
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)
	if runtimeCfg.FileErr != nil {
		logging.Error(runtimeCfg.FileErr)
	}

	traceStartup(runtimeCfg)

	if err := app.Run(runtimeCfg); err != nil {
		logging.Error(err)
		printFatal(os.Stderr, err)
		os.Exit(1)
	}
}

// printFatal reports an error that ends the process, styled when w is a
// terminal.
func printFatal(w *os.File, err error) {
	msg := fmt.Sprintf("Error: %v", err)
	if term.IsTerminal(int(w.Fd())) {
		if styles := theme.Default(); styles.Error != nil {
			msg = styles.Error.Render(msg)
		}
	}
	fmt.Fprintln(w, msg)
}

const infoTopN = 10

// printInfo shows file locations and the most launched commands.
func printInfo(out io.Writer, fsys afero.Fs, cfg config.Config) {
	fmt.Fprint(out, cfg.Paths.Describe(version))
	if cfg.FileErr != nil {
		fmt.Fprintf(out, "\nConfig error: %v\n", cfg.FileErr)
	}
	store, err := frequency.Load(fsys, cfg.Paths.FrequencyFile)
	if err != nil {
		fmt.Fprintf(out, "\nError: %v\n", err)
		return
	}
	top := store.Top(infoTopN)
	if len(top) == 0 {
		return
	}
	rows := make([][]string, len(top))
	for i, entry := range top {
		rows[i] = []string{strconv.FormatUint(uint64(entry.Count), 10), entry.Name}
	}
	fmt.Fprintf(out, "\nMost launched (%d known):\n", store.Len())
	for _, line := range table.Format(rows, []table.Alignment{table.AlignRight, table.AlignLeft}) {
		fmt.Fprintf(out, "  %s\n", line)
	}
}

// initConfig writes the default config file, asking before replacing one,
// and returns the exit code.
func initConfig(fsys afero.Fs, path string, in io.Reader, out io.Writer) int {
	err := config.WriteDefault(fsys, path, false)
	if errors.Is(err, config.ErrConfigExists) {
		fmt.Fprintf(out, "%s already exists. Overwrite? [y/N] ", path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			err = config.WriteDefault(fsys, path, true)
		default:
			fmt.Fprintln(out, "Left unchanged.")
			return 0
		}
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return 0
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  cfg,
		"version": version,
	}
	if cfg.FileErr != nil {
		payload["configError"] = cfg.FileErr.Error()
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
