package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/atomicstack/runstrip/internal/discovery"
	"github.com/atomicstack/runstrip/internal/theme"
	"github.com/atomicstack/runstrip/internal/tmux"
)

const appName = "runstrip"

// Config captures runtime configuration for the application.
type Config struct {
	Paths      Paths
	Appearance Appearance
	Discovery  Discovery
	Launch     Launch
	Logging    Logging
	Takeover   bool
	Info       bool
	InitConfig bool
	// FileErr is set when the config file existed but could not be used.
	// Defaults are in effect when it is non-nil.
	FileErr error
	Flags   map[string]string
	Args    []string
}

// Paths holds every file location the launcher touches.
type Paths struct {
	ConfigFile    string
	DataDir       string
	FrequencyFile string
	LogFile       string
	LockFile      string
	PidFile       string
}

// Appearance is the [appearance] table of the config file.
type Appearance struct {
	Foreground     string  `toml:"foreground"`
	Background     string  `toml:"background"`
	SelectionFg    string  `toml:"selection_fg"`
	SelectionBg    string  `toml:"selection_bg"`
	MatchHighlight string  `toml:"match_highlight"`
	PromptColor    string  `toml:"prompt_color"`
	FontFamily     string  `toml:"font_family"`
	FontSize       float64 `toml:"font_size"`
	DPIScale       float64 `toml:"dpi_scale"`
	Supersample    int     `toml:"supersample"`
	Height         int     `toml:"height"`
}

// Discovery is the [discovery] table plus the search path from $PATH.
type Discovery struct {
	ExcludePrefixes []string `toml:"exclude_prefixes"`
	SearchPath      []string `toml:"-"`
}

// Launch is the [launch] table plus the environment the launcher needs.
type Launch struct {
	DelayMS int      `toml:"delay_ms"`
	Home    string   `toml:"-"`
	Tmux    tmux.Env `toml:"-"`
}

type Logging struct {
	FilePath string
	Trace    bool
}

// file is the on-disk layout.
type file struct {
	Appearance Appearance `toml:"appearance"`
	Discovery  Discovery  `toml:"discovery"`
	Launch     Launch     `toml:"launch"`
}

// LoadError reports a config file that exists but could not be read or
// parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

const (
	envConfig   = "RUNSTRIP_CONFIG"
	envDataDir  = "RUNSTRIP_DATA_DIR"
	envLogFile  = "RUNSTRIP_LOG_FILE"
	envTrace    = "RUNSTRIP_TRACE"
	envTakeover = "RUNSTRIP_TAKEOVER"
)

// DefaultAppearance returns the built-in appearance.
func DefaultAppearance() Appearance {
	return Appearance{
		Foreground:     theme.DefaultForeground,
		Background:     theme.DefaultBackground,
		SelectionFg:    theme.DefaultSelectionFg,
		SelectionBg:    theme.DefaultSelectionBg,
		MatchHighlight: theme.DefaultMatchHighlight,
		PromptColor:    theme.DefaultPromptColor,
		FontFamily:     "Monospace",
		FontSize:       10,
		DPIScale:       1.3333,
		Supersample:    1,
		Height:         28,
	}
}

func defaultFile() file {
	return file{
		Appearance: DefaultAppearance(),
		Discovery:  Discovery{ExcludePrefixes: append([]string(nil), discovery.DefaultExcludePrefixes...)},
		Launch:     Launch{DelayMS: 300},
	}
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	return LoadArgsFS(afero.NewOsFs(), args, environ)
}

// LoadArgsFS is LoadArgs reading the config file from fs.
func LoadArgsFS(fsys afero.Fs, args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	configHome := xdgDir(env, "XDG_CONFIG_HOME", ".config")
	dataHome := xdgDir(env, "XDG_DATA_HOME", filepath.Join(".local", "share"))

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	configFile := fs.String("config", envOrDefault(env, envConfig, filepath.Join(configHome, appName, "config.toml")), "path to the TOML config file")
	dataDir := fs.String("data-dir", envOrDefault(env, envDataDir, filepath.Join(dataHome, appName)), "directory holding the launch frequency store")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	takeover := fs.Bool("takeover", envOrBool(env, envTakeover, false), "ask a running instance to exit instead of refusing to start")
	info := fs.Bool("info", false, "print version and file locations, then exit")
	initConfig := fs.Bool("init-config", false, "write the default config file, then exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	logPath := *logFile
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(*configFile), appName+".log")
	}
	runtimeDir := strings.TrimSpace(env["XDG_RUNTIME_DIR"])
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}

	settings := defaultFile()
	fileErr := readFile(fsys, *configFile, &settings)

	cfg := Config{
		Paths: Paths{
			ConfigFile:    *configFile,
			DataDir:       *dataDir,
			FrequencyFile: filepath.Join(*dataDir, "freq.txt"),
			LogFile:       logPath,
			LockFile:      filepath.Join(runtimeDir, appName+".lock"),
			PidFile:       filepath.Join(runtimeDir, appName+".pid"),
		},
		Appearance: settings.Appearance,
		Discovery: Discovery{
			ExcludePrefixes: settings.Discovery.ExcludePrefixes,
			SearchPath:      discovery.SplitSearchPath(env["PATH"]),
		},
		Launch: Launch{
			DelayMS: settings.Launch.DelayMS,
			Home:    env["HOME"],
			Tmux:    tmux.EnvFrom(env),
		},
		Logging: Logging{
			FilePath: logPath,
			Trace:    *trace,
		},
		Takeover:   *takeover,
		Info:       *info,
		InitConfig: *initConfig,
		FileErr:    fileErr,
		Flags: map[string]string{
			"config":   *configFile,
			"dataDir":  *dataDir,
			"logFile":  logPath,
			"trace":    strconv.FormatBool(*trace),
			"takeover": strconv.FormatBool(*takeover),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// readFile overlays the TOML file at path onto settings. A missing file is
// not an error; a broken one leaves the defaults untouched.
func readFile(fsys afero.Fs, path string, settings *file) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &LoadError{Path: path, Err: err}
	}
	parsed := *settings
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	*settings = parsed
	return nil
}

func xdgDir(env map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(env[key]); v != "" {
		return v
	}
	home := env["HOME"]
	if home == "" {
		home = "."
	}
	return filepath.Join(home, fallback)
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects settings the renderer cannot work with.
func Validate(cfg Config) error {
	a := cfg.Appearance
	if a.FontSize <= 0 {
		return fmt.Errorf("font_size must be > 0 (got %g)", a.FontSize)
	}
	if a.DPIScale <= 0 {
		return fmt.Errorf("dpi_scale must be > 0 (got %g)", a.DPIScale)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if a.Supersample < 1 || a.Supersample > 4 {
		return fmt.Errorf("supersample must be between 1 and 4 (got %d)", a.Supersample)
	}
	if cfg.Launch.DelayMS < 0 {
		return fmt.Errorf("delay_ms must be >= 0 (got %d)", cfg.Launch.DelayMS)
	}
	return nil
}
