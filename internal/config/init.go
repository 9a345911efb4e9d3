package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/atomicstack/runstrip/internal/format/table"
)

// ErrConfigExists is returned by WriteDefault when a file is already present
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// DefaultFileContent renders the default config file.
func DefaultFileContent() ([]byte, error) {
	data, err := toml.Marshal(defaultFile())
	if err != nil {
		return nil, fmt.Errorf("encode default config: %w", err)
	}
	header := "# runstrip configuration. Every key is optional.\n\n"
	return append([]byte(header), data...), nil
}

// WriteDefault writes the default config file to path, creating parent
// directories.
func WriteDefault(fsys afero.Fs, path string, overwrite bool) error {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return ErrConfigExists
	}
	data, err := DefaultFileContent()
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return afero.WriteFile(fsys, path, data, 0o644)
}

// Describe lists the version and file locations for --info.
func (p Paths) Describe(version string) string {
	rows := [][]string{
		{"Version:", version},
		{"Config:", p.ConfigFile},
		{"Frequency:", p.FrequencyFile},
		{"Log:", p.LogFile},
		{"Lock:", p.LockFile},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", appName)
	for _, line := range table.Format(rows, nil) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
