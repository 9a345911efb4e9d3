// Package discovery builds the candidate catalog from the executable search
// path.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExcludePrefixes skips mounted foreign file systems, which are slow
// to list and mostly hold non-native binaries.
var DefaultExcludePrefixes = []string{"/mnt/"}

// Options controls a scan.
type Options struct {
	// SearchPath lists directories in lookup order.
	SearchPath []string
	// ExcludePrefixes skips any directory starting with one of these.
	ExcludePrefixes []string
}

// SplitSearchPath turns a PATH-style value into directories, dropping empty
// entries.
func SplitSearchPath(value string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(value) {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Discover returns the sorted, de-duplicated names of executable regular
// files found in the search path. Unreadable directories are skipped.
func Discover(fs afero.Fs, opts Options) []string {
	seen := make(map[string]struct{})
	for _, dir := range opts.SearchPath {
		if excluded(dir, opts.ExcludePrefixes) {
			continue
		}
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info := entry
			if entry.Mode()&os.ModeSymlink != 0 {
				target, err := fs.Stat(filepath.Join(dir, entry.Name()))
				if err != nil {
					continue
				}
				info = target
			}
			if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
				continue
			}
			seen[entry.Name()] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Catalog merges discovered names with names already known to the frequency
// store, so commands launched from outside the search path stay visible.
func Catalog(discovered, known []string) []string {
	seen := make(map[string]struct{}, len(discovered)+len(known))
	for _, name := range discovered {
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	for _, name := range known {
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func excluded(dir string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
