package frequency

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// LoadError reports a store file that exists but could not be read. The
// store returned alongside it is empty and usable.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load frequency store %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store is the persisted name to launch-count table.
type Store struct {
	fs     afero.Fs
	path   string
	counts map[string]uint32
}

// New returns an empty store bound to path.
func New(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path, counts: make(map[string]uint32)}
}

// Load reads the store at path. A missing file yields an empty store and no
// error.
func Load(fs afero.Fs, path string) (*Store, error) {
	s := New(fs, path)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, &LoadError{Path: path, Err: err}
	}
	s.counts = Parse(data)
	return s, nil
}

// Parse decodes "name\tcount" lines, skipping anything malformed.
func Parse(data []byte) map[string]uint32 {
	counts := make(map[string]uint32)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		idx := strings.LastIndexByte(line, '\t')
		if idx < 0 {
			continue
		}
		name := line[:idx]
		if name == "" {
			continue
		}
		count, err := strconv.ParseUint(line[idx+1:], 10, 32)
		if err != nil {
			continue
		}
		counts[name] = uint32(count)
	}
	return counts
}

// Format encodes counts in the on-disk layout, sorted by name.
func Format(counts map[string]uint32) []byte {
	keys := make([]string, 0, len(counts))
	for name := range counts {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	for _, name := range keys {
		buf.WriteString(name)
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatUint(uint64(counts[name]), 10))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write replaces the file at path with counts.
func Write(fs afero.Fs, path string, counts map[string]uint32) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, Format(counts), 0o644); err != nil {
		return fmt.Errorf("write frequency store: %w", err)
	}
	return nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Get returns the launch count for name, zero when unknown.
func (s *Store) Get(name string) uint32 {
	return s.counts[name]
}

// Increment bumps the count for name.
func (s *Store) Increment(name string) {
	if name == "" {
		return
	}
	s.counts[name]++
}

// Remove forgets name entirely.
func (s *Store) Remove(name string) {
	delete(s.counts, name)
}

// AddNames records names the store has never seen with a zero count and
// reports how many were new.
func (s *Store) AddNames(names []string) int {
	return Merge(s.counts, names)
}

// Len reports how many names the store knows.
func (s *Store) Len() int { return len(s.counts) }

// IsEmpty reports whether the store knows no names at all.
func (s *Store) IsEmpty() bool { return len(s.counts) == 0 }

// Names returns every known name, sorted.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.counts))
	for name := range s.counts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Entry is one name and its launch count.
type Entry struct {
	Name  string
	Count uint32
}

// Top returns up to n launched names, most launched first. Names never
// launched are left out.
func (s *Store) Top(n int) []Entry {
	entries := make([]Entry, 0, len(s.counts))
	for name, count := range s.counts {
		if count > 0 {
			entries = append(entries, Entry{Name: name, Count: count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Snapshot returns a copy of the counts.
func (s *Store) Snapshot() map[string]uint32 {
	dup := make(map[string]uint32, len(s.counts))
	for k, v := range s.counts {
		dup[k] = v
	}
	return dup
}

// Save rewrites the whole file from memory.
func (s *Store) Save() error {
	return Write(s.fs, s.path, s.counts)
}

// Merge adds names the store has never seen with a zero count and reports
// how many were new.
func Merge(counts map[string]uint32, names []string) int {
	added := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := counts[name]; ok {
			continue
		}
		counts[name] = 0
		added++
	}
	return added
}
