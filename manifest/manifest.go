// Package manifest handles hlang.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in project directories.
const FileName = "hlang.toml"

// Manifest represents a hlang.toml project configuration.
type Manifest struct {
	Project      Project               `toml:"project"`
	Source       Source                `toml:"source"`
	Runtime      Runtime               `toml:"runtime"`
	Cache        CacheConfig           `toml:"cache"`
	Dependencies map[string]Dependency `toml:"dependencies"`

	// Dir is the directory containing the hlang.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Entry   string `toml:"entry"`
}

// Source configures the module search path.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// Runtime configures the tokenizer and interpreter.
type Runtime struct {
	TabWidth     int `toml:"tab-width"`
	MaxCallDepth int `toml:"max-call-depth"`
}

// CacheConfig configures the token cache. An empty Dir disables the
// on-disk store.
type CacheConfig struct {
	Dir     string `toml:"dir"`
	Entries int    `toml:"entries"`
}

// Dependency is a module library the project imports from, either a local
// path or a git repository.
type Dependency struct {
	Git  string `toml:"git"`
	Tag  string `toml:"tag"`
	Path string `toml:"path"`
}

// Defaults returns the manifest used when a project has no hlang.toml.
func Defaults(dir string) *Manifest {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &Manifest{
		Source:  Source{Dirs: []string{"src"}},
		Runtime: Runtime{TabWidth: 8, MaxCallDepth: 1000},
		Cache:   CacheConfig{Dir: filepath.Join(".hlang", "cache"), Entries: 128},
		Dir:     abs,
	}
}

// Load parses a hlang.toml file from the given directory. Missing settings
// keep their defaults.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Defaults(dir)
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a hlang.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate reports the first setting out of range.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Runtime.TabWidth < 1 {
		errs = append(errs, fmt.Errorf("runtime.tab-width must be at least 1, got %d", m.Runtime.TabWidth))
	}
	if m.Runtime.MaxCallDepth < 1 {
		errs = append(errs, fmt.Errorf("runtime.max-call-depth must be at least 1, got %d", m.Runtime.MaxCallDepth))
	}
	if m.Cache.Entries < 0 {
		errs = append(errs, fmt.Errorf("cache.entries must not be negative, got %d", m.Cache.Entries))
	}
	for name, dep := range m.Dependencies {
		if (dep.Git == "") == (dep.Path == "") {
			errs = append(errs, fmt.Errorf("dependency %q needs exactly one of git or path", name))
		}
	}
	return errors.Join(errs...)
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// EntryPath returns the absolute path of the entry file, or "" if none is
// configured.
func (m *Manifest) EntryPath() string {
	if m.Project.Entry == "" {
		return ""
	}
	return m.resolve(m.Project.Entry)
}

// CacheDir returns the absolute on-disk cache directory, or "" when the disk
// cache is disabled.
func (m *Manifest) CacheDir() string {
	if m.Cache.Dir == "" {
		return ""
	}
	return m.resolve(m.Cache.Dir)
}

// DepsDir returns the path to the .hlang/deps directory.
func (m *Manifest) DepsDir() string {
	return filepath.Join(m.Dir, ".hlang", "deps")
}

// LockFilePath returns the path to .hlang/lock.toml.
func (m *Manifest) LockFilePath() string {
	return filepath.Join(m.Dir, ".hlang", "lock.toml")
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
