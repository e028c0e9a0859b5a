// Package loader resolves Hlang imports to source files on a search path.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/hlang/cache"
	"github.com/chazu/hlang/vm"
)

// Ext is the file extension of Hlang modules.
const Ext = ".hl"

// ErrNotFound is returned when no search directory holds a module.
var ErrNotFound = errors.New("module not found")

// Resolver implements vm.ModuleResolver over the file system. Each module
// runs once, in its own interpreter, and its exports are memoised by
// absolute path. A Resolver is not safe for concurrent use.
type Resolver struct {
	searchDirs []string
	programs   *cache.Programs
	stdout     io.Writer
	vmOpts     []vm.Option
	log        commonlog.Logger

	modules map[string]map[string]vm.Value
	loading []frame
}

type frame struct {
	path string
	name string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrograms parses modules through a token cache.
func WithPrograms(p *cache.Programs) Option {
	return func(r *Resolver) { r.programs = p }
}

// WithStdout sets the writer module interpreters print to.
func WithStdout(w io.Writer) Option {
	return func(r *Resolver) { r.stdout = w }
}

// WithInterpreterOptions adds options applied to every module interpreter.
func WithInterpreterOptions(opts ...vm.Option) Option {
	return func(r *Resolver) { r.vmOpts = append(r.vmOpts, opts...) }
}

// New creates a resolver searching dirs in order.
func New(searchDirs []string, opts ...Option) *Resolver {
	r := &Resolver{
		searchDirs: searchDirs,
		stdout:     os.Stdout,
		log:        commonlog.GetLogger("hlang.loader"),
		modules:    make(map[string]map[string]vm.Value),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.programs == nil {
		// Parse without caching.
		r.programs, _ = cache.NewPrograms(0)
	}
	return r
}

// SearchDirs returns the directories consulted after the importing file's own.
func (r *Resolver) SearchDirs() []string {
	return r.searchDirs
}

// Find returns the absolute path of module name. The directory of the file
// currently being loaded is tried before the search path.
func (r *Resolver) Find(name string) (string, error) {
	rel := strings.TrimSuffix(name, Ext)
	if rel == "" {
		return "", fmt.Errorf("empty module name")
	}
	rel = filepath.FromSlash(rel) + Ext

	var dirs []string
	if len(r.loading) > 0 {
		dirs = append(dirs, filepath.Dir(r.loading[len(r.loading)-1].path))
	}
	dirs = append(dirs, r.searchDirs...)

	for _, dir := range dirs {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, rel)
		}
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return filepath.Abs(path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, rel, strings.Join(dirs, ", "))
}

// ResolveImport runs module name if needed and returns its exports.
func (r *Resolver) ResolveImport(name string) (map[string]vm.Value, error) {
	path, err := r.Find(name)
	if err != nil {
		return nil, err
	}
	if exports, ok := r.modules[path]; ok {
		return exports, nil
	}

	in := vm.New(append(r.vmOpts, vm.WithStdout(r.stdout), vm.WithResolver(r))...)
	if err := r.run(in, path, strings.TrimSuffix(name, Ext)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	exports := in.Exports()
	r.modules[path] = exports
	r.log.Debugf("loaded %s exporting %v", path, in.ExportNames())
	return exports, nil
}

// RunFile runs the file at path in interpreter in. Imports made by the file
// are resolved relative to its directory first.
func (r *Resolver) RunFile(in *vm.Interpreter, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return r.run(in, abs, strings.TrimSuffix(filepath.Base(path), Ext))
}

// Loaded returns the absolute paths of every module run so far.
func (r *Resolver) Loaded() []string {
	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	return paths
}

func (r *Resolver) run(in *vm.Interpreter, path, name string) error {
	for i, f := range r.loading {
		if f.path == path {
			var names []string
			for _, g := range r.loading[i:] {
				names = append(names, g.name)
			}
			names = append(names, name)
			return fmt.Errorf("import cycle: %s", strings.Join(names, " -> "))
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r.loading = append(r.loading, frame{path: path, name: name})
	defer func() { r.loading = r.loading[:len(r.loading)-1] }()

	program, err := r.programs.Parse(string(src))
	if err != nil {
		return err
	}
	return in.Interpret(program)
}
