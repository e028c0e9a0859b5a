package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tliron/commonlog"
)

// ResolvedDep represents a dependency that has been resolved to a local path.
type ResolvedDep struct {
	Name      string    // dependency name
	LocalPath string    // local filesystem path
	Manifest  *Manifest // the dependency's own manifest (may be nil)
}

// SourceDirs returns the directories the dependency's modules are found in:
// its manifest's source dirs, or its root when it has no manifest.
func (rd ResolvedDep) SourceDirs() []string {
	if rd.Manifest != nil {
		return rd.Manifest.SourceDirPaths()
	}
	return []string{rd.LocalPath}
}

// Resolver manages dependency resolution.
type Resolver struct {
	manifest *Manifest
	lock     *LockFile
	log      commonlog.Logger
}

// NewResolver creates a new dependency resolver.
func NewResolver(m *Manifest) *Resolver {
	return &Resolver{
		manifest: m,
		log:      commonlog.GetLogger("hlang.manifest"),
	}
}

// Resolve resolves all dependencies and returns them in load order
// (dependencies before dependents). It rewrites the lock file when the
// project has any dependencies.
func (r *Resolver) Resolve(ctx context.Context) ([]ResolvedDep, error) {
	if len(r.manifest.Dependencies) == 0 {
		return nil, nil
	}

	lock, err := ReadLock(r.manifest.LockFilePath())
	if err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	r.lock = lock

	resolved := make(map[string]*ResolvedDep)
	order, err := r.resolveAll(ctx, r.manifest, resolved)
	if err != nil {
		return nil, err
	}

	if err := r.writeLock(ctx, resolved); err != nil {
		return nil, fmt.Errorf("writing lock file: %w", err)
	}
	return order, nil
}

// SearchDirs flattens the source directories of deps in order.
func SearchDirs(deps []ResolvedDep) []string {
	var dirs []string
	for _, rd := range deps {
		dirs = append(dirs, rd.SourceDirs()...)
	}
	return dirs
}

// resolveAll resolves the dependencies of owner recursively, visiting
// names in sorted order so the result is stable.
func (r *Resolver) resolveAll(ctx context.Context, owner *Manifest, resolved map[string]*ResolvedDep) ([]ResolvedDep, error) {
	names := make([]string, 0, len(owner.Dependencies))
	for name := range owner.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var order []ResolvedDep
	for _, name := range names {
		if _, ok := resolved[name]; ok {
			continue
		}

		rd, err := r.resolveOne(ctx, owner, name, owner.Dependencies[name])
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		resolved[name] = rd

		if rd.Manifest != nil && len(rd.Manifest.Dependencies) > 0 {
			transitive, err := r.resolveAll(ctx, rd.Manifest, resolved)
			if err != nil {
				return nil, err
			}
			order = append(order, transitive...)
		}
		order = append(order, *rd)
	}
	return order, nil
}

func (r *Resolver) resolveOne(ctx context.Context, owner *Manifest, name string, dep Dependency) (*ResolvedDep, error) {
	switch {
	case dep.Path != "":
		localPath, err := filepath.Abs(owner.resolve(dep.Path))
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", dep.Path, err)
		}
		if _, err := os.Stat(localPath); err != nil {
			return nil, fmt.Errorf("local dependency %q not found at %s: %w", name, localPath, err)
		}
		return r.withManifest(name, localPath)

	case dep.Git != "":
		depDir := filepath.Join(r.manifest.DepsDir(), name)
		if _, err := os.Stat(depDir); os.IsNotExist(err) {
			r.log.Infof("cloning %s from %s", name, dep.Git)
			if err := os.MkdirAll(r.manifest.DepsDir(), 0755); err != nil {
				return nil, fmt.Errorf("creating deps dir: %w", err)
			}
			if err := gitClone(ctx, dep.Git, depDir); err != nil {
				return nil, err
			}
		} else if locked := r.lock.FindLockedDep(name); locked == nil || locked.Tag != dep.Tag {
			r.log.Infof("fetching %s", name)
			if err := gitFetch(ctx, depDir); err != nil {
				return nil, err
			}
		}
		if dep.Tag != "" {
			if err := gitCheckout(ctx, depDir, dep.Tag); err != nil {
				return nil, err
			}
		}
		return r.withManifest(name, depDir)
	}
	return nil, fmt.Errorf("dependency %q has no git or path specified", name)
}

// withManifest loads the dependency's hlang.toml if it has one.
func (r *Resolver) withManifest(name, dir string) (*ResolvedDep, error) {
	rd := &ResolvedDep{Name: name, LocalPath: dir}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		return rd, nil
	}
	m, err := Load(dir)
	if err != nil {
		return nil, err
	}
	rd.Manifest = m
	return rd, nil
}

func (r *Resolver) writeLock(ctx context.Context, resolved map[string]*ResolvedDep) error {
	lf := &LockFile{}
	for _, rd := range resolved {
		ld := LockedDep{Name: rd.Name}
		dep, direct := r.manifest.Dependencies[rd.Name]
		switch {
		case !direct:
			ld.Path = rd.LocalPath
		case dep.Git != "":
			ld.Git = dep.Git
			ld.Tag = dep.Tag
			if commit, err := gitCurrentCommit(ctx, rd.LocalPath); err == nil {
				ld.Commit = commit
			}
		default:
			ld.Path = dep.Path
		}
		lf.Deps = append(lf.Deps, ld)
	}
	return WriteLock(r.manifest.LockFilePath(), lf)
}
