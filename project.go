package dub

import (
	"context"
	"path/filepath"
	"sort"

	radix "github.com/armon/go-radix"
	"github.com/pkg/errors"

	"github.com/vporton/dub/internal/dublog"
	"github.com/vporton/dub/metadata"
)

// Project is the root package plus every reachable dependency package, and
// the reverse "dependee" relation between them. The root itself never
// appears in the dependency set.
//
// A Project is built once by Reinit and then owned by its caller for the
// lifetime of a single open project; callers must serialize their own
// concurrent access.
type Project struct {
	Root metadata.Package

	deps     map[metadata.Package]struct{}
	order    []metadata.Package // deterministic append order, DFS preorder (parent before children)
	dependee map[metadata.Package][]metadata.Package
	parents  *radix.Tree // package name -> map[string]struct{} of parent package names
	byName   map[string]metadata.Package
	actions  []Action
}

// Reinit walks root's declared dependencies, consulting sel for pinned
// versions and pm to materialize packages, and returns the resulting
// Project. Graph construction is tolerant: a missing selection or an
// unmaterializable package is logged and skipped, never fatal.
func Reinit(ctx context.Context, root metadata.Package, sel *SelectedVersions, pm metadata.PackageManager, log *dublog.Logger) (*Project, error) {
	if log == nil {
		log = dublog.New(nil)
	}

	lintRoot(root, sel, log)

	p := &Project{
		Root:     root,
		deps:     make(map[metadata.Package]struct{}),
		dependee: make(map[metadata.Package][]metadata.Package),
		parents:  radix.New(),
		byName:   map[string]metadata.Package{root.Name(): root},
	}

	if err := p.visit(ctx, root, sel, pm, log); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) visit(ctx context.Context, pkg metadata.Package, sel *SelectedVersions, pm metadata.PackageManager, log *dublog.Logger) error {
	deps := pkg.Dependencies()
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !sel.HasSelected(name) {
			log.With("package", name).Warn("dub: dependency has no selected version; skipping")
			continue
		}
		selv, err := sel.SelectedVersion(name)
		if err != nil {
			return err
		}

		var child metadata.Package
		var ok bool
		if selv.Path != "" {
			path := selv.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(pkg.Path(), path)
			}
			if !pathLooksLikePackage(path) {
				log.With("package", name).Warnf("dub: local path %q does not look like a package directory; skipping", path)
				continue
			}
			child, ok, err = pm.PackageAt(ctx, path, selv.Version)
		} else {
			child, ok, err = pm.PackageFor(ctx, name, selv.Version)
		}
		if err != nil {
			return errors.Wrapf(err, "dub: resolving dependency %q of %q", name, pkg.Name())
		}
		if !ok {
			log.With("package", name).Warn("dub: package manager could not materialize dependency; skipping")
			continue
		}
		if child.Version() != selv.Version {
			// The package manager materialized a version other than the one
			// SelectedVersions recorded (e.g. the cache holds a different
			// release than the lockfile pins). The graph builder's own
			// contract stays tolerant (it still uses the materialized
			// package) and only surfaces an ActionConflict for the fetch
			// layer to act on.
			p.actions = append(p.actions, NewConflictAction(name, selv.Version, "dub: Reinit", child.Version()))
			log.With("package", name).Warnf("dub: selected version %q disagrees with materialized version %q", selv.Version, child.Version())
		}

		p.addParent(name, pkg.Name())

		if _, already := p.deps[child]; already {
			p.dependee[child] = append(p.dependee[child], pkg)
			continue
		}

		p.deps[child] = struct{}{}
		p.order = append(p.order, child)
		p.dependee[child] = append(p.dependee[child], pkg)
		p.byName[child.Name()] = child

		if err := p.visit(ctx, child, sel, pm, log); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) addParent(childName, parentName string) {
	var set map[string]struct{}
	if v, ok := p.parents.Get(childName); ok {
		set = v.(map[string]struct{})
	} else {
		set = make(map[string]struct{})
	}
	set[parentName] = struct{}{}
	p.parents.Insert(childName, set)
}

// ParentNames returns the sorted set of package names that declare name as a
// dependency, derived from the radix index built during Reinit. A package
// that was never successfully added (its selection was missing, or the
// package manager could not materialize it) simply has no entry; callers
// must treat absence as "no parents", not an error.
func (p *Project) ParentNames(name string) []string {
	v, ok := p.parents.Get(name)
	if !ok {
		return nil
	}
	set := v.(map[string]struct{})
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Packages returns every reachable dependency Package, in the order they
// were first discovered: a preorder walk of the declared dependency graph
// (a package is appended as soon as it is reached, before its own
// dependencies are visited), not a children-first order. Callers that need
// a children-first or parents-first traversal should use Walk instead. The
// root is never included.
func (p *Project) Packages() []metadata.Package {
	out := make([]metadata.Package, len(p.order))
	copy(out, p.order)
	return out
}

// Dependees returns the packages (or, for the root, nil) that declare pkg as
// a dependency.
func (p *Project) Dependees(pkg metadata.Package) []metadata.Package {
	return append([]metadata.Package(nil), p.dependee[pkg]...)
}

// Actions returns the Actions gathered as a byproduct of Reinit for an
// external fetcher to consume. The core never acts on these itself.
func (p *Project) Actions() []Action {
	return append([]Action(nil), p.actions...)
}

// pathLooksLikePackage reports whether dir exists and is non-empty, using
// godirwalk's lower-allocation directory listing rather than filepath.Walk
// since this check runs once per reachable local-path dependency on every
// project load.
func pathLooksLikePackage(dir string) bool {
	return dirHasEntries(dir)
}
