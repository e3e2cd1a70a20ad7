package dub

import (
	"sort"

	"github.com/vporton/dub/metadata"
)

// Walk performs a depth-first traversal of the dependency graph starting at
// root (p.Root if root is nil). childrenFirst selects the order: true visits
// a package only after every dependency reachable from it has been visited;
// false visits a package before its dependencies.
//
// configs, if non-nil, is a configuration map (as returned by
// GetPackageConfigs): an edge p -> d is only followed when d has an entry in
// configs, i.e. d survived configuration resolution. A nil configs walks
// every edge in the raw dependency graph.
//
// visit is called once per distinct package (a per-traversal visited set
// prevents re-entry, so cycles terminate); returning true stops the
// traversal early.
func (p *Project) Walk(root metadata.Package, childrenFirst bool, configs map[string]string, visit func(metadata.Package) bool) {
	if root == nil {
		root = p.Root
	}
	visited := make(map[string]bool)
	w := &walker{project: p, childrenFirst: childrenFirst, configs: configs, visited: visited, visit: visit}
	w.walk(root)
}

type walker struct {
	project       *Project
	childrenFirst bool
	configs       map[string]string
	visited       map[string]bool
	visit         func(metadata.Package) bool
	stopped       bool
}

func (w *walker) walk(pkg metadata.Package) {
	if w.stopped {
		return
	}
	name := pkg.Name()
	if w.visited[name] {
		return
	}
	w.visited[name] = true

	if !w.childrenFirst {
		if w.visit(pkg) {
			w.stopped = true
			return
		}
	}

	for _, d := range sortedDependencyNames(pkg) {
		if w.stopped {
			return
		}
		if w.configs != nil {
			if _, ok := w.configs[d]; !ok {
				continue
			}
		}
		child, ok := w.project.lookupByName(d)
		if !ok {
			continue
		}
		w.walk(child)
	}

	if w.childrenFirst && !w.stopped {
		if w.visit(pkg) {
			w.stopped = true
			return
		}
	}
}

// lookupByName finds a package (root or dependency) by name among those the
// Project already knows about. A dependency name the Reinit pass never
// materialized (a missing selection, or a package the manager could not
// produce) is absent, and Walk simply does not recurse into it.
func (p *Project) lookupByName(name string) (metadata.Package, bool) {
	pkg, ok := p.byName[name]
	return pkg, ok
}

func sortedDependencyNames(pkg metadata.Package) []string {
	deps := pkg.Dependencies()
	names := make([]string, 0, len(deps))
	for d := range deps {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}
