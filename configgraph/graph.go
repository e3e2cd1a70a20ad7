// Package configgraph implements the configuration resolver: a
// constraint-satisfaction core that enumerates every (package, configuration)
// vertex admissible under a target platform, wires edges meaning "parent
// configuration permits child configuration", and then eliminates vertices
// by a deterministic fixed-point procedure until exactly one configuration
// survives per reachable package.
//
// The package knows nothing about how packages were fetched or selected; it
// operates purely on the metadata.Package interface plus two small
// caller-supplied lookups (package-by-name, parents-of-name), exactly the
// shape dub.Project already exposes.
package configgraph

import (
	"sort"

	"github.com/vporton/dub/metadata"
)

// Vertex is a (package, configuration) pair, indexed by creation order. Order
// is the resolver's tie-break: lower index wins whenever more than one
// vertex of the same package survives elimination.
type Vertex struct {
	Package string
	Config  string
}

// Edge is an ordered pair of vertex indices meaning "the parent vertex
// permits the child vertex".
type Edge struct {
	From, To int
}

// Lookup resolves a package name to its metadata.Package, if that package is
// part of the project graph being resolved. It returns ok=false for
// dependencies that were never materialized (a missing selection, or a
// package the manager could not produce) — the resolver treats those
// exactly as absent.
type Lookup func(name string) (metadata.Package, bool)

// Parents returns the set of package names that declare name as a
// dependency (dub.Project.ParentNames). The root package has no required
// parents.
type Parents func(name string) []string

// libraryLikeTargetTypes are the target types eligible for the root package
// when allow_non_library is false. Any other target type (executable, none,
// ...) requires the caller to opt in.
var libraryLikeTargetTypes = map[string]bool{
	"":               true, // metadata adapters may leave this blank for a plain library
	"library":        true,
	"staticLibrary":  true,
	"dynamicLibrary": true,
	"sourceLibrary":  true,
}

// Graph is the mutable vertex+edge arena built and eliminated by Resolve. It
// is exported only so tests can inspect intermediate structure; callers of
// Resolve never need it directly.
type Graph struct {
	Vertices []Vertex
	Edges    []Edge
}

// Resolve runs the full algorithm: construction, elimination, and a final
// completeness check. reachable is every package the completeness check
// must account for, in the order the caller wants failures reported
// (normally children-first topological order, with root first or last —
// dub.Project.Packages() order is fine).
//
// forcedRootConfig, if non-empty, restricts the root package's candidate
// configurations to exactly that name; allowNonLibrary permits the root to
// pick a non-library-like configuration (executable, unittest, ...).
func Resolve(root metadata.Package, reachable []metadata.Package, lookup Lookup, parentsOf Parents, platform metadata.Platform, forcedRootConfig string, allowNonLibrary bool) (map[string]string, error) {
	b := &builder{
		platform:        platform,
		lookup:          lookup,
		allowNonLibrary: allowNonLibrary,
		rootName:        root.Name(),
		forcedRoot:      forcedRootConfig,
		visiting:        make(map[string]bool),
		done:            make(map[string]bool),
	}
	if err := b.visit(root); err != nil {
		return nil, err
	}
	for _, pkg := range reachable {
		if err := b.visit(pkg); err != nil {
			return nil, err
		}
	}

	g := &Graph{Vertices: b.vertices, Edges: b.edges}
	eliminate(g, parentsOf, b.rootName)

	out := make(map[string]string, len(g.Vertices))
	for _, v := range g.Vertices {
		out[v.Package] = v.Config
	}

	all := append([]metadata.Package{root}, reachable...)
	for _, pkg := range all {
		if _, ok := out[pkg.Name()]; !ok {
			return nil, &UnresolvableError{Package: pkg.Name()}
		}
	}
	return out, nil
}

type builder struct {
	platform        metadata.Platform
	lookup          Lookup
	allowNonLibrary bool
	rootName        string
	forcedRoot      string

	vertices []Vertex
	edges    []Edge

	visiting map[string]bool
	done     map[string]bool
}

// visit implements the recursive vertex construction: children are fully
// enumerated before the parent's own vertices are added, so that
// edge-wiring can filter candidate children against vertices that already
// exist.
func (b *builder) visit(pkg metadata.Package) error {
	name := pkg.Name()
	if b.done[name] {
		return nil
	}
	if b.visiting[name] {
		// A cycle in declared dependencies. The package already being
		// processed further up the call stack will finish on its own;
		// re-entering here would not terminate.
		return nil
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	depNames := sortedDependencyNames(pkg)
	for _, d := range depNames {
		child, ok := b.lookup(d)
		if !ok {
			continue
		}
		if err := b.visit(child); err != nil {
			return err
		}
	}

	configs := pkg.Configurations()
	if name == b.rootName && b.forcedRoot != "" {
		configs = []string{b.forcedRoot}
	}

	for _, c := range configs {
		lens, err := pkg.Lens(b.platform, c)
		if err != nil {
			return err
		}
		if !lens.Admissible {
			continue
		}
		if name == b.rootName && !b.allowNonLibrary && !libraryLikeTargetTypes[lens.Settings.TargetType] {
			continue
		}

		type childEdge struct{ to int }
		var newEdges []childEdge
		feasible := true
		for _, d := range depNames {
			var candidates []string
			if pin, ok := lens.Pins[d]; ok {
				candidates = []string{pin}
			} else {
				child, ok := b.lookup(d)
				if !ok {
					// Dependency was never materialized; treat it as
					// absent, so it imposes no constraint on this
					// configuration's feasibility.
					continue
				}
				candidates = child.Configurations()
			}

			matched := false
			for _, cc := range candidates {
				idx, ok := b.findVertex(d, cc)
				if !ok {
					continue
				}
				newEdges = append(newEdges, childEdge{to: idx})
				matched = true
			}
			if !matched && b.hasAnyVertex(d) {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}

		vi := len(b.vertices)
		b.vertices = append(b.vertices, Vertex{Package: name, Config: c})
		for _, ne := range newEdges {
			b.edges = append(b.edges, Edge{From: vi, To: ne.to})
		}
	}

	b.done[name] = true
	return nil
}

func (b *builder) findVertex(pkg, config string) (int, bool) {
	for i, v := range b.vertices {
		if v.Package == pkg && v.Config == config {
			return i, true
		}
	}
	return 0, false
}

func (b *builder) hasAnyVertex(pkg string) bool {
	for _, v := range b.vertices {
		if v.Package == pkg {
			return true
		}
	}
	return false
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

// eliminate runs the two-phase fixed point (prune, then collapse) until
// every package remaining in g has exactly one vertex.
func eliminate(g *Graph, parentsOf Parents, rootName string) {
	for {
		prune(g, parentsOf, rootName)

		pkg, ok := firstMultiVertexPackage(g)
		if !ok {
			return
		}
		collapse(g, pkg)
	}
}

// prune repeatedly scans V left to right, removing every vertex not
// in-reachable by all parents, until a full pass removes nothing.
func prune(g *Graph, parentsOf Parents, rootName string) {
	for {
		removedAny := false
		for i := 0; i < len(g.Vertices); i++ {
			v := g.Vertices[i]
			if v.Package == rootName {
				continue
			}
			if inReachableByAllParents(g, i, parentsOf(v.Package)) {
				continue
			}
			removeVertex(g, i)
			removedAny = true
			i--
		}
		if !removedAny {
			return
		}
	}
}

func inReachableByAllParents(g *Graph, vertexIdx int, parents []string) bool {
	for _, parent := range parents {
		reached := false
		for _, e := range g.Edges {
			if e.To != vertexIdx {
				continue
			}
			if g.Vertices[e.From].Package == parent {
				reached = true
				break
			}
		}
		if !reached {
			return false
		}
	}
	return true
}

func firstMultiVertexPackage(g *Graph) (string, bool) {
	count := make(map[string]int, len(g.Vertices))
	for _, v := range g.Vertices {
		count[v.Package]++
	}
	seen := make(map[string]bool, len(g.Vertices))
	for _, v := range g.Vertices {
		if seen[v.Package] {
			continue
		}
		seen[v.Package] = true
		if count[v.Package] > 1 {
			return v.Package, true
		}
	}
	return "", false
}

// collapse keeps the first (lowest-index) surviving vertex of pkg and
// removes the rest.
func collapse(g *Graph, pkg string) {
	kept := false
	var toRemove []int
	for i, v := range g.Vertices {
		if v.Package != pkg {
			continue
		}
		if !kept {
			kept = true
			continue
		}
		toRemove = append(toRemove, i)
	}
	for i := len(toRemove) - 1; i >= 0; i-- {
		removeVertex(g, toRemove[i])
	}
}

// removeVertex deletes vertex i, drops every edge touching it, and
// renumbers the remaining edges to account for the shift.
func removeVertex(g *Graph, i int) {
	g.Vertices = append(g.Vertices[:i:i], g.Vertices[i+1:]...)

	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.From == i || e.To == i {
			continue
		}
		if e.From > i {
			e.From--
		}
		if e.To > i {
			e.To--
		}
		edges = append(edges, e)
	}
	g.Edges = edges
}
