package dub

import "github.com/vporton/dub/metadata"

// IsRedundantDependency reports whether pkg's declared dependency on dep is
// redundant: true iff some other dependency of pkg transitively depends on
// dep. It only considers packages the graph actually materialized (via
// Reinit); a dependency name that was never resolved to a Package cannot
// contribute to the transitive closure.
func (p *Project) IsRedundantDependency(pkg, dep metadata.Package) bool {
	targetName := dep.Name()
	for _, name := range sortedDependencyNames(pkg) {
		if name == targetName {
			continue
		}
		other, ok := p.lookupByName(name)
		if !ok {
			continue
		}
		if p.transitivelyDependsOn(other, targetName, make(map[string]bool)) {
			return true
		}
	}
	return false
}

// transitivelyDependsOn reports whether pkg (or anything reachable from it)
// declares target as a dependency. visited guards against cycles in
// declared dependencies.
func (p *Project) transitivelyDependsOn(pkg metadata.Package, target string, visited map[string]bool) bool {
	if visited[pkg.Name()] {
		return false
	}
	visited[pkg.Name()] = true

	for _, name := range sortedDependencyNames(pkg) {
		if name == target {
			return true
		}
		child, ok := p.lookupByName(name)
		if !ok {
			continue
		}
		if p.transitivelyDependsOn(child, target, visited) {
			return true
		}
	}
	return false
}
