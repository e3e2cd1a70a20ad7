package dub

import (
	"github.com/vporton/dub/configgraph"
	"github.com/vporton/dub/metadata"
)

// GetPackageConfigs runs the configuration resolver over the project's
// dependency graph. root, if nil, defaults to p.Root — callers
// that need to resolve against a substitute root package (the
// build-settings aggregator's "override root Package" input) pass it
// explicitly instead of mutating the Project.
func (p *Project) GetPackageConfigs(root metadata.Package, platform metadata.Platform, forcedRootConfig string, allowNonLibrary bool) (map[string]string, error) {
	if root == nil {
		root = p.Root
	}

	lookup := p.lookupByName
	if root.Name() != p.Root.Name() {
		// An override root not already part of the project's own name
		// index (the common case: substituting a different configuration
		// root for aggregation) still needs to resolve via itself.
		lookup = func(name string) (metadata.Package, bool) {
			if name == root.Name() {
				return root, true
			}
			return p.lookupByName(name)
		}
	}

	configs, err := configgraph.Resolve(root, p.order, lookup, p.ParentNames, platform, forcedRootConfig, allowNonLibrary)
	if err != nil {
		if ue, ok := err.(*configgraph.UnresolvableError); ok {
			return nil, &UnresolvableError{Package: ue.Package}
		}
		return nil, err
	}
	return configs, nil
}
