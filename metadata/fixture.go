package metadata

import (
	"context"
	"fmt"
)

// FixturePackage is an in-memory Package used by tests across this module
// (and available to any embedder that already has fully-loaded metadata and
// wants to drive the resolver without writing an adapter). It is built with
// FixtureConfig, in the same terse, panic-on-bad-input spirit as the
// teacher's own bestiary test helpers: fixtures are meant to be built
// tersely inline in table-driven tests, not validated defensively.
type FixturePackage struct {
	name    string
	version string
	path    string
	order   []string
	deps    map[string]DependencySpec
	configs map[string]FixtureConfig
}

// FixtureConfig describes one configuration of a FixturePackage.
type FixtureConfig struct {
	// Platform, if non-empty, is the platform predicate expression this
	// configuration is admissible under (see Platform.Matches). An empty
	// string means admissible everywhere.
	Platform string
	Pins     map[string]string
	Settings Settings
}

// NewFixturePackage builds a FixturePackage. order is the declaration order
// of the configurations in configs.
func NewFixturePackage(name, version, path string, deps map[string]DependencySpec, configs map[string]FixtureConfig, order []string) *FixturePackage {
	for _, c := range order {
		if _, ok := configs[c]; !ok {
			panic(fmt.Sprintf("dub/metadata: fixture %s declares order entry %q with no matching config", name, c))
		}
	}
	return &FixturePackage{name: name, version: version, path: path, order: order, deps: deps, configs: configs}
}

func (f *FixturePackage) Name() string    { return f.name }
func (f *FixturePackage) Version() string { return f.version }
func (f *FixturePackage) Path() string    { return f.path }

func (f *FixturePackage) Configurations() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *FixturePackage) Dependencies() map[string]DependencySpec {
	out := make(map[string]DependencySpec, len(f.deps))
	for k, v := range f.deps {
		out[k] = v
	}
	return out
}

func (f *FixturePackage) Lens(platform Platform, config string) (ConfigLens, error) {
	c, ok := f.configs[config]
	if !ok {
		return ConfigLens{}, fmt.Errorf("dub/metadata: fixture %s has no configuration %q", f.name, config)
	}

	admissible, err := platform.Matches(c.Platform)
	if err != nil {
		return ConfigLens{}, fmt.Errorf("dub/metadata: fixture %s configuration %q: %w", f.name, config, err)
	}

	return ConfigLens{
		Admissible: admissible,
		Pins:       c.Pins,
		Settings:   c.Settings,
	}, nil
}

// FixtureManager is a PackageManager backed by a fixed set of
// FixturePackages. It ignores the requested version (fixtures are meant to
// represent exactly one version per name). PackageFor looks a fixture up by
// name; PackageAt looks it up by its fixture path, with no access to the
// real disk.
type FixtureManager struct {
	byName map[string]*FixturePackage
}

// NewFixtureManager indexes pkgs by name.
func NewFixtureManager(pkgs ...*FixturePackage) *FixtureManager {
	m := &FixtureManager{byName: make(map[string]*FixturePackage, len(pkgs))}
	for _, p := range pkgs {
		m.byName[p.name] = p
	}
	return m
}

func (m *FixtureManager) PackageFor(_ context.Context, name, _ string) (Package, bool, error) {
	p, ok := m.byName[name]
	return p, ok, nil
}

func (m *FixtureManager) PackageAt(_ context.Context, path, version string) (Package, bool, error) {
	for _, p := range m.byName {
		if p.path == path {
			return p, true, nil
		}
	}
	return nil, false, nil
}
