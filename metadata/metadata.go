// Package metadata defines the interface boundary between the project model
// and configuration resolver in this module and the package metadata layer
// that parses on-disk package descriptions (dub.json/dub.sdl and friends).
//
// Nothing in this package parses a manifest, talks to a registry, or fetches
// source. It only describes the shape of data the resolver and aggregator
// need, so that both a real metadata adapter and an in-memory test fixture
// can satisfy it.
package metadata

import (
	"context"
	"fmt"
	"strings"
)

// Platform describes the OS/architecture/compiler triple a build targets.
// Evaluating a configuration's platform predicate against a Platform is the
// metadata layer's job; the core only ever asks a Package whether a given
// configuration is admissible under a Platform via Lens, which in turn
// calls Matches rather than comparing fields directly.
type Platform struct {
	OS       string
	Arch     string
	Compiler string
}

// String renders the platform the way dub's own diagnostics do:
// "os-arch-compiler", e.g. "linux-x86_64-ldc".
func (p Platform) String() string {
	return p.OS + "-" + p.Arch + "-" + p.Compiler
}

// Matches evaluates a package's platform predicate string against p. An
// empty expr is admissible everywhere. Otherwise expr is a space-separated
// list of alternatives (OR); each alternative is a hyphen-joined sequence of
// up to three components (os, arch, compiler), matched in order (AND) -
// a component left blank ("linux--ldc", "linux-x86_64-") matches anything,
// and the trailing components of an alternative may simply be omitted
// ("linux", "linux-x86_64"). The OS component "posix" is a meta-OS matching
// every OS except "windows", mirroring dub's own manifest convention.
//
// Matches returns an error only for a malformed alternative (more than
// three hyphen-separated components).
func (p Platform) Matches(expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}

	for _, alt := range strings.Fields(expr) {
		parts := strings.Split(alt, "-")
		if len(parts) > 3 {
			return false, fmt.Errorf("metadata: malformed platform expression %q", alt)
		}

		matched := true
		if os := parts[0]; os != "" && os != p.OS && !(os == "posix" && p.OS != "windows") {
			matched = false
		}
		if matched && len(parts) > 1 && parts[1] != "" && parts[1] != p.Arch {
			matched = false
		}
		if matched && len(parts) > 2 && parts[2] != "" && parts[2] != p.Compiler {
			matched = false
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// DependencySpec is a package's declaration of a single dependency: a
// version-range expression (already resolved to a pinned version by the time
// it reaches SelectedVersions, but carried here in its declared form),
// whether the dependency is optional, and an optional local filesystem path
// override.
type DependencySpec struct {
	VersionSpec string
	Optional    bool
	Path        string
}

// Settings is the set of per-package, per-configuration build settings the
// metadata layer exposes, and also the shape of the aggregated recipe the
// buildsettings package produces. The append-only slice fields are merged by
// concatenation across the dependency graph; the single-valued fields are
// only ever populated from the root package.
type Settings struct {
	CompilerFlags           []string
	LinkerFlags             []string
	Libraries               []string
	SourceFiles             []string
	ImportPaths             []string
	StringImportPaths       []string
	VersionIdentifiers      []string
	DebugVersionIdentifiers []string
	PreGenerateCommands     []string
	PostGenerateCommands    []string
	PreBuildCommands        []string
	PostBuildCommands       []string
	RequirementFlags        []string
	OptionFlags             []string

	// TargetType is one of "executable", "library", "sourceLibrary",
	// "staticLibrary", "dynamicLibrary", or "none". In the aggregated recipe
	// it is only ever set from the root package.
	TargetType       string
	TargetPath       string
	TargetName       string
	WorkingDirectory string
	MainSourceFile   string
}

// ConfigLens is what a Package returns for one (platform, configuration)
// pair: whether the configuration is admissible under that platform, which
// subconfiguration (if any) it pins for each of the package's dependencies,
// and the configuration's own build settings.
type ConfigLens struct {
	Admissible bool
	// Pins maps a dependency name to the single subconfiguration name this
	// configuration requires for that dependency. A dependency absent from
	// Pins is unconstrained: any of its platform-admissible configurations
	// is a candidate.
	Pins     map[string]string
	Settings Settings
}

// Package is the read-only view of a single package version the resolver and
// aggregator operate against.
type Package interface {
	Name() string
	Version() string
	// Path is the absolute filesystem path to the package's root directory,
	// used for $PACKAGE_DIR expansion and for resolving relative local-path
	// dependency overrides declared by this package.
	Path() string
	// Configurations returns the package's declared configuration names in
	// declaration order. Order matters: it is the tie-break the resolver
	// uses when more than one configuration of a package would otherwise
	// survive elimination.
	Configurations() []string
	// Dependencies returns the package's declared dependency map.
	Dependencies() map[string]DependencySpec
	// Lens evaluates this package's configuration `config` against
	// `platform`. It is an error to call Lens with a config not present in
	// Configurations().
	Lens(platform Platform, config string) (ConfigLens, error)
}

// ToolchainRequirement is informational compiler/frontend pinning metadata.
// The core never enforces it; it is surfaced for upstream tooling (and for
// the local toolchain override file, see dub.LoadToolchainOverrides) to
// consume. A value of "no" for a compiler key means that compiler must not
// be used for the owning package.
type ToolchainRequirement struct {
	Dub      string
	Frontend string
	DMD      string
	LDC      string
	GDC      string
}

// PackageManager is the external collaborator able to materialize Packages:
// the on-disk cache, fetcher, and registry client that live outside this
// package. The dependency graph builder is the only consumer.
type PackageManager interface {
	// PackageFor returns the best matching installed Package for name
	// pinned at the given (already-resolved) version. ok is false if no
	// such package is installed; err is reserved for hard failures.
	PackageFor(ctx context.Context, name, version string) (pkg Package, ok bool, err error)

	// PackageAt wraps the directory at path as a temporary Package bound to
	// version, for SelectedVersions entries that carry a local path
	// override. ok is false if path does not resolve to a usable package.
	PackageAt(ctx context.Context, path, version string) (pkg Package, ok bool, err error)
}
