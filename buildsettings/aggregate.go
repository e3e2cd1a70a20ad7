// Package buildsettings implements the build-settings aggregator: a walk of
// the resolved configuration graph that merges each package's
// per-configuration settings into one flat build recipe, with
// $VAR/$PACKAGE_DIR expansion along the way.
package buildsettings

import (
	"github.com/pkg/errors"

	"github.com/vporton/dub"
	"github.com/vporton/dub/internal/dublog"
	"github.com/vporton/dub/metadata"
)

// Options carries the aggregator's inputs.
type Options struct {
	Platform   metadata.Platform
	RootConfig string // forced root configuration name, or "" for unforced

	// AllowNonLibrary permits the root package to resolve to a non-library
	// configuration (executable, unittest, ...).
	AllowNonLibrary bool

	// Shallow drops source file lists from every non-root package's merged
	// settings (headers/imports only), and relaxes EmptyTarget into a
	// no-op instead of a hard failure.
	Shallow bool

	// OverrideRoot substitutes a different Package as the resolution root,
	// leaving proj.Root untouched. Nil means use proj.Root.
	OverrideRoot metadata.Package

	// Env resolves $NAME bindings. Nil defaults to OSEnv.
	Env Env
}

// Aggregate resolves configurations, walks parents-before-children, merges
// append-only fields with $VAR expansion, copies the root's single-valued
// target fields, and finishes with an unconditional second pass over
// version identifiers.
func Aggregate(proj *dub.Project, opts Options, log *dublog.Logger) (*metadata.Settings, error) {
	if log == nil {
		log = dublog.New(nil)
	}
	env := opts.Env
	if env == nil {
		env = OSEnv
	}

	root := opts.OverrideRoot
	if root == nil {
		root = proj.Root
	}

	configs, err := proj.GetPackageConfigs(root, opts.Platform, opts.RootConfig, opts.AllowNonLibrary)
	if err != nil {
		return nil, err
	}

	recipe := &metadata.Settings{}
	rootName := root.Name()

	var walkErr error
	proj.Walk(root, false, configs, func(pkg metadata.Package) bool {
		cfgName, ok := configs[pkg.Name()]
		if !ok {
			// The resolver's completeness check already guarantees every
			// package Walk can reach has an entry; this defends against a
			// caller-supplied configs map that doesn't match proj.
			return false
		}

		recipe.VersionIdentifiers = append(recipe.VersionIdentifiers, "Have_"+sanitizeIdentifier(pkg.Name()))

		lens, err := pkg.Lens(opts.Platform, cfgName)
		if err != nil {
			walkErr = errors.Wrapf(err, "dub/buildsettings: evaluating %q configuration %q", pkg.Name(), cfgName)
			return true
		}

		isRoot := pkg.Name() == rootName
		if lens.Settings.TargetType == "none" {
			if isRoot && !opts.Shallow {
				walkErr = &dub.EmptyTargetError{Package: pkg.Name(), Config: cfgName, TargetType: lens.Settings.TargetType}
				return true
			}
			// Per-package merging is skipped, but traversal continues so
			// descendants still contribute version identifiers.
			return false
		}

		settings := lens.Settings
		if opts.Shallow && !isRoot {
			settings.SourceFiles = nil
		}

		if err := mergeAppendOnly(recipe, pkg, settings, env); err != nil {
			walkErr = err
			return true
		}

		if len(settings.ImportPaths) == 0 {
			log.With("package", pkg.Name()).Warnf("dub: package %q declares no import paths", pkg.Name())
		}
		if isRoot && settings.TargetType == "executable" && settings.MainSourceFile == "" {
			log.With("package", pkg.Name()).Warn("dub: root executable configuration has no mainSourceFile")
		}

		if isRoot {
			if settings.TargetType == "none" || settings.TargetType == "sourceLibrary" {
				if !opts.Shallow {
					walkErr = &dub.EmptyTargetError{Package: pkg.Name(), Config: cfgName, TargetType: settings.TargetType}
					return true
				}
			}

			dir := pkg.Path()
			targetPath, err := expandOrEmpty(settings.TargetPath, dir, env, true)
			if err != nil {
				walkErr = err
				return true
			}
			targetName, err := expandOrEmpty(settings.TargetName, dir, env, false)
			if err != nil {
				walkErr = err
				return true
			}
			workingDirectory, err := expandOrEmpty(settings.WorkingDirectory, dir, env, true)
			if err != nil {
				walkErr = err
				return true
			}
			mainSourceFile, err := expandOrEmpty(settings.MainSourceFile, dir, env, true)
			if err != nil {
				walkErr = err
				return true
			}

			recipe.TargetType = settings.TargetType
			recipe.TargetPath = targetPath
			recipe.TargetName = targetName
			recipe.WorkingDirectory = workingDirectory
			recipe.MainSourceFile = mainSourceFile
		}
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}

	// Second pass: merge declared version identifiers unconditionally,
	// including from packages whose target type was "none" and so were
	// skipped above.
	proj.Walk(root, false, configs, func(pkg metadata.Package) bool {
		cfgName, ok := configs[pkg.Name()]
		if !ok {
			return false
		}
		lens, err := pkg.Lens(opts.Platform, cfgName)
		if err != nil {
			walkErr = errors.Wrapf(err, "dub/buildsettings: evaluating %q configuration %q", pkg.Name(), cfgName)
			return true
		}
		if lens.Settings.TargetType != "none" {
			// Already merged in full during the first pass.
			return false
		}
		for _, vi := range lens.Settings.VersionIdentifiers {
			expanded, err := expandOrEmpty(vi, pkg.Path(), env, false)
			if err != nil {
				walkErr = err
				return true
			}
			recipe.VersionIdentifiers = append(recipe.VersionIdentifiers, expanded)
		}
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return recipe, nil
}

func expandOrEmpty(s, dir string, env Env, asPath bool) (string, error) {
	if s == "" {
		return "", nil
	}
	return Expand(s, dir, env, asPath)
}

// mergeAppendOnly expands and concatenates every append-only field of s into
// recipe, in declaration order of metadata.Settings.
func mergeAppendOnly(recipe *metadata.Settings, pkg metadata.Package, s metadata.Settings, env Env) error {
	dir := pkg.Path()

	fields := []struct {
		dst    *[]string
		src    []string
		isPath bool
	}{
		{&recipe.CompilerFlags, s.CompilerFlags, false},
		{&recipe.LinkerFlags, s.LinkerFlags, false},
		{&recipe.Libraries, s.Libraries, false},
		{&recipe.SourceFiles, s.SourceFiles, true},
		{&recipe.ImportPaths, s.ImportPaths, true},
		{&recipe.StringImportPaths, s.StringImportPaths, true},
		{&recipe.VersionIdentifiers, s.VersionIdentifiers, false},
		{&recipe.DebugVersionIdentifiers, s.DebugVersionIdentifiers, false},
		{&recipe.PreGenerateCommands, s.PreGenerateCommands, false},
		{&recipe.PostGenerateCommands, s.PostGenerateCommands, false},
		{&recipe.PreBuildCommands, s.PreBuildCommands, false},
		{&recipe.PostBuildCommands, s.PostBuildCommands, false},
		{&recipe.RequirementFlags, s.RequirementFlags, false},
		{&recipe.OptionFlags, s.OptionFlags, false},
	}

	for _, f := range fields {
		for _, v := range f.src {
			expanded, err := Expand(v, dir, env, f.isPath)
			if err != nil {
				return errors.Wrapf(err, "dub/buildsettings: expanding settings for %q", pkg.Name())
			}
			*f.dst = append(*f.dst, expanded)
		}
	}
	return nil
}
