package dub

import (
	"strings"

	"github.com/Masterminds/semver"
	"github.com/Masterminds/vcs"

	"github.com/vporton/dub/internal/dublog"
	"github.com/vporton/dub/metadata"
)

// specialCompilerFlags are flags dub itself derives from the build settings
// model (target type, debug/release mode, unittest configuration) and so
// duplicates when a package also passes them by hand.
var specialCompilerFlags = []string{
	"-debug", "-release", "-unittest", "-cov", "-of", "-od", "-lib",
}

// lintRoot runs the non-fatal diagnostics attached to graph construction: a
// non-lowercase root package name, dependencies pinned to a branch rather
// than a numbered version, and use of compiler flags dub itself would
// otherwise derive. None of these ever fail Reinit.
func lintRoot(root metadata.Package, sel *SelectedVersions, log *dublog.Logger) {
	if log == nil {
		log = dublog.New(nil)
	}

	name := root.Name()
	if strings.ToLower(name) != name {
		log.With("package", name).Warn("dub: root package name should be all lowercase")
	}

	for depName := range root.Dependencies() {
		if !sel.HasSelected(depName) {
			continue
		}
		selv, err := sel.SelectedVersion(depName)
		if err != nil {
			continue
		}
		if selv.Path != "" {
			// A local-path override points at a real working copy on disk,
			// so its reference can actually be classified as a branch or a
			// tag instead of guessed from its shape.
			if kind, ok := classifyGitReference(selv.Path, selv.Version); ok && kind == "branch" {
				log.With("dependency", depName).Warnf("dub: local dependency %q is pinned to git branch %q rather than a tag", depName, selv.Version)
			}
			continue
		}
		if _, err := semver.NewVersion(selv.Version); err != nil {
			log.With("dependency", depName).Warnf("dub: dependency %q is pinned to branch %q rather than a numbered version", depName, selv.Version)
		}
	}

	for _, cfg := range root.Configurations() {
		lens, err := root.Lens(metadata.Platform{}, cfg)
		if err != nil || !lens.Admissible {
			continue
		}
		for _, flag := range lens.Settings.CompilerFlags {
			for _, special := range specialCompilerFlags {
				if flag == special || strings.HasPrefix(flag, special+"=") || strings.HasPrefix(flag, special+"-") {
					log.With("configuration", cfg).Warnf("dub: compiler flag %q is normally derived by dub; specifying it directly may conflict", flag)
				}
			}
		}
	}
}

// classifyGitReference reports whether version names a git tag or some other
// reference (branch or bare commit) in the working copy at path. ok is false
// whenever the classification cannot be made (path is not a git working
// copy, the git binary is unavailable, or version names no reference there
// at all) - callers must treat that as "don't know", not as "it's a branch".
//
// GitRepo.Branches only enumerates the RemoteLocation's tracking refs, which
// a bare local working copy (no configured "origin") never has, so branches
// are identified as "IsReference but not a Tag" rather than by name lookup.
func classifyGitReference(path, version string) (kind string, ok bool) {
	if t, err := vcs.DetectVcsFromFS(path); err != nil || t != vcs.Git {
		return "", false
	}

	repo, err := vcs.NewGitRepo("", path)
	if err != nil {
		// NewGitRepo also fails (by the vendored library's own design) when
		// the local checkout has no "origin" remote configured at all; that
		// degrades to "don't know" rather than a hard error here.
		return "", false
	}

	if tags, err := repo.Tags(); err == nil {
		for _, tag := range tags {
			if tag == version {
				return "tag", true
			}
		}
	}
	if repo.IsReference(version) {
		return "branch", true
	}
	return "", false
}
