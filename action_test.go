package dub_test

import (
	"context"
	"testing"

	"github.com/vporton/dub"
	"github.com/vporton/dub/metadata"
)

func TestActionAccessorsPanicOnWrongKind(t *testing.T) {
	fetch := dub.NewFetchAction("foo", dub.PlacementLocal, "^1.0.0", "root")
	if fetch.Kind() != dub.ActionFetch {
		t.Fatalf("Kind() = %v, want ActionFetch", fetch.Kind())
	}

	defer func() {
		if recover() == nil {
			t.Error("InstalledVersion() on a fetch Action should panic")
		}
	}()
	fetch.InstalledVersion()
}

func TestActionConflictCarriesInstalledVersion(t *testing.T) {
	conflict := dub.NewConflictAction("foo", "^1.0.0", "root", "1.2.3")
	version, ok := conflict.InstalledVersion()
	if !ok || version != "1.2.3" {
		t.Errorf("InstalledVersion() = (%q, %v), want (1.2.3, true)", version, ok)
	}
}

// Reinit surfaces an ActionConflict when the package manager materializes a
// version that disagrees with the recorded selection.
func TestReinitSurfacesConflictAction(t *testing.T) {
	dep := metadata.NewFixturePackage("dep", "1.5.0", "/dep", nil,
		map[string]metadata.FixtureConfig{"library": {Settings: metadata.Settings{TargetType: "library"}}},
		[]string{"library"})
	root := metadata.NewFixturePackage("root", "1.0.0", "/root",
		map[string]metadata.DependencySpec{"dep": {VersionSpec: "1.0.0"}},
		map[string]metadata.FixtureConfig{"library": {Settings: metadata.Settings{TargetType: "library"}}},
		[]string{"library"})

	pm := metadata.NewFixtureManager(dep)
	sel := dub.NewSelectedVersions()
	sel.Select("dep", "1.0.0") // disagrees with dep.Version() == "1.5.0"

	proj, err := dub.Reinit(context.Background(), root, sel, pm, nil)
	if err != nil {
		t.Fatalf("Reinit: %v", err)
	}

	actions := proj.Actions()
	if len(actions) != 1 {
		t.Fatalf("Actions() = %v, want exactly one conflict action", actions)
	}
	if actions[0].Kind() != dub.ActionConflict {
		t.Errorf("Kind() = %v, want ActionConflict", actions[0].Kind())
	}
	if actions[0].Package() != "dep" {
		t.Errorf("Package() = %q, want %q", actions[0].Package(), "dep")
	}
	installed, ok := actions[0].InstalledVersion()
	if !ok || installed != "1.5.0" {
		t.Errorf("InstalledVersion() = (%q, %v), want (1.5.0, true)", installed, ok)
	}
}
