package dub_test

import (
	"context"
	"testing"

	"github.com/vporton/dub"
	"github.com/vporton/dub/metadata"
)

// Root A declares direct dependencies on both B and D, but B itself depends
// on D, so A's direct dependency on D is redundant; A's dependency on B is
// not, since nothing else A depends on reaches B.
func TestIsRedundantDependency(t *testing.T) {
	d := metadata.NewFixturePackage("D", "1.0.0", "/D", nil,
		map[string]metadata.FixtureConfig{"library": {Settings: metadata.Settings{TargetType: "library"}}},
		[]string{"library"})
	b := metadata.NewFixturePackage("B", "1.0.0", "/B",
		map[string]metadata.DependencySpec{"D": {VersionSpec: "1.0.0"}},
		map[string]metadata.FixtureConfig{"library": {Settings: metadata.Settings{TargetType: "library"}}},
		[]string{"library"})
	a := metadata.NewFixturePackage("A", "1.0.0", "/A",
		map[string]metadata.DependencySpec{"B": {VersionSpec: "1.0.0"}, "D": {VersionSpec: "1.0.0"}},
		map[string]metadata.FixtureConfig{"library": {Settings: metadata.Settings{TargetType: "library"}}},
		[]string{"library"})

	pm := metadata.NewFixtureManager(b, d)
	sel := dub.NewSelectedVersions()
	sel.Select("B", "1.0.0")
	sel.Select("D", "1.0.0")

	proj, err := dub.Reinit(context.Background(), a, sel, pm, nil)
	if err != nil {
		t.Fatalf("Reinit: %v", err)
	}

	if !proj.IsRedundantDependency(a, d) {
		t.Error("IsRedundantDependency(A, D) = false, want true (B transitively depends on D)")
	}
	if proj.IsRedundantDependency(a, b) {
		t.Error("IsRedundantDependency(A, B) = true, want false (nothing else depends on B)")
	}
}

// A package with only one dependency can never have a redundant one: there
// is no "some other dependency" to supply the transitive path.
func TestIsRedundantDependencySingleDependencyNeverRedundant(t *testing.T) {
	a, b, _ := fixtureChain()
	pm := metadata.NewFixtureManager(b)
	sel := dub.NewSelectedVersions()
	sel.Select("B", "1.0.0")

	proj, err := dub.Reinit(context.Background(), a, sel, pm, nil)
	if err != nil {
		t.Fatalf("Reinit: %v", err)
	}

	if proj.IsRedundantDependency(a, b) {
		t.Error("IsRedundantDependency(A, B) = true, want false (A has only one dependency)")
	}
}
