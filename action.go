package dub

import "fmt"

// ActionKind tags the shape of an Action: the fetch layer's pending-work
// type is a tagged sum rather than a struct of nullable fields.
type ActionKind int

const (
	// ActionFetch requests that the fetch layer materialize a package.
	ActionFetch ActionKind = iota
	// ActionRemove requests that the fetch layer remove a cached package.
	ActionRemove
	// ActionConflict reports that the version materialized for a package
	// disagrees with the version its dependency spec selects.
	ActionConflict
	// ActionFailure reports that the fetch layer's prior attempt failed.
	ActionFailure
)

func (k ActionKind) String() string {
	switch k {
	case ActionFetch:
		return "fetch"
	case ActionRemove:
		return "remove"
	case ActionConflict:
		return "conflict"
	case ActionFailure:
		return "failure"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// PlacementScope is where a fetched package is or should be stored.
type PlacementScope int

const (
	PlacementLocal PlacementScope = iota
	PlacementUserWide
	PlacementSystemWide
)

// Action is a single unit of work or diagnosis the core hands to an external
// fetcher. The core never consumes Actions; it only produces them as a
// byproduct of graph construction (see Reinit's conflict detection).
//
// Accessors are kind-specific and panic when called against the wrong kind,
// rather than exposing every field unconditionally.
type Action struct {
	kind    ActionKind
	pkg     string
	scope   PlacementScope
	spec    string
	context string

	installedVersion string
	hasInstalled     bool
}

// NewFetchAction builds an ActionFetch.
func NewFetchAction(pkg string, scope PlacementScope, spec, context string) Action {
	return Action{kind: ActionFetch, pkg: pkg, scope: scope, spec: spec, context: context}
}

// NewRemoveAction builds an ActionRemove.
func NewRemoveAction(pkg string, scope PlacementScope, context string) Action {
	return Action{kind: ActionRemove, pkg: pkg, scope: scope, context: context}
}

// NewConflictAction builds an ActionConflict, optionally carrying the
// version already installed/selected for pkg.
func NewConflictAction(pkg, spec, context string, installedVersion string) Action {
	return Action{kind: ActionConflict, pkg: pkg, spec: spec, context: context, installedVersion: installedVersion, hasInstalled: installedVersion != ""}
}

// NewFailureAction builds an ActionFailure.
func NewFailureAction(pkg, context string) Action {
	return Action{kind: ActionFailure, pkg: pkg, context: context}
}

func (a Action) Kind() ActionKind       { return a.kind }
func (a Action) Package() string        { return a.pkg }
func (a Action) Context() string        { return a.context }
func (a Action) DependencySpec() string { return a.spec }

// Scope is valid for ActionFetch and ActionRemove; it panics otherwise.
func (a Action) Scope() PlacementScope {
	if a.kind != ActionFetch && a.kind != ActionRemove {
		panic(fmt.Sprintf("dub: Scope() called on a %s Action", a.kind))
	}
	return a.scope
}

// InstalledVersion is valid for ActionConflict; ok is false if no version was
// already installed. Panics for any other kind.
func (a Action) InstalledVersion() (version string, ok bool) {
	if a.kind != ActionConflict {
		panic(fmt.Sprintf("dub: InstalledVersion() called on a %s Action", a.kind))
	}
	return a.installedVersion, a.hasInstalled
}
