package dub

import (
	"io/ioutil"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

// glideLock is the subset of glide.lock's schema needed to migrate a legacy
// YAML-based lockfile into a SelectedVersions: a flat list of
// {name, version} pairs, once for direct imports and once for test-only
// imports.
type glideLock struct {
	Imports     []glideLockedPackage `yaml:"imports"`
	TestImports []glideLockedPackage `yaml:"testImports"`
}

type glideLockedPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ImportGlideLock reads a glide.lock file at path and returns the
// equivalent SelectedVersions, for projects migrating off that older
// YAML-based lockfile format onto dub.selections.json. Entries already
// present via Imports take priority over a same-named TestImports entry.
func ImportGlideLock(path string) (*SelectedVersions, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "dub: could not read glide lockfile")
	}

	var lock glideLock
	if err := yaml.Unmarshal(b, &lock); err != nil {
		return nil, &MalformedError{Err: err}
	}

	sv := NewSelectedVersions()
	for _, pkg := range lock.Imports {
		if pkg.Name == "" {
			continue
		}
		sv.Select(pkg.Name, pkg.Version)
	}
	for _, pkg := range lock.TestImports {
		if pkg.Name == "" || sv.HasSelected(pkg.Name) {
			continue
		}
		sv.Select(pkg.Name, pkg.Version)
	}
	return sv, nil
}
