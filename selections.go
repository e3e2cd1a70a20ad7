package dub

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/vporton/dub/internal/fs"
)

// SelectionsFileVersion is the only fileVersion this implementation will
// load. A lockfile with a different value fails with
// *FileVersionMismatchError.
const SelectionsFileVersion = 1

// SelectionsFileName is the lockfile's conventional basename.
const SelectionsFileName = "dub.selections.json"

// Selected is one resolved dependency: a pinned version, and optionally a
// local filesystem path the dependency should be read from instead of the
// package cache. Path survives a save/load cycle: the on-disk schema carries
// it explicitly instead of treating it as ephemeral.
type Selected struct {
	Version string
	Path    string
}

// SelectedVersions is the in-memory mapping of package name to pinned
// version (and optional local path) backing dub.selections.json. The zero
// value is ready to use.
type SelectedVersions struct {
	versions map[string]Selected
}

// NewSelectedVersions returns an empty store.
func NewSelectedVersions() *SelectedVersions {
	return &SelectedVersions{versions: make(map[string]Selected)}
}

type rawSelections struct {
	FileVersion int                 `json:"fileVersion"`
	Versions    map[string]rawEntry `json:"versions"`
}

// rawEntry unmarshals either a bare version string or a {"version",
// "path"} object. It marshals an entry without a path as a bare string and
// an entry with a path as a {"version", "path"} object, so a bare string
// selection stays a bare string on save. The shape an entry arrived in is
// not kept: an object entry without a path is saved as a bare string, and
// object fields other than version and path are dropped.
type rawEntry struct {
	Version string
	Path    string
}

func (e *rawEntry) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		e.Version = s
		e.Path = ""
		return nil
	}

	var obj struct {
		Version string `json:"version"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.Version, e.Path = obj.Version, obj.Path
	return nil
}

func (e rawEntry) MarshalJSON() ([]byte, error) {
	if e.Path == "" {
		return json.Marshal(e.Version)
	}
	return json.Marshal(struct {
		Version string `json:"version"`
		Path    string `json:"path"`
	}{e.Version, e.Path})
}

// Load reads and replaces the store's contents from path. On any failure the
// store is left empty, so a tool can still operate in write-only mode.
func (sv *SelectedVersions) Load(path string) error {
	lock := fs.FileLock(path)
	if err := lock.Lock(); err != nil {
		sv.versions = make(map[string]Selected)
		return errors.Wrap(err, "could not lock lockfile for reading")
	}
	defer lock.Unlock()

	f, err := os.Open(path)
	if err != nil {
		sv.versions = make(map[string]Selected)
		return err
	}
	defer f.Close()

	var raw rawSelections
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		sv.versions = make(map[string]Selected)
		return &MalformedError{Err: err}
	}

	if raw.FileVersion != SelectionsFileVersion {
		sv.versions = make(map[string]Selected)
		return &FileVersionMismatchError{Got: raw.FileVersion, Want: SelectionsFileVersion}
	}

	versions := make(map[string]Selected, len(raw.Versions))
	for name, e := range raw.Versions {
		versions[name] = Selected{Version: e.Version, Path: e.Path}
	}
	sv.versions = versions
	return nil
}

// Save atomically writes the store to path as a pretty-printed JSON document
// with fileVersion first. The write is guarded by a cross-process advisory
// lock (see internal/fs.FileLock) and replaces path via rename, never
// leaving a half-written file behind.
func (sv *SelectedVersions) Save(path string) error {
	lock := fs.FileLock(path)
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "could not lock lockfile for writing")
	}
	defer lock.Unlock()

	raw := rawSelections{
		FileVersion: SelectionsFileVersion,
		Versions:    make(map[string]rawEntry, len(sv.versions)),
	}
	for name, s := range sv.versions {
		raw.Versions[name] = rawEntry{Version: s.Version, Path: s.Path}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return errors.Wrap(err, "could not encode lockfile")
	}

	if err := fs.AtomicWriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "could not write lockfile")
	}
	return nil
}

// Select pins name at version, clearing any local path override.
func (sv *SelectedVersions) Select(name, version string) {
	sv.ensure()
	sv.versions[name] = Selected{Version: version}
}

// SelectPath pins name at version, sourced from the given local filesystem
// path.
func (sv *SelectedVersions) SelectPath(name, version, path string) {
	sv.ensure()
	sv.versions[name] = Selected{Version: version, Path: path}
}

// HasSelected reports whether name has an entry.
func (sv *SelectedVersions) HasSelected(name string) bool {
	_, ok := sv.versions[name]
	return ok
}

// SelectedVersion returns the Selected entry for name, or
// *NotSelectedError if absent.
func (sv *SelectedVersions) SelectedVersion(name string) (Selected, error) {
	s, ok := sv.versions[name]
	if !ok {
		return Selected{}, &NotSelectedError{Name: name}
	}
	return s, nil
}

// Clear drops all entries.
func (sv *SelectedVersions) Clear() {
	sv.versions = make(map[string]Selected)
}

// Names returns the selected package names, unordered.
func (sv *SelectedVersions) Names() []string {
	names := make([]string, 0, len(sv.versions))
	for n := range sv.versions {
		names = append(names, n)
	}
	return names
}

func (sv *SelectedVersions) ensure() {
	if sv.versions == nil {
		sv.versions = make(map[string]Selected)
	}
}
