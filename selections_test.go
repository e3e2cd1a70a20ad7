package dub_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vporton/dub"
)

// Lockfile round-trip invariant: load(save(S)) == S for a store with only
// version-valued entries.
func TestSelectedVersionsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dub.selections.json")

	sv := dub.NewSelectedVersions()
	sv.Select("a", "1.0.0")
	sv.Select("b", "2.3.4")

	if err := sv.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := dub.NewSelectedVersions()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range []string{"a", "b"} {
		want, err := sv.SelectedVersion(name)
		if err != nil {
			t.Fatalf("SelectedVersion(%q) on original: %v", name, err)
		}
		got, err := loaded.SelectedVersion(name)
		if err != nil {
			t.Fatalf("SelectedVersion(%q) on reloaded: %v", name, err)
		}
		if got != want {
			t.Errorf("round-trip mismatch for %q: got %+v, want %+v", name, got, want)
		}
	}
}

// Local-path selections round-trip too.
func TestSelectedVersionsRoundTripWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dub.selections.json")

	sv := dub.NewSelectedVersions()
	sv.SelectPath("local", "0.0.0", "../local/sibling")

	if err := sv.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := dub.NewSelectedVersions()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := loaded.SelectedVersion("local")
	if err != nil {
		t.Fatalf("SelectedVersion: %v", err)
	}
	if got.Version != "0.0.0" || got.Path != "../local/sibling" {
		t.Errorf("got %+v, want {Version:0.0.0 Path:../local/sibling}", got)
	}
}

// The lockfile must round-trip a bare version-string entry unchanged,
// whatever shape the version-range solver emitted it in.
func TestSelectedVersionsBareStringShapePreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dub.selections.json")
	raw := `{"fileVersion":1,"versions":{"a":"1.0.0"}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	sv := dub.NewSelectedVersions()
	if err := sv.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sv.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	versions := doc["versions"].(map[string]interface{})
	if _, isString := versions["a"].(string); !isString {
		t.Errorf("versions[\"a\"] = %#v, want a bare string", versions["a"])
	}
}

// Scenario 6: lockfile version mismatch fails load, and clears the store.
func TestSelectedVersionsFileVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dub.selections.json")
	if err := os.WriteFile(path, []byte(`{"fileVersion":99,"versions":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	sv := dub.NewSelectedVersions()
	sv.Select("leftover", "1.0.0")

	err := sv.Load(path)
	if err == nil {
		t.Fatal("Load: expected *FileVersionMismatchError, got nil")
	}
	if _, ok := err.(*dub.FileVersionMismatchError); !ok {
		t.Fatalf("Load: got error of type %T, want *dub.FileVersionMismatchError", err)
	}
	if sv.HasSelected("leftover") {
		t.Error("store should be empty after a failed load")
	}
}

func TestSelectedVersionsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dub.selections.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	sv := dub.NewSelectedVersions()
	err := sv.Load(path)
	if _, ok := err.(*dub.MalformedError); !ok {
		t.Fatalf("Load: got error of type %T, want *dub.MalformedError", err)
	}
}

func TestSelectedVersionsNotSelected(t *testing.T) {
	sv := dub.NewSelectedVersions()
	_, err := sv.SelectedVersion("missing")
	if _, ok := err.(*dub.NotSelectedError); !ok {
		t.Fatalf("SelectedVersion: got error of type %T, want *dub.NotSelectedError", err)
	}
}
