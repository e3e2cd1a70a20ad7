package dub_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vporton/dub"
)

const sampleGlideLock = `
imports:
- name: github.com/foo/bar
  version: 1.2.3
testImports:
- name: github.com/foo/bar
  version: 9.9.9
- name: github.com/only/test
  version: 4.5.6
`

func TestImportGlideLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glide.lock")
	if err := os.WriteFile(path, []byte(sampleGlideLock), 0o644); err != nil {
		t.Fatal(err)
	}

	sv, err := dub.ImportGlideLock(path)
	if err != nil {
		t.Fatalf("ImportGlideLock: %v", err)
	}

	selv, err := sv.SelectedVersion("github.com/foo/bar")
	if err != nil {
		t.Fatalf("SelectedVersion: %v", err)
	}
	if selv.Version != "1.2.3" {
		t.Errorf("github.com/foo/bar version = %q, want %q (imports should win over testImports)", selv.Version, "1.2.3")
	}

	selv, err = sv.SelectedVersion("github.com/only/test")
	if err != nil {
		t.Fatalf("SelectedVersion: %v", err)
	}
	if selv.Version != "4.5.6" {
		t.Errorf("github.com/only/test version = %q, want %q", selv.Version, "4.5.6")
	}
}

func TestImportGlideLockMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glide.lock")
	if err := os.WriteFile(path, []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := dub.ImportGlideLock(path)
	if _, ok := err.(*dub.MalformedError); !ok {
		t.Fatalf("ImportGlideLock: got error of type %T, want *dub.MalformedError", err)
	}
}
