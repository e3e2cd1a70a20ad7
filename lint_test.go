package dub

import (
	"os/exec"
	"testing"
)

// runGit runs a git command in dir and fails the test if it errors.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestClassifyGitReferenceTag(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "test")
	runGit(t, dir, "remote", "add", "origin", dir)
	runGit(t, dir, "commit", "--allow-empty", "-m", "initial")
	runGit(t, dir, "tag", "v1.0.0")

	kind, ok := classifyGitReference(dir, "v1.0.0")
	if !ok || kind != "tag" {
		t.Errorf("classifyGitReference(%q) = (%q, %v), want (\"tag\", true)", "v1.0.0", kind, ok)
	}
}

func TestClassifyGitReferenceBranch(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "test")
	runGit(t, dir, "remote", "add", "origin", dir)
	runGit(t, dir, "commit", "--allow-empty", "-m", "initial")
	runGit(t, dir, "checkout", "-b", "feature/x")

	kind, ok := classifyGitReference(dir, "feature/x")
	if !ok || kind != "branch" {
		t.Errorf("classifyGitReference(%q) = (%q, %v), want (\"branch\", true)", "feature/x", kind, ok)
	}
}

func TestClassifyGitReferenceNotAGitRepo(t *testing.T) {
	dir := t.TempDir()

	if _, ok := classifyGitReference(dir, "v1.0.0"); ok {
		t.Error("classifyGitReference on a non-git directory should report ok=false")
	}
}
