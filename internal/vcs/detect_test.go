package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Run("git", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, filepath.Join(dir, ".git"))

		result, err := Detect(dir)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if result.Type != TypeGit || !result.HasGit || result.HasJJ || result.IsWorktree {
			t.Errorf("Detect() = %+v", result)
		}
	})

	t.Run("git worktree file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: /elsewhere/.git/worktrees/w\n"), 0644); err != nil {
			t.Fatal(err)
		}

		result, err := Detect(dir)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if result.Type != TypeGit || !result.IsWorktree {
			t.Errorf("Detect() = %+v, want git worktree", result)
		}
	})

	t.Run("jj", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, filepath.Join(dir, ".jj"))

		result, err := Detect(dir)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if result.Type != TypeJJ {
			t.Errorf("Detect().Type = %v, want jj", result.Type)
		}
	})

	t.Run("colocated from subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "cases", "login")
		mkdirs(t, filepath.Join(dir, ".jj"), filepath.Join(dir, ".git"), sub)

		result, err := Detect(sub)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if result.Type != TypeColocate {
			t.Errorf("Detect().Type = %v, want colocate", result.Type)
		}
		want, _ := filepath.Abs(dir)
		if result.RepoRoot != want {
			t.Errorf("Detect().RepoRoot = %v, want %v", result.RepoRoot, want)
		}
	})

	t.Run("nearest marker wins", func(t *testing.T) {
		dir := t.TempDir()
		inner := filepath.Join(dir, "vendor", "lib")
		mkdirs(t, filepath.Join(dir, ".jj"), filepath.Join(inner, ".git"))

		result, err := Detect(inner)
		if err != nil {
			t.Fatalf("Detect() failed: %v", err)
		}
		if result.Type != TypeGit {
			t.Errorf("Detect().Type = %v, want git", result.Type)
		}
	})

	t.Run("none", func(t *testing.T) {
		if _, err := Detect(t.TempDir()); !errors.Is(err, ErrNotInVCS) {
			t.Errorf("Detect() error = %v, want ErrNotInVCS", err)
		}
	})
}

func TestIsAvailable_UnknownType(t *testing.T) {
	if IsAvailable("svn") {
		t.Error("IsAvailable(svn) = true, want false")
	}
}
