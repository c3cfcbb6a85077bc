// Package jj provides a Jujutsu (jj) implementation of vcs.VCS.
//
// Bookmarks play the role of git branches. A working copy is "on" a
// bookmark when one points at @ or, for the usual "jj new" workflow, at
// its parent @-.
package jj

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// JJ implements vcs.VCS for Jujutsu.
type JJ struct {
	// repoRoot is the workspace root directory
	repoRoot string

	// isColocated indicates if this is a colocated repo (.jj + .git)
	isColocated bool
}

var _ vcs.VCS = (*JJ)(nil)

// New creates a JJ instance for the repository containing path.
func New(path string) (*JJ, error) {
	root := FindRepoRoot(path)
	if root == "" {
		return nil, vcs.ErrNotInVCS
	}
	return &JJ{repoRoot: root, isColocated: IsColocated(root)}, nil
}

// Name returns the VCS type.
// Returns "jj" for non-colocated repos, "colocate" for colocated repos.
func (j *JJ) Name() vcs.Type {
	if j.isColocated {
		return vcs.TypeColocate
	}
	return vcs.TypeJJ
}

// Version returns the jj binary version string.
func (j *JJ) Version() (string, error) {
	out, err := vcs.Exec("", "jj", "--version")
	if err != nil {
		return "", fmt.Errorf("failed to get jj version: %w", err)
	}
	// Parse "jj 0.32.0" to "0.32.0"
	if parts := strings.Fields(out); len(parts) >= 2 {
		return parts[1], nil
	}
	return out, nil
}

// RepoRoot returns the workspace root directory path.
func (j *JJ) RepoRoot() (string, error) {
	return j.repoRoot, nil
}

// IsInVCS returns true if we're inside a jj repository.
func (j *JJ) IsInVCS() bool {
	return j.repoRoot != ""
}

// Exec executes a raw jj command in the workspace root.
func (j *JJ) Exec(ctx context.Context, args ...string) ([]byte, error) {
	out, err := vcs.ExecContext(ctx, vcs.DefaultTimeout, j.repoRoot, "jj", args...)
	if err != nil {
		if vcs.StderrContains(err, "There is no jj repo") || vcs.StderrContains(err, "No workspace configured") {
			return nil, vcs.ErrNotInVCS
		}
		return nil, err
	}
	return out, nil
}

// query runs a read-only jj command without snapshotting the working copy.
func (j *JJ) query(args ...string) (string, error) {
	out, err := j.Exec(context.Background(), append([]string{"--ignore-working-copy", "--color", "never"}, args...)...)
	if err != nil {
		return "", err
	}
	return vcs.TrimOutput(out), nil
}

// FindRepoRoot finds the jj workspace root by walking up the directory
// tree. Returns empty string if not in a jj repository.
func FindRepoRoot(path string) string {
	current, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// IsJJRepo returns true if the given path is inside a jj repository.
func IsJJRepo(path string) bool {
	return FindRepoRoot(path) != ""
}

// IsColocated returns true if the repository is colocated (has both .jj and .git).
func IsColocated(repoRoot string) bool {
	jjInfo, jjErr := os.Stat(filepath.Join(repoRoot, ".jj"))
	_, gitErr := os.Stat(filepath.Join(repoRoot, ".git"))
	return jjErr == nil && jjInfo.IsDir() && gitErr == nil
}
