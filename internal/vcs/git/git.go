// Package git provides a git implementation of vcs.VCS.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// Git implements vcs.VCS for git repositories.
type Git struct {
	// repoRoot is the working tree root
	repoRoot string

	// gitDir is the git directory (differs per worktree)
	gitDir string

	// isWorktree indicates a linked worktree
	isWorktree bool
}

var _ vcs.VCS = (*Git)(nil)

// New creates a Git instance for the repository containing path.
func New(path string) (*Git, error) {
	g := &Git{}
	if err := g.detect(path); err != nil {
		return nil, err
	}
	return g, nil
}

// Name returns the VCS type (git)
func (g *Git) Name() vcs.Type {
	return vcs.TypeGit
}

// Version returns the git version string
func (g *Git) Version() (string, error) {
	out, err := vcs.Exec("", "git", "--version")
	if err != nil {
		return "", fmt.Errorf("failed to get git version: %w", err)
	}
	// Output format: "git version 2.39.0"
	return strings.TrimPrefix(out, "git version "), nil
}

// RepoRoot returns the working tree root
func (g *Git) RepoRoot() (string, error) {
	if g.repoRoot == "" {
		return "", vcs.ErrNotInVCS
	}
	return g.repoRoot, nil
}

// IsInVCS returns true if inside a git repository
func (g *Git) IsInVCS() bool {
	return g.repoRoot != ""
}

// IsWorktree reports whether the repository is a linked worktree.
func (g *Git) IsWorktree() bool {
	return g.isWorktree
}

func (g *Git) run(args ...string) (string, error) {
	return vcs.Exec(g.repoRoot, "git", args...)
}

// exitCode returns the exit status of a failed command, or -1.
func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
