package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
)

// DetectionResult contains information about the detected VCS
type DetectionResult struct {
	// Type is the detected VCS type
	Type Type

	// RepoRoot is the directory holding the .git or .jj marker
	RepoRoot string

	// HasGit indicates a .git directory/file was found
	HasGit bool

	// HasJJ indicates a .jj directory was found
	HasJJ bool

	// IsWorktree indicates .git is a file (git worktree or submodule)
	IsWorktree bool
}

// Detect identifies the VCS type for a given directory by walking up from
// path until a .jj directory or a .git directory or file is found. Both
// markers in the same directory mean TypeColocate.
//
// Returns ErrNotInVCS if no VCS is found.
func Detect(path string) (*DetectionResult, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	for {
		result := &DetectionResult{RepoRoot: current}

		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			result.HasJJ = true
		}
		if info, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			result.HasGit = true
			result.IsWorktree = info.Mode().IsRegular()
		}

		switch {
		case result.HasJJ && result.HasGit:
			result.Type = TypeColocate
			return result, nil
		case result.HasJJ:
			result.Type = TypeJJ
			return result, nil
		case result.HasGit:
			result.Type = TypeGit
			return result, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNotInVCS
		}
		current = parent
	}
}

// IsAvailable reports whether the binary backing t is on PATH. For
// TypeColocate either binary will do.
func IsAvailable(t Type) bool {
	switch t {
	case TypeGit:
		return onPath("git")
	case TypeJJ:
		return onPath("jj")
	case TypeColocate:
		return onPath("git") || onPath("jj")
	default:
		return false
	}
}

func onPath(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}
