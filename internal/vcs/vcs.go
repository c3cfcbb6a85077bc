// Package vcs inspects the version-control context a push is made from.
//
// Pushes are routed by comparing the current branch (git) or bookmark (jj)
// with the repository's default one, and the payload carries the commit and
// owner/repo of the working copy. Nothing in this package modifies a
// repository.
//
// # Usage
//
//	v, err := vcs.Open(".")
//	if err != nil {
//	    // not in a repository: route to draft
//	}
//	info := vcs.Describe(v)
//
// # Implementations
//
//   - internal/vcs/git: git via the git CLI
//   - internal/vcs/jj: Jujutsu via the jj CLI
//
// Implementations register themselves with Register from an init function,
// so callers import them for side effects.
package vcs

// Type represents the VCS backend type
type Type string

const (
	// TypeGit indicates a git-only repository
	TypeGit Type = "git"

	// TypeJJ indicates a jj-only repository (non-colocated)
	TypeJJ Type = "jj"

	// TypeColocate indicates a colocated repository (jj + git together)
	TypeColocate Type = "colocate"
)

// String returns the string representation of the VCS type
func (t Type) String() string {
	return string(t)
}

// VCS is a read-only view of a repository.
type VCS interface {
	// Name returns the VCS type (git, jj, or colocate)
	Name() Type

	// Version returns the VCS binary version string
	Version() (string, error)

	// RepoRoot returns the repository root directory path.
	RepoRoot() (string, error)

	// IsInVCS returns true if the repository could be opened.
	IsInVCS() bool

	// CurrentRef returns the current branch name (git) or bookmark (jj).
	// Returns empty string if HEAD is detached (git) or no bookmark points
	// at the working copy (jj).
	CurrentRef() (string, error)

	// DefaultRef returns the repository's default branch or bookmark, the
	// one pushes to the main endpoint are made from.
	DefaultRef() (string, error)

	// GetCommitHash returns the commit hash for the given reference.
	// An empty ref means the working copy's commit.
	GetCommitHash(ref string) (string, error)

	// GetRemotes returns information about configured remotes
	GetRemotes() ([]RemoteInfo, error)

	// HasChanges returns true if there are uncommitted changes.
	// If paths are specified, only checks those paths.
	HasChanges(paths ...string) (bool, error)
}

// RemoteInfo contains information about a remote repository
type RemoteInfo struct {
	// Name is the remote name (e.g., "origin")
	Name string

	// URL is the remote URL
	URL string
}

// DefaultRemote is the remote consulted for owner/repo and the default
// branch when several are configured.
const DefaultRemote = "origin"
