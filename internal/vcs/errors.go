package vcs

import "errors"

// Common errors returned by VCS operations.
//
// These errors can be checked using errors.Is() for proper error handling:
//
//	if errors.Is(err, vcs.ErrNotInVCS) {
//	    // Handle case where we're outside any VCS repository
//	}
var (
	// ErrNotInVCS is returned when the operation requires being inside
	// a VCS repository but none was found.
	ErrNotInVCS = errors.New("not in a VCS repository")

	// ErrVCSNotAvailable is returned when the required VCS binary
	// (git or jj) is not installed or not in PATH.
	ErrVCSNotAvailable = errors.New("VCS binary not available")

	// ErrNoRemote is returned when an operation requires a remote
	// but none is configured.
	ErrNoRemote = errors.New("no remote configured")

	// ErrDetached is returned when an operation requires being on
	// a branch/bookmark but HEAD is detached (git) or no bookmark
	// is set (jj).
	ErrDetached = errors.New("not on a branch or bookmark")

	// ErrNoDefaultRef is returned when the repository's default branch
	// cannot be determined.
	ErrNoDefaultRef = errors.New("default branch unknown")

	// ErrBadRemoteURL is returned when owner/repo cannot be parsed from a
	// remote URL.
	ErrBadRemoteURL = errors.New("unrecognized remote URL")
)

// IsFatal returns true if the error means no inspection is possible at
// all, as opposed to a single missing piece of information.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotInVCS) || errors.Is(err, ErrVCSNotAvailable)
}
