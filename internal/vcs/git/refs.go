package git

import (
	"fmt"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// fallbackDefaults are tried in order when neither the remote HEAD nor
// init.defaultBranch names the default branch.
var fallbackDefaults = []string{"main", "master"}

// CurrentRef returns the current branch name.
// Returns empty string if in detached HEAD state.
func (g *Git) CurrentRef() (string, error) {
	out, err := g.run("symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		// -q: exit status 1 without output means detached
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return out, nil
}

// DefaultRef returns the default branch: the branch origin/HEAD points at,
// else init.defaultBranch, else the first existing of main and master.
func (g *Git) DefaultRef() (string, error) {
	if out, err := g.run("symbolic-ref", "--short", "-q", "refs/remotes/"+vcs.DefaultRemote+"/HEAD"); err == nil && out != "" {
		return strings.TrimPrefix(out, vcs.DefaultRemote+"/"), nil
	}

	if out, err := g.run("config", "--get", "init.defaultBranch"); err == nil && out != "" {
		return out, nil
	}

	for _, name := range fallbackDefaults {
		if g.branchExists(name) {
			return name, nil
		}
	}
	return "", vcs.ErrNoDefaultRef
}

func (g *Git) branchExists(name string) bool {
	_, err := g.run("show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// GetCommitHash returns the commit hash for the given reference, HEAD when
// ref is empty.
func (g *Git) GetCommitHash(ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	out, err := g.run("rev-parse", "--verify", "-q", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref %s: %w", ref, err)
	}
	return out, nil
}
