package git

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// detect populates git repository information
func (g *Git) detect(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// One call for all three values
	out, err := vcs.Exec(absPath, "git", "rev-parse", "--git-dir", "--git-common-dir", "--show-toplevel")
	if err != nil {
		return vcs.ErrNotInVCS
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		return fmt.Errorf("unexpected git rev-parse output: got %d lines, expected 3", len(lines))
	}

	gitDir := strings.TrimSpace(lines[0])
	commonDir := strings.TrimSpace(lines[1])
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(absPath, gitDir)
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(absPath, commonDir)
	}

	g.gitDir = filepath.Clean(gitDir)
	g.repoRoot = normalizeRepoRoot(strings.TrimSpace(lines[2]))
	g.isWorktree = filepath.Clean(gitDir) != filepath.Clean(commonDir)
	return nil
}

// normalizeRepoRoot resolves symlinks, so /var and /private/var on macOS
// compare equal.
func normalizeRepoRoot(path string) string {
	path = filepath.FromSlash(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}

// HasChanges returns true if there are uncommitted changes
// If paths are specified, only checks those paths
func (g *Git) HasChanges(paths ...string) (bool, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}

	out, err := g.run(args...)
	if err != nil {
		return false, fmt.Errorf("git status failed: %w", err)
	}
	return out != "", nil
}

// GetRemotes returns configured remotes sorted by name.
func (g *Git) GetRemotes() ([]vcs.RemoteInfo, error) {
	out, err := g.run("remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("git remote -v failed: %w", err)
	}
	return parseRemotes(out), nil
}

// parseRemotes parses `git remote -v` output:
//
//	origin  git@github.com:acme/shop.git (fetch)
//	origin  git@github.com:acme/shop.git (push)
//
// Fetch URLs win over push URLs.
func parseRemotes(output string) []vcs.RemoteInfo {
	urls := make(map[string]string)
	for _, line := range vcs.ParseLines([]byte(output)) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, url := fields[0], fields[1]
		if len(fields) >= 3 && fields[2] == "(fetch)" {
			urls[name] = url
		} else if _, seen := urls[name]; !seen {
			urls[name] = url
		}
	}

	remotes := make([]vcs.RemoteInfo, 0, len(urls))
	for name, url := range urls {
		remotes = append(remotes, vcs.RemoteInfo{Name: name, URL: url})
	}
	sort.Slice(remotes, func(i, j int) bool { return remotes[i].Name < remotes[j].Name })
	return remotes
}
