package jj

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// Prints one bookmark name per line.
const (
	localBookmarksTemplate = `local_bookmarks.map(|b| b.name()).join("\n")`
	allBookmarksTemplate   = `bookmarks.map(|b| b.name()).join("\n")`
)

// conventionalTrunks break ties when several bookmarks sit on trunk().
var conventionalTrunks = []string{"main", "master", "trunk"}

// CurrentRef returns the bookmark the working copy is on: one pointing at
// @, else at @-. When several qualify the default bookmark wins, then the
// alphabetically first. Returns empty string if no bookmark is set, which
// is normal in jj.
func (j *JJ) CurrentRef() (string, error) {
	for _, rev := range []string{"@", "@-"} {
		names, err := j.bookmarksAt(rev, localBookmarksTemplate)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			continue
		}
		if def, err := j.DefaultRef(); err == nil && contains(names, def) {
			return def, nil
		}
		return names[0], nil
	}
	return "", nil
}

// DefaultRef returns the bookmark on trunk(), preferring main, master and
// trunk in that order when several point there.
func (j *JJ) DefaultRef() (string, error) {
	names, err := j.bookmarksAt("trunk()", allBookmarksTemplate)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", vcs.ErrNoDefaultRef
	}
	for _, name := range conventionalTrunks {
		if contains(names, name) {
			return name, nil
		}
	}
	return names[0], nil
}

// bookmarksAt lists the distinct bookmark names on a single revision,
// sorted.
func (j *JJ) bookmarksAt(rev, template string) ([]string, error) {
	out, err := j.query("log", "-r", rev, "--no-graph", "--limit", "1", "-T", template)
	if err != nil {
		return nil, err
	}
	return parseBookmarkNames(out), nil
}

func parseBookmarkNames(output string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range vcs.ParseLines([]byte(output)) {
		// Conflicted or diverged bookmarks render with a trailing marker
		name := strings.TrimRight(line, "*?")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// GetCommitHash returns the commit ID (not the change ID) of ref, or of
// the working-copy commit when ref is empty.
func (j *JJ) GetCommitHash(ref string) (string, error) {
	if ref == "" {
		ref = "@"
	}
	out, err := j.query("log", "-r", ref, "--no-graph", "--limit", "1", "-T", "commit_id")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("no commit for revision %s", ref)
	}
	return out, nil
}

// HasChanges returns true if the working-copy change modifies any file.
// If paths are specified, only checks those paths.
func (j *JJ) HasChanges(paths ...string) (bool, error) {
	args := append([]string{"--color", "never", "diff", "-r", "@", "--summary"}, paths...)
	out, err := j.Exec(context.Background(), args...)
	if err != nil {
		return false, err
	}
	return vcs.TrimOutput(out) != "", nil
}
