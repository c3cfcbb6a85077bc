package jj

import (
	"sort"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// GetRemotes returns the git remotes of the backing repository, sorted by
// name. Works for colocated and non-colocated repos alike.
func (j *JJ) GetRemotes() ([]vcs.RemoteInfo, error) {
	out, err := j.query("git", "remote", "list")
	if err != nil {
		return nil, err
	}
	return parseRemoteList(out), nil
}

// parseRemoteList parses `jj git remote list` output:
//
//	origin https://github.com/acme/shop.git
func parseRemoteList(output string) []vcs.RemoteInfo {
	var remotes []vcs.RemoteInfo
	seen := make(map[string]bool)
	for _, line := range vcs.ParseLines([]byte(output)) {
		name, url, ok := strings.Cut(line, " ")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		remotes = append(remotes, vcs.RemoteInfo{Name: name, URL: strings.TrimSpace(url)})
	}
	sort.Slice(remotes, func(i, k int) bool { return remotes[i].Name < remotes[k].Name })
	return remotes
}
