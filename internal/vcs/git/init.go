package git

import "github.com/Mschirtzinger/tcsync/internal/vcs"

// Registers the git implementation with the vcs factory on import:
//
//	import _ "github.com/Mschirtzinger/tcsync/internal/vcs/git"
func init() {
	vcs.Register(vcs.TypeGit, func(path string) (vcs.VCS, error) {
		return New(path)
	})
}
