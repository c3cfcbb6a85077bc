package jj

import "github.com/Mschirtzinger/tcsync/internal/vcs"

// Registers the jj implementation for both jj-only and colocated
// repositories:
//
//	import _ "github.com/Mschirtzinger/tcsync/internal/vcs/jj"
func init() {
	vcs.Register(vcs.TypeJJ, func(path string) (vcs.VCS, error) {
		return New(path)
	})
}
