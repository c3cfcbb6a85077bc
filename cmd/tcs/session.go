package main

import (
	"fmt"
	"os"

	"github.com/Mschirtzinger/tcsync/internal/engine"
	"github.com/Mschirtzinger/tcsync/internal/remote"
	"github.com/Mschirtzinger/tcsync/internal/ui"
	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// sessionState tracks whether a remote error was reported during the
// command.
type sessionState struct {
	remoteFailed bool
}

// newSession builds the engine session for the resolved config. With
// needRemote set, a missing remote.url is an error.
func newSession(needRemote bool) (*engine.Session, *sessionState, error) {
	cfg, logger := cmdCtx.cfg, cmdCtx.logger
	state := &sessionState{}

	s := &engine.Session{
		Root:        cfg.Root,
		Logger:      logger,
		Parallelism: cfg.Write.Parallelism,
		SchemaURL:   cfg.SchemaURL,
		OnRemoteError: func(err error) {
			state.remoteFailed = true
			fmt.Fprintln(os.Stderr, ui.Fail("%v", err))
		},
	}

	if needRemote {
		if err := cfg.RequireRemote(); err != nil {
			return nil, nil, err
		}
		client := remote.NewHTTPClient(cfg.Remote.URL, cfg.Remote.Token).WithTimeout(cfg.Remote.Timeout)
		s.Remote = remote.NewRetrying(client, cfg.Remote.Retries, logger)
	}

	if v := openVCS(cfg.Root); v != nil {
		s.VCS = v
	}
	return s, state, nil
}

// openVCS returns the inspector for root, or nil outside version control.
func openVCS(root string) vcs.VCS {
	v, err := vcs.Open(root)
	if err != nil {
		if vcs.IsFatal(err) {
			cmdCtx.logger.Debug("no version control context", "root", root, "error", err)
		} else {
			cmdCtx.logger.Warn("failed to open repository", "root", root, "error", err)
		}
		return nil
	}
	return vcs.WithDefaultOverride(v, cmdCtx.cfg.VCS.DefaultBranch)
}

// finish turns a reported remote failure into errRemoteFailed.
func (st *sessionState) finish() error {
	if st.remoteFailed {
		return errRemoteFailed
	}
	return nil
}
