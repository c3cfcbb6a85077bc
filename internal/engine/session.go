// Package engine implements the tcs operations on top of the scanner,
// validator, reconciler and dispatcher.
//
// Every operation takes its collaborators from a Session, which lives for
// one invocation. Mutating operations hold the root lock while they run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mschirtzinger/tcsync/internal/dispatch"
	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/reconcile"
	"github.com/Mschirtzinger/tcsync/internal/remote"
	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// Session carries the configuration and collaborators of one invocation.
type Session struct {
	// Root is the case tree.
	Root string

	Remote remote.Client

	// VCS supplies branch context for routing; nil routes every push to
	// draft. When it is a vcs.VCS, pushes also carry commit and repository
	// metadata.
	VCS dispatch.RefSource

	Logger *slog.Logger

	// Parallelism bounds concurrent file writes. Zero uses the reconciler
	// default.
	Parallelism int

	// SchemaURL is written as a schema comment on every case file.
	SchemaURL string

	// SkipDirs overrides the directories the scanner ignores.
	SkipDirs []string

	// OnRemoteError receives remote failures instead of them being
	// returned. Nil logs them at error level.
	OnRemoteError func(err error)
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Session) remoteError(err error) {
	if s.OnRemoteError != nil {
		s.OnRemoteError(err)
		return
	}
	s.logger().Error("remote call failed", "error", err)
}

func (s *Session) skipDirs() []string {
	if s.SkipDirs != nil {
		return s.SkipDirs
	}
	return scan.DefaultSkipDirs
}

func (s *Session) scan(dir string) (*scan.Result, error) {
	return scan.NewScanner(s.skipDirs(), s.logger()).Scan(dir)
}

func (s *Session) reconciler(root string, mode reconcile.Mode) reconcile.Reconciler {
	return reconcile.New(reconcile.Options{
		Root:        root,
		Mode:        mode,
		Parallelism: s.Parallelism,
		SchemaURL:   s.SchemaURL,
		SkipDirs:    s.skipDirs(),
	}, s.logger())
}

// dispatcher wires the remote client and branch context. failed is set
// when the push errors.
func (s *Session) dispatcher(failed *bool) *dispatch.Dispatcher {
	return dispatch.New(s.VCS, s.Remote, func(endpoint dispatch.Endpoint, err error) {
		*failed = true
		s.remoteError(fmt.Errorf("push to %s failed: %w", endpoint, err))
	}, s.logger())
}

// Routing returns the endpoint a push would use right now.
func (s *Session) Routing() dispatch.Endpoint {
	return dispatch.New(s.VCS, nil, nil, s.logger()).Route()
}

// payload builds a push payload for cases, with VCS metadata when known.
func (s *Session) payload(targetID string, cases []*schema.TestCase) remote.Payload {
	p := remote.Payload{TargetID: targetID, TestCases: cases}
	if v, ok := s.VCS.(vcs.VCS); ok {
		info := vcs.Describe(v)
		p.Branch = info.Ref
		p.Commit = info.Commit
		p.Owner = info.Owner
		p.Repo = info.Repo
	}
	return p
}

func (s *Session) requireRemote() error {
	if s.Remote == nil {
		return errors.New("no remote configured")
	}
	return nil
}

// checkCases runs the per-record schema check and then the graph checks.
func checkCases(cases []*schema.TestCase) error {
	for _, tc := range cases {
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("invalid test case %q: %w", tc.ID, err)
		}
	}
	return graph.Validate(cases)
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("operation canceled: %w", err)
	}
	return nil
}
