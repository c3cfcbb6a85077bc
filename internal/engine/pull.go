package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/Mschirtzinger/tcsync/internal/lock"
	"github.com/Mschirtzinger/tcsync/internal/reconcile"
	"github.com/Mschirtzinger/tcsync/internal/remote"
	"github.com/Mschirtzinger/tcsync/internal/scan"
)

// PullOptions controls Pull.
type PullOptions struct {
	// Destination is the tree to reconcile into. Empty means the root.
	Destination string

	// Partial keeps local cases that are absent from the snapshot.
	Partial bool

	// DryRun computes the plan without applying it. It takes no lock and
	// creates nothing on disk.
	DryRun bool
}

// PullResult is the outcome of Pull.
type PullResult struct {
	// Cases is the number of cases in the snapshot.
	Cases int

	Plan   *reconcile.Plan
	Result *reconcile.Result

	// RemoteFailed is set when the snapshot could not be fetched. The tree
	// is untouched and the error went to OnRemoteError.
	RemoteFailed bool
}

// Pull fetches the snapshot for targetID and reconciles the destination
// with it. The snapshot is validated before anything on disk changes.
func (s *Session) Pull(ctx context.Context, targetID string, opts PullOptions) (*PullResult, error) {
	if err := s.requireRemote(); err != nil {
		return nil, err
	}
	dest := opts.Destination
	if dest == "" {
		dest = s.Root
	}
	mode := reconcile.ModeFull
	if opts.Partial {
		mode = reconcile.ModePartial
	}

	if opts.DryRun {
		return s.planPull(ctx, targetID, dest, mode)
	}

	var out *PullResult
	err := lock.With(dest, func() error {
		snap, ok := s.pullSnapshot(ctx, targetID)
		if !ok {
			out = &PullResult{RemoteFailed: true}
			return nil
		}
		out = &PullResult{Cases: len(snap.TestCases)}
		if err := checkSnapshot(targetID, snap); err != nil {
			return err
		}

		var err error
		out.Result, err = s.reconciler(dest, mode).Reconcile(ctx, snap.TestCases)
		if err != nil {
			return err
		}
		s.logger().Info("pulled test cases",
			"target", targetID,
			"dest", dest,
			"mode", mode.String(),
			"written", out.Result.Written,
			"unchanged", out.Result.Unchanged,
			"deleted", out.Result.Deleted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// planPull computes the plan for a pull without touching the destination:
// no lock file is taken and a missing destination stays missing.
func (s *Session) planPull(ctx context.Context, targetID, dest string, mode reconcile.Mode) (*PullResult, error) {
	snap, ok := s.pullSnapshot(ctx, targetID)
	if !ok {
		return &PullResult{RemoteFailed: true}, nil
	}
	out := &PullResult{Cases: len(snap.TestCases)}
	if err := checkSnapshot(targetID, snap); err != nil {
		return nil, err
	}

	local, err := s.localEntries(dest)
	if err != nil {
		return nil, err
	}
	out.Plan, err = s.reconciler(dest, mode).Plan(snap.TestCases, local)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// pullSnapshot fetches the snapshot, handing a failure to OnRemoteError.
func (s *Session) pullSnapshot(ctx context.Context, targetID string) (*remote.Snapshot, bool) {
	snap, err := s.Remote.Pull(ctx, targetID)
	if err != nil {
		s.remoteError(err)
		return nil, false
	}
	return snap, true
}

func checkSnapshot(targetID string, snap *remote.Snapshot) error {
	if err := checkCases(snap.TestCases); err != nil {
		return fmt.Errorf("remote snapshot for %s is invalid: %w", targetID, err)
	}
	return nil
}

// localEntries scans dir, treating a missing dir as empty.
func (s *Session) localEntries(dir string) ([]scan.Entry, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	res, err := s.scan(dir)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}
