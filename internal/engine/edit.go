package engine

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mschirtzinger/tcsync/internal/dispatch"
	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/lock"
	"github.com/Mschirtzinger/tcsync/internal/reconcile"
	"github.com/Mschirtzinger/tcsync/internal/remote"
	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// EditResult is the outcome of Edit.
type EditResult struct {
	// Relevant holds the ids pushed: the edited case first, then
	// everything it reaches through dependency and teardown links.
	Relevant []string

	Endpoint dispatch.Endpoint

	// Path is where the edited case lives after reconciliation.
	Path string

	// RemoteNewer is set when the remote copy had a higher version. The
	// local edit overwrote it.
	RemoteNewer bool

	RemoteFailed bool
}

// Edit pushes a single edited case file together with its relevant set,
// then relocates the files of that set if the edit changed their paths.
// Local dependents of the edited case move along with it but are not
// pushed.
//
// The edited file must parse. The rest of the tree is scanned so the edit
// is validated against the whole graph.
func (s *Session) Edit(ctx context.Context, filePath, targetID string) (*EditResult, error) {
	if err := s.requireRemote(); err != nil {
		return nil, err
	}
	edited, err := schema.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var out *EditResult
	err = lock.With(s.Root, func() error {
		res, err := s.scan(s.Root)
		if err != nil {
			return err
		}
		cases := substitute(res.Entries, edited)
		if err := checkCases(cases); err != nil {
			return err
		}

		relevant, err := graph.RelevantSet(edited, schema.Index(cases))
		if err != nil {
			return err
		}
		out = &EditResult{Relevant: graph.IDs(relevant)}

		out.RemoteNewer = s.remoteIsNewer(ctx, targetID, edited)
		out.Endpoint = s.dispatcher(&out.RemoteFailed).Dispatch(ctx, s.payload(targetID, relevant))

		applied, err := s.reconciler(s.Root, reconcile.ModePartial).Reconcile(ctx, withDependents(relevant, edited.ID, cases))
		if err != nil {
			return err
		}
		out.Path = applied.Paths[edited.ID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withDependents appends the dependents of id that relevant does not
// already hold.
func withDependents(relevant []*schema.TestCase, id string, cases []*schema.TestCase) []*schema.TestCase {
	out := append([]*schema.TestCase(nil), relevant...)
	seen := make(map[string]bool, len(relevant))
	for _, tc := range relevant {
		seen[tc.ID] = true
	}
	for _, tc := range graph.Dependents(id, cases) {
		if !seen[tc.ID] {
			out = append(out, tc)
		}
	}
	return out
}

// substitute returns the scanned cases with every record sharing the
// edited id replaced by edited, appending it when absent.
func substitute(entries []scan.Entry, edited *schema.TestCase) []*schema.TestCase {
	cases := make([]*schema.TestCase, 0, len(entries)+1)
	replaced := false
	for _, e := range entries {
		if e.Case.ID != edited.ID {
			cases = append(cases, e.Case)
			continue
		}
		if !replaced {
			cases = append(cases, edited)
			replaced = true
		}
	}
	if !replaced {
		cases = append(cases, edited)
	}
	return cases
}

// remoteIsNewer reports whether the remote holds a higher version of tc.
// A case the remote does not know yet is not newer. Lookup failures are
// logged and treated as not newer: the push itself reports remote trouble.
func (s *Session) remoteIsNewer(ctx context.Context, targetID string, tc *schema.TestCase) bool {
	current, err := s.Remote.FetchCase(ctx, targetID, tc.ID)
	if err != nil {
		var re *remote.Error
		if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
			return false
		}
		s.logger().Warn("could not fetch remote version", "id", tc.ID, "error", err)
		return false
	}
	if current.Version > tc.Version {
		s.logger().Warn("remote version is newer; local edit overwrites it",
			"id", tc.ID,
			"local_version", tc.Version,
			"remote_version", current.Version)
		return true
	}
	return false
}
