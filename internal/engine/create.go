package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Mschirtzinger/tcsync/internal/dispatch"
	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/lock"
	"github.com/Mschirtzinger/tcsync/internal/naming"
	"github.com/Mschirtzinger/tcsync/internal/reconcile"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// CreateOptions controls Create.
type CreateOptions struct {
	// DependencyPath is a case file the new case depends on.
	DependencyPath string

	// TeardownPath is a case file that cleans up after the new case.
	TeardownPath string

	// ID is used instead of a generated id when set.
	ID string
}

// CreateResult is the outcome of Create.
type CreateResult struct {
	Case     *schema.TestCase
	Path     string
	Endpoint dispatch.Endpoint

	RemoteFailed bool
}

// Create adds a new case named name, writes it to its mapped path and
// pushes it with its relevant set. Referenced case files must parse.
func (s *Session) Create(ctx context.Context, name, targetID string, opts CreateOptions) (*CreateResult, error) {
	if err := s.requireRemote(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if _, err := naming.Identifier(name); err != nil {
		return nil, fmt.Errorf("invalid test case name %q: %w", name, err)
	}

	tc := &schema.TestCase{ID: opts.ID, Description: name}
	if tc.ID == "" {
		tc.ID = uuid.NewString()
	}
	if opts.DependencyPath != "" {
		dep, err := schema.ReadFile(opts.DependencyPath)
		if err != nil {
			return nil, err
		}
		tc.DependencyID = dep.ID
	}
	if opts.TeardownPath != "" {
		td, err := schema.ReadFile(opts.TeardownPath)
		if err != nil {
			return nil, err
		}
		tc.TeardownID = td.ID
	}

	var out *CreateResult
	err := lock.With(s.Root, func() error {
		res, err := s.scan(s.Root)
		if err != nil {
			return err
		}
		cases := append(res.Cases(), tc)
		if err := checkCases(cases); err != nil {
			return err
		}
		relevant, err := graph.RelevantSet(tc, schema.Index(cases))
		if err != nil {
			return err
		}

		r := s.reconciler(s.Root, reconcile.ModePartial)
		plan, err := r.Plan([]*schema.TestCase{tc}, res.Entries)
		if err != nil {
			return err
		}
		applied, err := r.Apply(ctx, plan)
		if err != nil {
			return err
		}
		out = &CreateResult{Case: tc, Path: applied.Paths[tc.ID]}
		s.logger().Info("created test case", "id", tc.ID, "path", out.Path)

		out.Endpoint = s.dispatcher(&out.RemoteFailed).Dispatch(ctx, s.payload(targetID, relevant))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
