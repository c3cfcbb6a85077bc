// Package reconcile brings a local directory of test case files in line with
// an authoritative remote snapshot.
package reconcile

import (
	"context"

	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// Mode selects how local cases missing from the snapshot are treated.
type Mode int

const (
	// ModeFull deletes local cases whose id is absent from the snapshot.
	ModeFull Mode = iota
	// ModePartial only adds and updates; nothing absent from the snapshot
	// is touched.
	ModePartial
)

func (m Mode) String() string {
	if m == ModePartial {
		return "partial"
	}
	return "full"
}

// Reconciler keeps a local tree in sync with remote snapshots.
//
// The remote snapshot is authoritative. Each case is matched to its local
// file by id; when the computed location of a case changes (renamed
// description, new dependency, renamed ancestor) the old file is removed
// before the case is written to its new place. Matching by id cannot tell a
// remote rename from an independent local rename plus edit: the snapshot
// wins at whole-record granularity.
//
// Plans are validated as a whole before anything on disk changes. Callers
// must not run two reconciliations against the same root at once; see
// package lock.
type Reconciler interface {
	// Plan computes the mutations needed to apply snapshot to the local
	// entries. It reads the disk only to check for file name collisions.
	//
	// Returns a *graph.ConsistencyError if the resulting set of cases is
	// not a valid graph.
	Plan(snapshot []*schema.TestCase, local []scan.Entry) (*Plan, error)

	// Apply performs a plan: stale deletions, orphan deletions with
	// pruning, then the writes.
	Apply(ctx context.Context, plan *Plan) (*Result, error)

	// Reconcile scans the root, plans and applies in one step.
	//
	// Example:
	//   res, err := r.Reconcile(ctx, snapshot)
	Reconcile(ctx context.Context, snapshot []*schema.TestCase) (*Result, error)
}

// Options configures a Reconciler.
type Options struct {
	// Root is the directory the cases live in. It is never deleted.
	Root string

	// Mode is ModeFull unless set otherwise.
	Mode Mode

	// Parallelism bounds concurrent file writes. Zero means 8.
	Parallelism int

	// SchemaURL is written as a schema comment on every file when set.
	SchemaURL string

	// SkipDirs are directory names the local scan ignores, in addition to
	// hidden directories.
	SkipDirs []string
}

// Result summarizes an applied plan.
type Result struct {
	Written     int
	Unchanged   int
	Deleted     int
	RemovedDirs int

	// Paths maps each snapshot id to the file it now lives in.
	Paths map[string]string
}
