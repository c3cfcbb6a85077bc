package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Mschirtzinger/tcsync/internal/layout"
	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// DefaultParallelism bounds concurrent writes when Options leaves it unset.
const DefaultParallelism = 8

// reconciler implements the Reconciler interface.
type reconciler struct {
	opts    Options
	mapper  layout.Mapper
	scanner *scan.Scanner
	logger  *slog.Logger
}

// New creates a Reconciler rooted at opts.Root.
//
// If logger is nil, log output is discarded.
//
// Example:
//
//	r := reconcile.New(reconcile.Options{Root: "cases"}, logger)
//	res, err := r.Reconcile(ctx, snapshot)
func New(opts Options, logger *slog.Logger) Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.Root = filepath.Clean(opts.Root)
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	skip := opts.SkipDirs
	if skip == nil {
		skip = scan.DefaultSkipDirs
	}
	return &reconciler{
		opts:    opts,
		mapper:  layout.Mapper{Prefix: opts.Root, Reserved: skip},
		scanner: scan.NewScanner(skip, logger),
		logger:  logger.With("component", "reconcile", "mode", opts.Mode.String()),
	}
}

// Reconcile implements Reconciler.Reconcile.
func (r *reconciler) Reconcile(ctx context.Context, snapshot []*schema.TestCase) (*Result, error) {
	if err := os.MkdirAll(r.opts.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root %s: %w", r.opts.Root, err)
	}
	scanned, err := r.scanner.Scan(r.opts.Root)
	if err != nil {
		return nil, err
	}
	plan, err := r.Plan(snapshot, scanned.Entries)
	if err != nil {
		return nil, err
	}
	return r.Apply(ctx, plan)
}

// Apply implements Reconciler.Apply.
func (r *reconciler) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	res := &Result{Paths: make(map[string]string, len(plan.Writes))}

	r.logger.Info("applying plan",
		"stale", len(plan.Stale),
		"orphans", len(plan.Orphans),
		"writes", len(plan.Writes))

	var prune []string
	for _, rm := range plan.Stale {
		if err := removeFile(rm.Path); err != nil {
			return res, err
		}
		res.Deleted++
		r.logger.Info("removed stale file", "id", rm.ID, "path", rm.Path)
		start := rm.Subfolder
		if start == "" {
			start = filepath.Dir(rm.Path)
		}
		prune = append(prune, start)
	}

	for _, rm := range plan.Orphans {
		if err := removeFile(rm.Path); err != nil {
			return res, err
		}
		res.Deleted++
		r.logger.Info("removed orphaned case", "id", rm.ID, "path", rm.Path)
		prune = append(prune, filepath.Dir(rm.Path))
	}

	sortDeepestFirst(prune)
	for _, dir := range prune {
		n, err := r.pruneUp(dir)
		res.RemovedDirs += n
		if err != nil {
			return res, err
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, w := range plan.Writes {
		res.Paths[w.Case.ID] = w.Path
	}

	var written, unchanged atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for _, w := range plan.Writes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := r.write(w)
			if err != nil {
				return err
			}
			if changed {
				written.Add(1)
			} else {
				unchanged.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	res.Written = int(written.Load())
	res.Unchanged = int(unchanged.Load())
	if err != nil {
		return res, err
	}

	r.logger.Info("reconciled",
		"written", res.Written,
		"unchanged", res.Unchanged,
		"deleted", res.Deleted,
		"removed_dirs", res.RemovedDirs)
	return res, nil
}

// write persists w unless the file already holds identical bytes.
func (r *reconciler) write(w Write) (bool, error) {
	if w.InPlace {
		want, err := schema.Marshal(w.Case, r.opts.SchemaURL)
		if err != nil {
			return false, err
		}
		if have, err := os.ReadFile(w.Path); err == nil && bytes.Equal(have, want) {
			r.logger.Debug("unchanged", "id", w.Case.ID, "path", w.Path)
			return false, nil
		}
	}
	if err := schema.WriteFile(w.Path, w.Case, r.opts.SchemaURL); err != nil {
		return false, err
	}
	r.logger.Debug("wrote test case", "id", w.Case.ID, "path", w.Path)
	return true, nil
}

// pruneUp removes dir and its parents while they are empty, stopping below
// the root. A directory that is already gone does not stop the walk.
func (r *reconciler) pruneUp(dir string) (int, error) {
	removed := 0
	for r.inside(dir) {
		state, err := removeIfEmpty(dir)
		if err != nil {
			return removed, err
		}
		if state == dirNotEmpty {
			break
		}
		if state == dirRemoved {
			removed++
			r.logger.Debug("removed empty folder", "path", dir)
		}
		dir = filepath.Dir(dir)
	}
	return removed, nil
}

// inside reports whether dir is strictly below the root.
func (r *reconciler) inside(dir string) bool {
	rel, err := filepath.Rel(r.opts.Root, dir)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

type dirState int

const (
	dirMissing dirState = iota
	dirRemoved
	dirNotEmpty
)

// removeIfEmpty deletes dir when it has no entries.
func removeIfEmpty(dir string) (dirState, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return dirMissing, nil
	}
	if err != nil {
		return dirNotEmpty, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return dirNotEmpty, nil
	}
	if err := os.Remove(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dirMissing, nil
		}
		return dirNotEmpty, fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return dirRemoved, nil
}

func sortDeepestFirst(dirs []string) {
	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})
}

func depth(dir string) int {
	return strings.Count(filepath.Clean(dir), string(filepath.Separator))
}
