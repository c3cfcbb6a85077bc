package reconcile

import (
	"fmt"
	"path/filepath"

	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/layout"
	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// Write is a case and the path it will be written to.
type Write struct {
	Case *schema.TestCase
	Path string

	// InPlace is set when the case already lives at Path.
	InPlace bool
}

// Removal is a local file scheduled for deletion.
type Removal struct {
	ID   string
	Path string

	// Subfolder is the per-case folder that held the case's dependents. It
	// is removed afterwards if nothing is left in it.
	Subfolder string
}

// Plan is the ordered set of mutations for one reconciliation.
type Plan struct {
	Root string
	Mode Mode

	// Stale files belong to snapshot cases whose location changed.
	Stale []Removal

	// Orphans are local cases absent from the snapshot. Always empty in
	// ModePartial.
	Orphans []Removal

	// Writes holds every snapshot case, in snapshot order.
	Writes []Write
}

// Empty reports whether the plan deletes nothing and writes nothing new.
func (p *Plan) Empty() bool {
	if len(p.Stale) > 0 || len(p.Orphans) > 0 {
		return false
	}
	for _, w := range p.Writes {
		if !w.InPlace {
			return false
		}
	}
	return true
}

type target struct {
	tc     *schema.TestCase
	folder string
	kept   string
}

// Plan implements Reconciler.Plan.
func (r *reconciler) Plan(snapshot []*schema.TestCase, local []scan.Entry) (*Plan, error) {
	inSnapshot := make(map[string]bool, len(snapshot))
	for _, tc := range snapshot {
		inSnapshot[tc.ID] = true
	}

	// The graph that results from the plan must be valid. In partial mode
	// the untouched local cases are part of it.
	result := append([]*schema.TestCase(nil), snapshot...)
	if r.opts.Mode == ModePartial {
		for _, e := range local {
			if !inSnapshot[e.Case.ID] {
				result = append(result, e.Case)
			}
		}
	}
	if err := graph.Validate(result); err != nil {
		return nil, err
	}
	idx := schema.Index(result)

	byID := make(map[string][]scan.Entry, len(local))
	for _, e := range local {
		byID[e.Case.ID] = append(byID[e.Case.ID], e)
	}

	plan := &Plan{Root: r.opts.Root, Mode: r.opts.Mode}
	claims := make(map[string]string)
	removed := make(map[string]bool)

	targets := make([]target, 0, len(snapshot))
	for _, tc := range snapshot {
		folder, err := r.mapper.FolderPath(tc, idx)
		if err != nil {
			return nil, err
		}
		base, err := layout.BaseName(tc)
		if err != nil {
			return nil, err
		}

		t := target{tc: tc, folder: folder}
		for _, e := range byID[tc.ID] {
			if t.kept == "" && filepath.Dir(e.Path) == folder && layout.MatchesBase(filepath.Base(e.Path), base) {
				t.kept = e.Path
				claims[e.Path] = tc.ID
				continue
			}
			plan.Stale = append(plan.Stale, r.removal(e))
			removed[e.Path] = true
		}
		targets = append(targets, t)
	}

	if r.opts.Mode == ModeFull {
		for _, e := range local {
			if !inSnapshot[e.Case.ID] {
				plan.Orphans = append(plan.Orphans, r.removal(e))
				removed[e.Path] = true
			}
		}
	}

	occ := &planOccupancy{claims: claims, removed: removed, disk: layout.Disk{}}
	for _, t := range targets {
		if t.kept != "" {
			plan.Writes = append(plan.Writes, Write{Case: t.tc, Path: t.kept, InPlace: true})
			continue
		}
		name, err := r.mapper.FileName(t.tc, t.folder, occ)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(t.folder, name)
		claims[path] = t.tc.ID
		plan.Writes = append(plan.Writes, Write{Case: t.tc, Path: path})
	}

	return plan, nil
}

func (r *reconciler) removal(e scan.Entry) Removal {
	rm := Removal{ID: e.Case.ID, Path: e.Path}
	if seg, err := r.mapper.FolderName(e.Case); err == nil {
		rm.Subfolder = filepath.Join(filepath.Dir(e.Path), seg)
	}
	return rm
}

// planOccupancy layers the plan's claims and removals over the disk.
type planOccupancy struct {
	claims  map[string]string
	removed map[string]bool
	disk    layout.Occupancy
}

func (o *planOccupancy) IDAt(path string) (string, bool) {
	if id, ok := o.claims[path]; ok {
		return id, true
	}
	if o.removed[path] {
		return "", false
	}
	return o.disk.IDAt(path)
}

func (w Write) String() string {
	return fmt.Sprintf("%s -> %s", w.Case.ID, w.Path)
}
