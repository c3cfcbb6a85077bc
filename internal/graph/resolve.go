package graph

import "github.com/Mschirtzinger/tcsync/internal/schema"

// RelevantSet returns target plus every case reachable from it through
// dependencyId and teardownId links, in breadth-first order with target
// first. Each id appears once. Dependents (reverse edges) are not followed.
//
// A link that does not resolve in idx yields a *ConsistencyError of kind
// KindMissingReference naming the id and the case that references it.
func RelevantSet(target *schema.TestCase, idx map[string]*schema.TestCase) ([]*schema.TestCase, error) {
	visited := map[string]bool{target.ID: true}
	queue := []*schema.TestCase{target}
	var out []*schema.TestCase

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)

		for _, l := range cur.Links() {
			if visited[l.To] {
				continue
			}
			next, ok := idx[l.To]
			if !ok {
				return nil, missingReference(l.To, cur.ID, l.Kind.Field())
			}
			visited[l.To] = true
			queue = append(queue, next)
		}
	}
	return out, nil
}

// IDs returns the ids of cases in order.
func IDs(cases []*schema.TestCase) []string {
	ids := make([]string, len(cases))
	for i, tc := range cases {
		ids[i] = tc.ID
	}
	return ids
}

// Dependents returns every case whose dependency chain passes through id,
// direct dependents first. Teardown links are not followed.
func Dependents(id string, cases []*schema.TestCase) []*schema.TestCase {
	children := make(map[string][]*schema.TestCase)
	for _, tc := range cases {
		if tc.DependencyID != "" {
			children[tc.DependencyID] = append(children[tc.DependencyID], tc)
		}
	}

	visited := map[string]bool{id: true}
	queue := []string{id}
	var out []*schema.TestCase
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out
}
