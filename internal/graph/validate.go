// Package graph checks the structure of a test case set and walks its edges.
package graph

import "github.com/Mschirtzinger/tcsync/internal/schema"

// Validate runs the structural checks in order and stops at the first
// violation: referential integrity, id uniqueness, then acyclicity of the
// dependency edges. Teardown edges are never checked for cycles.
//
// It returns nil or a *ConsistencyError.
func Validate(cases []*schema.TestCase) error {
	known := make(map[string]bool, len(cases))
	for _, tc := range cases {
		known[tc.ID] = true
	}

	for _, tc := range cases {
		for _, l := range tc.Links() {
			if !known[l.To] {
				return missingReference(l.To, tc.ID, l.Kind.Field())
			}
		}
	}

	seen := make(map[string]bool, len(cases))
	for _, tc := range cases {
		if seen[tc.ID] {
			return &ConsistencyError{Kind: KindDuplicateID, ID: tc.ID}
		}
		seen[tc.ID] = true
	}

	idx := schema.Index(cases)
	for _, tc := range cases {
		if _, err := DependencyChain(tc, idx); err != nil {
			return err
		}
	}
	return nil
}

// DependencyChain follows dependencyId pointers from tc and returns the
// ancestors ordered from the root down to tc's direct parent.
//
// The walk keeps the ids on the current path in a set; revisiting one closes
// a cycle, reported as the ordered path starting at the repeated id.
func DependencyChain(tc *schema.TestCase, idx map[string]*schema.TestCase) ([]*schema.TestCase, error) {
	onPath := map[string]int{tc.ID: 0}
	path := []string{tc.ID}

	var ancestors []*schema.TestCase
	cur := tc
	for cur.DependencyID != "" {
		if start, ok := onPath[cur.DependencyID]; ok {
			cycle := append(append([]string{}, path[start:]...), cur.DependencyID)
			return nil, cycleError(cycle)
		}

		parent, ok := idx[cur.DependencyID]
		if !ok {
			return nil, missingReference(cur.DependencyID, cur.ID, schema.LinkDependency.Field())
		}

		onPath[parent.ID] = len(path)
		path = append(path, parent.ID)
		ancestors = append(ancestors, parent)
		cur = parent
	}

	// reverse into root-first order
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors, nil
}
