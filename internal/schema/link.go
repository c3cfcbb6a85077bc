package schema

import "fmt"

// LinkKind identifies the kind of edge between two test cases.
type LinkKind string

const (
	// LinkDependency points at the case that must run first.
	LinkDependency LinkKind = "dependency"
	// LinkTeardown points at the case that cleans up afterwards.
	LinkTeardown LinkKind = "teardown"
)

// Field returns the record field that carries this kind of edge.
func (k LinkKind) Field() string {
	switch k {
	case LinkDependency:
		return "dependencyId"
	case LinkTeardown:
		return "teardownId"
	default:
		return string(k)
	}
}

// Link is a directed edge from one case to the case it references.
type Link struct {
	From string
	To   string
	Kind LinkKind
}

func (l Link) String() string {
	return fmt.Sprintf("%s --%s--> %s", l.From, l.Kind, l.To)
}

// Links returns the outgoing edges of t, dependency first.
func (t *TestCase) Links() []Link {
	var links []Link
	if t.DependencyID != "" {
		links = append(links, Link{From: t.ID, To: t.DependencyID, Kind: LinkDependency})
	}
	if t.TeardownID != "" {
		links = append(links, Link{From: t.ID, To: t.TeardownID, Kind: LinkTeardown})
	}
	return links
}

// Index maps ids to cases. When an id repeats, the first occurrence wins;
// duplicates are reported by the graph validator, not here.
func Index(cases []*TestCase) map[string]*TestCase {
	idx := make(map[string]*TestCase, len(cases))
	for _, tc := range cases {
		if _, ok := idx[tc.ID]; !ok {
			idx[tc.ID] = tc
		}
	}
	return idx
}
