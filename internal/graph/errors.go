package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the structural checks. Every *ConsistencyError matches
// exactly one of them with errors.Is:
//
//	if errors.Is(err, graph.ErrCycleDetected) {
//	    // report the cycle
//	}
var (
	// ErrMissingReference is returned when a dependencyId or teardownId does
	// not resolve to a case in the set.
	ErrMissingReference = errors.New("missing reference")

	// ErrDuplicateID is returned when two cases share an id.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrCycleDetected is returned when following dependencyId pointers
	// revisits a case.
	ErrCycleDetected = errors.New("dependency cycle detected")
)

// Kind classifies a ConsistencyError.
type Kind int

const (
	KindMissingReference Kind = iota
	KindDuplicateID
	KindCycle
)

func (k Kind) String() string {
	switch k {
	case KindMissingReference:
		return "missing reference"
	case KindDuplicateID:
		return "duplicate id"
	case KindCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// ConsistencyError reports a structural problem in a test case set.
type ConsistencyError struct {
	Kind Kind

	// ID is the offending id: the unresolved target, the repeated id, or
	// the case where the cycle starts.
	ID string

	// ReferencedBy and Field name the case and field holding a missing
	// reference.
	ReferencedBy string
	Field        string

	// Cycle is the ordered path of the cycle, ending where it started.
	Cycle []string
}

func (e *ConsistencyError) Error() string {
	switch e.Kind {
	case KindMissingReference:
		return fmt.Sprintf("missing reference: case %s has %s %s, which does not exist", e.ReferencedBy, e.Field, e.ID)
	case KindDuplicateID:
		return fmt.Sprintf("duplicate id: %s appears more than once", e.ID)
	case KindCycle:
		return fmt.Sprintf("dependency cycle detected starting at %s: %s", e.ID, strings.Join(e.Cycle, " -> "))
	default:
		return "inconsistent test case set"
	}
}

// Is matches the sentinel for the error's Kind.
func (e *ConsistencyError) Is(target error) bool {
	switch e.Kind {
	case KindMissingReference:
		return target == ErrMissingReference
	case KindDuplicateID:
		return target == ErrDuplicateID
	case KindCycle:
		return target == ErrCycleDetected
	}
	return false
}

func missingReference(id, referencedBy, field string) *ConsistencyError {
	return &ConsistencyError{Kind: KindMissingReference, ID: id, ReferencedBy: referencedBy, Field: field}
}

func cycleError(path []string) *ConsistencyError {
	return &ConsistencyError{Kind: KindCycle, ID: path[0], Cycle: path}
}
