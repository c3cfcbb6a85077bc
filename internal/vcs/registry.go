package vcs

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor creates a VCS instance for a given repo root.
// Implementations register themselves with the registry using Register().
type Constructor func(repoRoot string) (VCS, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Constructor)
)

// Register registers a VCS implementation constructor. It panics on a nil
// constructor or a second registration for the same type.
//
//	func init() {
//	    vcs.Register(vcs.TypeGit, func(root string) (vcs.VCS, error) { return New(root) })
//	}
func Register(t Type, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if c == nil {
		panic(fmt.Sprintf("vcs: Register constructor is nil for type %s", t))
	}
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("vcs: Register called twice for type %s", t))
	}
	registry[t] = c
}

func lookup(t Type) Constructor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[t]
}

// IsRegistered returns true if a constructor is registered for the given type.
func IsRegistered(t Type) bool {
	return lookup(t) != nil
}

// RegisteredTypes returns all registered VCS types, sorted.
func RegisteredTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// unregister removes a registration. Tests only.
func unregister(t Type) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, t)
}
