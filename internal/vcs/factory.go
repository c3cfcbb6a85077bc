package vcs

import (
	"fmt"
)

// Factory opens VCS instances for paths. It holds no cache: every call
// detects afresh, so one invocation never sees another's repository.
type Factory struct {
	// preferred is used for colocated repos
	preferred Type

	// available reports whether the binary for a type is installed
	available func(Type) bool
}

// FactoryOption configures the factory
type FactoryOption func(*Factory)

// WithPreferredType sets the preferred VCS type for colocated repos
func WithPreferredType(t Type) FactoryOption {
	return func(f *Factory) {
		f.preferred = t
	}
}

// withAvailability replaces the binary lookup. Tests only.
func withAvailability(fn func(Type) bool) FactoryOption {
	return func(f *Factory) {
		f.available = fn
	}
}

// NewFactory creates a factory that prefers jj in colocated repositories.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{preferred: TypeJJ, available: IsAvailable}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create detects the VCS at path and constructs the matching
// implementation. Returns ErrNotInVCS outside any repository and
// ErrVCSNotAvailable when no usable binary is installed.
func (f *Factory) Create(path string) (VCS, error) {
	result, err := Detect(path)
	if err != nil {
		return nil, err
	}

	implType, ok := f.choose(result)
	if !ok {
		return nil, ErrVCSNotAvailable
	}

	c := lookup(implType)
	if c == nil {
		return nil, fmt.Errorf("no registered constructor for VCS type: %s (available: %v)", implType, RegisteredTypes())
	}
	v, err := c(result.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s VCS instance: %w", implType, err)
	}
	return v, nil
}

// choose picks the implementation for a detection result.
func (f *Factory) choose(result *DetectionResult) (Type, bool) {
	switch result.Type {
	case TypeGit:
		return TypeGit, f.available(TypeGit)
	case TypeJJ:
		return TypeJJ, f.available(TypeJJ)
	}

	order := []Type{TypeJJ, TypeGit}
	if f.preferred == TypeGit {
		order = []Type{TypeGit, TypeJJ}
	}
	for _, t := range order {
		if f.available(t) {
			return t, true
		}
	}
	return "", false
}

// Open returns a VCS instance for path using default options.
func Open(path string) (VCS, error) {
	return NewFactory().Create(path)
}
