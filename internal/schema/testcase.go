// Package schema provides the on-disk representation of test case files.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Extension is the file extension of every serialized test case.
const Extension = ".yaml"

// ErrParseFailure marks a file that could not be decoded or failed schema
// validation.
var ErrParseFailure = errors.New("parse failure")

// TestCase is a single test case record as stored in <name>.yaml.
//
// Only ID, Description, DependencyID and TeardownID carry meaning for the
// sync engine. The remaining fields are passed through untouched.
type TestCase struct {
	// ===== Identity =====
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`

	// ===== Graph edges =====
	DependencyID string `yaml:"dependencyId,omitempty" json:"dependencyId,omitempty"` // prerequisite case
	TeardownID   string `yaml:"teardownId,omitempty" json:"teardownId,omitempty"`     // cleanup case

	// ===== Opaque payload =====
	Elements  any    `yaml:"elements,omitempty" json:"elements,omitempty"`
	Version   int    `yaml:"version,omitempty" json:"version,omitempty"`
	RunStatus string `yaml:"runStatus,omitempty" json:"runStatus,omitempty"`
	Prompt    string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
}

// ParseError describes a file that is not a valid test case.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid test case: %v", e.Err)
	}
	return fmt.Sprintf("invalid test case file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParseFailure, e.Err}
}

// Validate checks the record against the file schema. Links are left to
// the graph checks, so a self-dependency surfaces as a cycle.
func (t *TestCase) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// Clone returns a shallow copy. Elements is shared, it is never mutated.
func (t *TestCase) Clone() *TestCase {
	c := *t
	return &c
}

// Parse decodes and validates a test case document. Leading comment lines,
// such as a yaml-language-server schema reference, are ignored.
func Parse(data []byte) (*TestCase, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tc TestCase
	if err := dec.Decode(&tc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: fmt.Errorf("empty document")}
		}
		return nil, &ParseError{Err: err}
	}
	if err := tc.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &tc, nil
}

// Marshal encodes a test case. When schemaURL is set, a schema reference
// comment is written as the first line.
func Marshal(tc *TestCase, schemaURL string) ([]byte, error) {
	var buf bytes.Buffer
	if schemaURL != "" {
		fmt.Fprintf(&buf, "# yaml-language-server: $schema=%s\n", schemaURL)
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tc); err != nil {
		return nil, fmt.Errorf("failed to marshal test case %s: %w", tc.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal test case %s: %w", tc.ID, err)
	}
	return buf.Bytes(), nil
}

// ReadFile reads and validates a test case file.
func ReadFile(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	tc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return tc, nil
}

// WriteFile validates tc and writes it to path, creating parent directories.
// The content is written to a temporary file and renamed into place.
func WriteFile(path string, tc *TestCase, schemaURL string) error {
	if err := tc.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid test case: %w", err)
	}

	data, err := Marshal(tc, schemaURL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write test case file %s: %w", path, err)
	}

	// atomic.WriteFile leaves new files with the temp file mode
	if err := os.Chmod(path, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}

// IsCaseFile reports whether name looks like a serialized test case.
func IsCaseFile(name string) bool {
	return strings.HasSuffix(name, Extension) && !strings.HasPrefix(name, ".")
}
