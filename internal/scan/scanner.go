// Package scan discovers serialized test cases below a directory.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// DefaultSkipDirs are dependency-manager directories that never hold cases.
var DefaultSkipDirs = []string{"node_modules", "vendor", "bower_components", "__pycache__"}

// Entry is a parsed case and the file it came from.
type Entry struct {
	Case *schema.TestCase
	Path string
}

// Skipped records a file or directory the scan could not use.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of a scan.
type Result struct {
	Entries []Entry
	Skipped []Skipped
}

// Cases returns the parsed cases in discovery order.
func (r *Result) Cases() []*schema.TestCase {
	cases := make([]*schema.TestCase, len(r.Entries))
	for i, e := range r.Entries {
		cases[i] = e.Case
	}
	return cases
}

// Scanner walks a directory tree and parses every case file it finds.
type Scanner struct {
	skipDirs map[string]bool
	logger   *slog.Logger
}

// NewScanner creates a Scanner that skips hidden directories and the given
// directory names. A nil logger discards warnings.
func NewScanner(skipDirs []string, logger *slog.Logger) *Scanner {
	skip := make(map[string]bool, len(skipDirs))
	for _, dir := range skipDirs {
		skip[dir] = true
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{skipDirs: skip, logger: logger}
}

// SkipDir reports whether a directory with this name is never descended into.
func (s *Scanner) SkipDir(name string) bool {
	return (strings.HasPrefix(name, ".") && name != ".") || s.skipDirs[name]
}

// Scan parses all case files at or below root. Unreadable subdirectories and
// files that fail to parse are recorded in Result.Skipped and logged; they
// never abort the scan. Only a missing or unreadable root is an error.
func (s *Scanner) Scan(root string) (*Result, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", root)
	}

	res := &Result{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			res.Skipped = append(res.Skipped, Skipped{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && s.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !schema.IsCaseFile(d.Name()) {
			return nil
		}

		tc, err := schema.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping invalid test case file", "path", path, "error", err)
			res.Skipped = append(res.Skipped, Skipped{Path: path, Err: err})
			return nil
		}
		res.Entries = append(res.Entries, Entry{Case: tc, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return res, nil
}
