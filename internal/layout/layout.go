// Package layout maps test cases onto the directory tree.
//
// A case lives in the folder formed by the normalized descriptions of its
// dependency ancestors, root first, so a case whose dependency chain is
// "Set up data" -> "User logs in" is stored under setUpData/userLogsIn/.
// The file name is the normalized description of the case itself plus the
// .yaml extension, suffixed with -1, -2, ... when another case already owns
// that name. A folder name that a scan would skip, such as vendor, gets a
// trailing underscore.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/naming"
	"github.com/Mschirtzinger/tcsync/internal/schema"
)

// maxSuffix bounds the collision search.
const maxSuffix = 10000

// Occupancy reports which case, if any, already owns a path.
type Occupancy interface {
	// IDAt returns the id persisted at path and whether a file exists there.
	// A file that exists but cannot be parsed reports ok with an empty id.
	IDAt(path string) (id string, ok bool)
}

// Disk is an Occupancy backed by the files on disk.
type Disk struct{}

// IDAt implements Occupancy.
func (Disk) IDAt(path string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	tc, err := schema.ReadFile(path)
	if err != nil {
		return "", true
	}
	return tc.ID, true
}

// Mapper computes folder paths and file names. Prefix, when set, is
// prepended to every path.
type Mapper struct {
	Prefix string

	// Reserved are directory names scans never descend into. Folders are
	// never given one of these names.
	Reserved []string
}

// Segments returns the normalized descriptions of tc's ancestors, root first.
// Cycles and unresolved dependencies fail exactly as in graph.Validate.
func (m Mapper) Segments(tc *schema.TestCase, idx map[string]*schema.TestCase) ([]string, error) {
	chain, err := graph.DependencyChain(tc, idx)
	if err != nil {
		return nil, err
	}

	segments := make([]string, 0, len(chain))
	for _, anc := range chain {
		seg, err := m.FolderName(anc)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// FolderName returns the name of the subfolder holding tc's dependents:
// its base name, with underscores appended while that name is reserved.
func (m Mapper) FolderName(tc *schema.TestCase) (string, error) {
	name, err := BaseName(tc)
	if err != nil {
		return "", err
	}
	for slices.Contains(m.Reserved, name) {
		name += "_"
	}
	return name, nil
}

// FolderPath returns the directory tc belongs in. A root case maps to the
// prefix, or "." when there is none.
func (m Mapper) FolderPath(tc *schema.TestCase, idx map[string]*schema.TestCase) (string, error) {
	segments, err := m.Segments(tc, idx)
	if err != nil {
		return "", err
	}
	return m.join(segments...), nil
}

// ChildFolder returns the per-case subfolder holding tc's dependents.
func (m Mapper) ChildFolder(tc *schema.TestCase, idx map[string]*schema.TestCase) (string, error) {
	segments, err := m.Segments(tc, idx)
	if err != nil {
		return "", err
	}
	own, err := m.FolderName(tc)
	if err != nil {
		return "", err
	}
	return m.join(append(segments, own)...), nil
}

// FileName picks the file name for tc inside folder. A file of the same name
// that holds a different id is a collision and bumps the suffix; a file that
// holds tc's own id is the same entity and keeps the name.
func (m Mapper) FileName(tc *schema.TestCase, folder string, occ Occupancy) (string, error) {
	base, err := BaseName(tc)
	if err != nil {
		return "", err
	}
	if occ == nil {
		occ = Disk{}
	}

	for n := 0; n < maxSuffix; n++ {
		name := candidate(base, n)
		id, taken := occ.IDAt(filepath.Join(folder, name))
		if !taken || id == tc.ID {
			return name, nil
		}
	}
	return "", fmt.Errorf("case %s: no free file name for %s in %s", tc.ID, base, folder)
}

// Path returns the full path for tc: FolderPath joined with FileName.
func (m Mapper) Path(tc *schema.TestCase, idx map[string]*schema.TestCase, occ Occupancy) (string, error) {
	folder, err := m.FolderPath(tc, idx)
	if err != nil {
		return "", err
	}
	name, err := m.FileName(tc, folder, occ)
	if err != nil {
		return "", err
	}
	return filepath.Join(folder, name), nil
}

func (m Mapper) join(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	if m.Prefix != "" {
		parts = append(parts, m.Prefix)
	}
	parts = append(parts, segments...)
	if len(parts) == 0 {
		return "."
	}
	return filepath.Join(parts...)
}

// BaseName is the normalized description of tc, without extension.
func BaseName(tc *schema.TestCase) (string, error) {
	base, err := naming.Identifier(tc.Description)
	if err != nil {
		return "", fmt.Errorf("case %s: description %q: %w", tc.ID, tc.Description, err)
	}
	return base, nil
}

// MatchesBase reports whether fileName is base.yaml or base-N.yaml, i.e. a
// name FileName could have chosen for a case with that base name.
func MatchesBase(fileName, base string) bool {
	stem, ok := strings.CutSuffix(fileName, schema.Extension)
	if !ok {
		return false
	}
	if stem == base {
		return true
	}
	rest, ok := strings.CutPrefix(stem, base+"-")
	if !ok || rest == "" || rest[0] == '0' {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n > 0
}

func candidate(base string, n int) string {
	if n == 0 {
		return base + schema.Extension
	}
	return base + "-" + strconv.Itoa(n) + schema.Extension
}
