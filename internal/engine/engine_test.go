package engine

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mschirtzinger/tcsync/internal/dispatch"
	"github.com/Mschirtzinger/tcsync/internal/graph"
	"github.com/Mschirtzinger/tcsync/internal/lock"
	"github.com/Mschirtzinger/tcsync/internal/naming"
	"github.com/Mschirtzinger/tcsync/internal/remote"
	"github.com/Mschirtzinger/tcsync/internal/scan"
	"github.com/Mschirtzinger/tcsync/internal/schema"
	"github.com/Mschirtzinger/tcsync/internal/vcs"
)

// fakeRemote records pushes and serves a fixed snapshot.
type fakeRemote struct {
	mu sync.Mutex

	snapshot []*schema.TestCase
	pullErr  error
	pushErr  error
	cases    map[string]*schema.TestCase

	main  []remote.Payload
	draft []remote.Payload
}

func (f *fakeRemote) Pull(_ context.Context, targetID string) (*remote.Snapshot, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return &remote.Snapshot{TargetID: targetID, TestCases: f.snapshot}, nil
}

func (f *fakeRemote) PushMain(_ context.Context, p remote.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.main = append(f.main, p)
	return f.pushErr
}

func (f *fakeRemote) PushDraft(_ context.Context, p remote.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = append(f.draft, p)
	return f.pushErr
}

func (f *fakeRemote) FetchCase(_ context.Context, _ string, caseID string) (*schema.TestCase, error) {
	if tc, ok := f.cases[caseID]; ok {
		return tc, nil
	}
	return nil, &remote.Error{Op: "fetch-case", StatusCode: http.StatusNotFound}
}

type fakeRefs struct{ current, def string }

func (r fakeRefs) CurrentRef() (string, error) { return r.current, nil }
func (r fakeRefs) DefaultRef() (string, error) { return r.def, nil }

// fakeVCS is a full inspector on the default branch.
type fakeVCS struct{ fakeRefs }

func (fakeVCS) Name() vcs.Type                       { return vcs.TypeGit }
func (fakeVCS) Version() (string, error)             { return "2.45.0", nil }
func (fakeVCS) RepoRoot() (string, error)            { return "/repo", nil }
func (fakeVCS) IsInVCS() bool                        { return true }
func (fakeVCS) GetCommitHash(string) (string, error) { return "abc123", nil }
func (fakeVCS) HasChanges(...string) (bool, error)   { return false, nil }
func (fakeVCS) GetRemotes() ([]vcs.RemoteInfo, error) {
	return []vcs.RemoteInfo{{Name: "origin", URL: "git@github.com:acme/webapp.git"}}, nil
}

func tc(id, desc, dep string) *schema.TestCase {
	return &schema.TestCase{ID: id, Description: desc, DependencyID: dep}
}

func put(t *testing.T, path string, c *schema.TestCase) {
	t.Helper()
	require.NoError(t, schema.WriteFile(path, c, ""))
}

type harness struct {
	root    string
	remote  *fakeRemote
	session *Session
	errs    []error
}

func newHarness(t *testing.T, refs dispatch.RefSource) *harness {
	t.Helper()
	h := &harness{root: t.TempDir(), remote: &fakeRemote{}}
	h.session = &Session{
		Root:          h.root,
		Remote:        h.remote,
		VCS:           refs,
		OnRemoteError: func(err error) { h.errs = append(h.errs, err) },
	}
	return h
}

// seed writes "Set up data" (a) and "User logs in" (b, depends on a).
func (h *harness) seed(t *testing.T) {
	t.Helper()
	put(t, filepath.Join(h.root, "setUpData.yaml"), tc("a", "Set up data", ""))
	put(t, filepath.Join(h.root, "setUpData", "userLogsIn.yaml"), tc("b", "User logs in", "a"))
}

func TestValidate(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "broken.yaml"), []byte("id: ["), 0644))

	report, err := h.session.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, h.root, report.Dir)
	assert.Equal(t, 2, report.Cases)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0].Err, schema.ErrParseFailure)
}

func TestValidateCycle(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "x.yaml"), tc("x", "X", "y"))
	put(t, filepath.Join(h.root, "y.yaml"), tc("y", "Y", "x"))

	report, err := h.session.Validate(context.Background(), "")
	assert.ErrorIs(t, err, graph.ErrCycleDetected)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Cases)
}

func TestValidateSelfDependency(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "loop.yaml"), tc("a", "Loop", "a"))
	put(t, filepath.Join(h.root, "ok.yaml"), tc("b", "Ok", ""))

	report, err := h.session.Validate(context.Background(), "")
	require.ErrorIs(t, err, graph.ErrCycleDetected)
	var ce *graph.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"a", "a"}, ce.Cycle)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Cases)
	assert.Empty(t, report.Skipped)
}

func TestPullFull(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "old", "gone.yaml"), tc("z", "Gone", ""))
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", ""), tc("b", "User logs in", "a")}

	res, err := h.session.Pull(context.Background(), "web", PullOptions{})
	require.NoError(t, err)
	assert.False(t, res.RemoteFailed)
	assert.Equal(t, 2, res.Cases)
	assert.Equal(t, 2, res.Result.Written)
	assert.Equal(t, 1, res.Result.Deleted)

	assert.FileExists(t, filepath.Join(h.root, "setUpData.yaml"))
	assert.FileExists(t, filepath.Join(h.root, "setUpData", "userLogsIn.yaml"))
	assert.NoDirExists(t, filepath.Join(h.root, "old"))
	assert.DirExists(t, h.root)
}

func TestPullPartialKeepsLocal(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "mine.yaml"), tc("m", "Mine", ""))
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", "")}

	res, err := h.session.Pull(context.Background(), "web", PullOptions{Partial: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Result.Deleted)
	assert.FileExists(t, filepath.Join(h.root, "mine.yaml"))
	assert.FileExists(t, filepath.Join(h.root, "setUpData.yaml"))
}

func TestPullDestination(t *testing.T) {
	h := newHarness(t, nil)
	dest := filepath.Join(h.root, "imported")
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", "")}

	_, err := h.session.Pull(context.Background(), "web", PullOptions{Destination: dest})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "setUpData.yaml"))
}

func TestPullDryRun(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", "")}

	res, err := h.session.Pull(context.Background(), "web", PullOptions{DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	assert.Nil(t, res.Result)
	require.Len(t, res.Plan.Writes, 1)
	assert.Equal(t, filepath.Join(h.root, "setUpData.yaml"), res.Plan.Writes[0].Path)
	assert.NoFileExists(t, filepath.Join(h.root, "setUpData.yaml"))
}

func TestPullDryRunLeavesMissingDestination(t *testing.T) {
	h := newHarness(t, nil)
	dest := filepath.Join(h.root, "not", "yet")
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", ""), tc("b", "User logs in", "a")}

	res, err := h.session.Pull(context.Background(), "web", PullOptions{Destination: dest, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Plan.Writes, 2)
	assert.Equal(t, filepath.Join(dest, "setUpData", "userLogsIn.yaml"), res.Plan.Writes[1].Path)
	assert.NoDirExists(t, filepath.Join(h.root, "not"))
}

func TestPullDryRunTakesNoLock(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.snapshot = []*schema.TestCase{tc("a", "Set up data", "")}

	_, err := h.session.Pull(context.Background(), "web", PullOptions{DryRun: true})
	require.NoError(t, err)
	assert.NoFileExists(t, lock.Path(h.root))
}

func TestPullRemoteErrorLeavesTree(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "mine.yaml"), tc("m", "Mine", ""))
	h.remote.pullErr = &remote.Error{Op: "pull", StatusCode: http.StatusBadGateway}

	res, err := h.session.Pull(context.Background(), "web", PullOptions{})
	require.NoError(t, err)
	assert.True(t, res.RemoteFailed)
	require.Len(t, h.errs, 1)
	assert.ErrorIs(t, h.errs[0], remote.ErrRemote)
	assert.FileExists(t, filepath.Join(h.root, "mine.yaml"))
}

func TestPullInvalidSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	put(t, filepath.Join(h.root, "mine.yaml"), tc("m", "Mine", ""))
	h.remote.snapshot = []*schema.TestCase{tc("b", "User logs in", "missing")}

	_, err := h.session.Pull(context.Background(), "web", PullOptions{})
	require.ErrorIs(t, err, graph.ErrMissingReference)
	assert.FileExists(t, filepath.Join(h.root, "mine.yaml"))
	assert.NoFileExists(t, filepath.Join(h.root, "userLogsIn.yaml"))
}

func TestPullLocked(t *testing.T) {
	h := newHarness(t, nil)
	l, err := lock.Acquire(h.root)
	require.NoError(t, err)
	defer l.Release()

	_, err = h.session.Pull(context.Background(), "web", PullOptions{})
	assert.ErrorIs(t, err, lock.ErrLocked)
}

func TestPullRequiresRemote(t *testing.T) {
	s := &Session{Root: t.TempDir()}
	_, err := s.Pull(context.Background(), "web", PullOptions{})
	assert.Error(t, err)
}

func TestPushRouting(t *testing.T) {
	tests := []struct {
		name string
		refs dispatch.RefSource
		want dispatch.Endpoint
	}{
		{"default branch", fakeRefs{"main", "main"}, dispatch.Main},
		{"feature branch", fakeRefs{"feature/login", "main"}, dispatch.Draft},
		{"no vcs", nil, dispatch.Draft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.refs)
			h.seed(t)

			assert.Equal(t, tt.want, h.session.Routing())

			res, err := h.session.Push(context.Background(), "", "web")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Endpoint)
			assert.Equal(t, 2, res.Cases)
			assert.False(t, res.RemoteFailed)

			pushes := h.remote.draft
			if tt.want == dispatch.Main {
				pushes = h.remote.main
				assert.Empty(t, h.remote.draft)
			} else {
				assert.Empty(t, h.remote.main)
			}
			require.Len(t, pushes, 1)
			assert.Equal(t, "web", pushes[0].TargetID)
			assert.ElementsMatch(t, []string{"a", "b"}, graph.IDs(pushes[0].TestCases))
		})
	}
}

func TestPushCarriesVCSMetadata(t *testing.T) {
	h := newHarness(t, fakeVCS{fakeRefs{"main", "main"}})
	h.seed(t)

	_, err := h.session.Push(context.Background(), "", "web")
	require.NoError(t, err)
	require.Len(t, h.remote.main, 1)

	p := h.remote.main[0]
	assert.Equal(t, "main", p.Branch)
	assert.Equal(t, "abc123", p.Commit)
	assert.Equal(t, "acme", p.Owner)
	assert.Equal(t, "webapp", p.Repo)
}

func TestPushInvalidTreeSendsNothing(t *testing.T) {
	h := newHarness(t, fakeRefs{"main", "main"})
	put(t, filepath.Join(h.root, "a.yaml"), tc("a", "A", ""))
	put(t, filepath.Join(h.root, "copy.yaml"), tc("a", "Copy", ""))

	_, err := h.session.Push(context.Background(), "", "web")
	assert.ErrorIs(t, err, graph.ErrDuplicateID)
	assert.Empty(t, h.remote.main)
	assert.Empty(t, h.remote.draft)
}

func TestPushSelfDependencySendsNothing(t *testing.T) {
	h := newHarness(t, fakeRefs{"main", "main"})
	put(t, filepath.Join(h.root, "loop.yaml"), tc("a", "Loop", "a"))
	put(t, filepath.Join(h.root, "ok.yaml"), tc("b", "Ok", ""))

	_, err := h.session.Push(context.Background(), "", "web")
	assert.ErrorIs(t, err, graph.ErrCycleDetected)
	assert.Empty(t, h.remote.main)
	assert.Empty(t, h.remote.draft)
}

func TestPullPushRoundTripUnderSkippedName(t *testing.T) {
	h := newHarness(t, fakeRefs{"main", "main"})
	h.remote.snapshot = []*schema.TestCase{tc("v", "Vendor", ""), tc("c", "Child", "v")}

	_, err := h.session.Pull(context.Background(), "web", PullOptions{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(h.root, "vendor.yaml"))
	assert.FileExists(t, filepath.Join(h.root, "vendor_", "child.yaml"))

	res, err := h.session.Push(context.Background(), "", "web")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cases)
	require.Len(t, h.remote.main, 1)
	assert.ElementsMatch(t, []string{"v", "c"}, graph.IDs(h.remote.main[0].TestCases))

	again, err := h.session.Pull(context.Background(), "web", PullOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Result.Written)
	assert.Equal(t, 0, again.Result.Deleted)
	assert.Equal(t, 2, again.Result.Unchanged)
}

func TestPushFailureGoesToHandler(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)
	h.remote.pushErr = errors.New("connection reset")

	res, err := h.session.Push(context.Background(), "", "web")
	require.NoError(t, err)
	assert.True(t, res.RemoteFailed)
	require.Len(t, h.errs, 1)
	assert.Contains(t, h.errs[0].Error(), "push to draft failed")
}

func TestEditRelocatesAndPushesRelevantSet(t *testing.T) {
	h := newHarness(t, fakeRefs{"main", "main"})
	h.seed(t)
	put(t, filepath.Join(h.root, "unrelated.yaml"), tc("u", "Unrelated", ""))

	path := filepath.Join(h.root, "setUpData", "userLogsIn.yaml")
	edited := tc("b", "User signs in", "a")
	edited.Version = 2
	put(t, path, edited)

	res, err := h.session.Edit(context.Background(), path, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, res.Relevant)
	assert.Equal(t, dispatch.Main, res.Endpoint)
	assert.False(t, res.RemoteNewer)

	newPath := filepath.Join(h.root, "setUpData", "userSignsIn.yaml")
	assert.Equal(t, newPath, res.Path)
	assert.FileExists(t, newPath)
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(h.root, "unrelated.yaml"))

	require.Len(t, h.remote.main, 1)
	assert.Equal(t, []string{"b", "a"}, graph.IDs(h.remote.main[0].TestCases))
}

func TestEditRenameMovesDependents(t *testing.T) {
	h := newHarness(t, fakeRefs{"main", "main"})
	h.seed(t)
	put(t, filepath.Join(h.root, "setUpData", "userLogsIn", "userViewsDashboard.yaml"),
		tc("c", "User views dashboard", "b"))

	path := filepath.Join(h.root, "setUpData.yaml")
	put(t, path, tc("a", "Prepare data", ""))

	res, err := h.session.Edit(context.Background(), path, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Relevant)
	assert.Equal(t, filepath.Join(h.root, "prepareData.yaml"), res.Path)

	assert.FileExists(t, filepath.Join(h.root, "prepareData", "userLogsIn.yaml"))
	assert.FileExists(t, filepath.Join(h.root, "prepareData", "userLogsIn", "userViewsDashboard.yaml"))
	assert.NoFileExists(t, path)
	assert.NoDirExists(t, filepath.Join(h.root, "setUpData"))

	// dependents move but are not pushed
	require.Len(t, h.remote.main, 1)
	assert.Equal(t, []string{"a"}, graph.IDs(h.remote.main[0].TestCases))
}

func TestEditWarnsWhenRemoteNewer(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)
	remoteCopy := tc("b", "User logs in", "a")
	remoteCopy.Version = 5
	h.remote.cases = map[string]*schema.TestCase{"b": remoteCopy}

	res, err := h.session.Edit(context.Background(), filepath.Join(h.root, "setUpData", "userLogsIn.yaml"), "web")
	require.NoError(t, err)
	assert.True(t, res.RemoteNewer)
	require.Len(t, h.remote.draft, 1)
}

func TestEditFileOutsideRoot(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)

	outside := filepath.Join(t.TempDir(), "draft.yaml")
	put(t, outside, tc("b", "User logs in again", "a"))

	res, err := h.session.Edit(context.Background(), outside, "web")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.root, "setUpData", "userLogsInAgain.yaml"), res.Path)
	assert.NoFileExists(t, filepath.Join(h.root, "setUpData", "userLogsIn.yaml"))
	assert.FileExists(t, outside)
}

func TestEditParseFailureIsFatal(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(h.root, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no id\n"), 0644))

	_, err := h.session.Edit(context.Background(), path, "web")
	assert.ErrorIs(t, err, schema.ErrParseFailure)
	assert.Empty(t, h.remote.draft)
}

func TestEditMissingReference(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)
	path := filepath.Join(h.root, "setUpData", "userLogsIn.yaml")
	dangling := tc("b", "User logs in", "a")
	dangling.TeardownID = "nope"
	put(t, path, dangling)

	_, err := h.session.Edit(context.Background(), path, "web")
	var ce *graph.ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "nope", ce.ID)
	assert.Equal(t, "b", ce.ReferencedBy)
	assert.Empty(t, h.remote.draft)
}

func TestSubstitute(t *testing.T) {
	entries := []scan.Entry{
		{Case: tc("a", "A", ""), Path: "a.yaml"},
		{Case: tc("b", "B", ""), Path: "b.yaml"},
		{Case: tc("b", "B copy", ""), Path: "b-1.yaml"},
	}

	edited := tc("b", "B edited", "")
	got := substitute(entries, edited)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Same(t, edited, got[1])

	fresh := tc("n", "New", "")
	got = substitute(entries[:1], fresh)
	assert.Equal(t, []string{"a", "n"}, graph.IDs(got))
}

func TestCreateWithDependency(t *testing.T) {
	h := newHarness(t, fakeRefs{"feature", "main"})
	h.seed(t)

	res, err := h.session.Create(context.Background(), "User views dashboard", "web", CreateOptions{
		DependencyPath: filepath.Join(h.root, "setUpData", "userLogsIn.yaml"),
		TeardownPath:   filepath.Join(h.root, "setUpData.yaml"),
		ID:             "new-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", res.Case.ID)
	assert.Equal(t, "b", res.Case.DependencyID)
	assert.Equal(t, "a", res.Case.TeardownID)
	assert.Equal(t, dispatch.Draft, res.Endpoint)

	want := filepath.Join(h.root, "setUpData", "userLogsIn", "userViewsDashboard.yaml")
	assert.Equal(t, want, res.Path)
	got, err := schema.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "User views dashboard", got.Description)

	require.Len(t, h.remote.draft, 1)
	assert.Equal(t, []string{"new-1", "b", "a"}, graph.IDs(h.remote.draft[0].TestCases))
}

func TestCreateGeneratesID(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.session.Create(context.Background(), "  Set up data  ", "web", CreateOptions{})
	require.NoError(t, err)
	_, err = uuid.Parse(res.Case.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Set up data", res.Case.Description)
	assert.Equal(t, filepath.Join(h.root, "setUpData.yaml"), res.Path)
}

func TestCreateNameCollision(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)

	res, err := h.session.Create(context.Background(), "Set up data", "web", CreateOptions{ID: "a2"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.root, "setUpData-1.yaml"), res.Path)
	assert.FileExists(t, filepath.Join(h.root, "setUpData.yaml"))
}

func TestCreateErrors(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t)

	_, err := h.session.Create(context.Background(), " ?? ", "web", CreateOptions{})
	assert.ErrorIs(t, err, naming.ErrEmptyIdentifier)

	bad := filepath.Join(h.root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nope: 1\n"), 0644))
	_, err = h.session.Create(context.Background(), "Child", "web", CreateOptions{DependencyPath: bad})
	assert.ErrorIs(t, err, schema.ErrParseFailure)

	_, err = h.session.Create(context.Background(), "Copy", "web", CreateOptions{ID: "a"})
	assert.ErrorIs(t, err, graph.ErrDuplicateID)

	assert.Empty(t, h.remote.draft)
}
