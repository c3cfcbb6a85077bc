package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStarted(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(root, []string{"node_modules"}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// waitFor reads events until one matches path and op or the deadline hits.
func waitFor(t *testing.T, w *Watcher, path string, op Op) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-w.Events():
			if e.Path == path && e.Op == op {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", op, path)
		}
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "modify", OpModify.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", Op(42).String())
}

func TestStartStop(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())
}

func TestStartMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start())
}

func TestEventsInNestedDirectory(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "setUpData", "userLogsIn")
	require.NoError(t, os.MkdirAll(nested, 0755))
	w := newStarted(t, root)

	path := filepath.Join(nested, "checkout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: a\n"), 0644))
	waitFor(t, w, path, OpCreate)

	require.NoError(t, os.Remove(path))
	waitFor(t, w, path, OpDelete)
}

func TestNewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	w := newStarted(t, root)

	dir := filepath.Join(root, "setUpData")
	require.NoError(t, os.Mkdir(dir, 0755))

	// give the watcher a moment to add the new directory
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "later.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: b\n"), 0644))
	waitFor(t, w, path, OpCreate)
}

func TestConvertFilters(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, []string{"node_modules"}, nil)
	require.NoError(t, err)
	defer w.Stop()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  []Event
	}{
		{"yaml write", fsnotify.Event{Name: filepath.Join(root, "a.yaml"), Op: fsnotify.Write}, []Event{{filepath.Join(root, "a.yaml"), OpModify}}},
		{"yaml rename", fsnotify.Event{Name: filepath.Join(root, "a.yaml"), Op: fsnotify.Rename}, []Event{{filepath.Join(root, "a.yaml"), OpDelete}}},
		{"yaml chmod", fsnotify.Event{Name: filepath.Join(root, "a.yaml"), Op: fsnotify.Chmod}, nil},
		{"other file", fsnotify.Event{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Write}, nil},
		{"hidden yaml", fsnotify.Event{Name: filepath.Join(root, ".tcsync.yaml"), Op: fsnotify.Write}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.convert(tt.event))
		})
	}
}

func TestConvertCreatedDirectoryReportsCases(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, []string{"node_modules"}, nil)
	require.NoError(t, err)
	defer w.Stop()

	moved := filepath.Join(root, "moved")
	require.NoError(t, os.MkdirAll(filepath.Join(moved, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(moved, "a.yaml"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(moved, "node_modules", "b.yaml"), nil, 0644))

	got := w.convert(fsnotify.Event{Name: moved, Op: fsnotify.Create})
	assert.Equal(t, []Event{{Path: filepath.Join(moved, "a.yaml"), Op: OpCreate}}, got)

	skipped := filepath.Join(root, "node_modules")
	require.NoError(t, os.Mkdir(skipped, 0755))
	assert.Nil(t, w.convert(fsnotify.Event{Name: skipped, Op: fsnotify.Create}))
}

func TestRunDebounces(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]Event
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, w, 200*time.Millisecond, func(_ context.Context, batch []Event) {
			mu.Lock()
			batches = append(batches, batch)
			mu.Unlock()
		})
	}()

	require.Eventually(t, w.IsRunning, time.Second, 10*time.Millisecond)

	path := filepath.Join(root, "a.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("id: a\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	first := batches[0]
	mu.Unlock()
	require.Len(t, first, 1)
	assert.Equal(t, path, first[0].Path)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDrain(t *testing.T) {
	pending := map[string]Event{
		"b.yaml": {Path: "b.yaml", Op: OpModify},
		"a.yaml": {Path: "a.yaml", Op: OpDelete},
	}
	got := drain(pending)
	assert.Equal(t, []Event{{"a.yaml", OpDelete}, {"b.yaml", OpModify}}, got)
	assert.Empty(t, pending)
}
