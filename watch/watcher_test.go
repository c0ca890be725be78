package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir, pattern string, runs *atomic.Int32) context.CancelFunc {
	t.Helper()

	w, err := New(dir, pattern, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, w.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond,
		"initial run")
	return cancel
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, "*.pdf", nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(dir, "missing"), "*.pdf", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file, "*.pdf", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestWatcher_RunsOnMatchingChange(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	startWatcher(t, dir, "*.txt", &runs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	startWatcher(t, dir, "*.txt", &runs)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}

	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestWatcher_IgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	startWatcher(t, dir, "*.pdf", &runs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestWatcher_RecursivePattern(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "reports")
	require.NoError(t, os.Mkdir(sub, 0o755))

	var runs atomic.Int32
	startWatcher(t, dir, "**/*.txt", &runs)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "q1.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "*.pdf", func(context.Context) error { return nil })
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "report.pdf")
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "report.txt"), Op: fsnotify.Create}))
}
