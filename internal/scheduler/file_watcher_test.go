package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/domon/internal/logger"
)

func TestFileWatcherCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains: []\n"), 0o644))

	var calls atomic.Int32
	fw := NewFileWatcher(path, func(context.Context) error {
		calls.Add(1)
		return nil
	}, logger.NewNop(), 20*time.Millisecond)
	require.NoError(t, fw.Start(context.Background()))
	t.Cleanup(fw.Stop)

	// unrelated files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("domains:\n  - domain: a.com\n"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	fw := NewFileWatcher(filepath.Join(t.TempDir(), "absent", "fixture.yaml"),
		func(context.Context) error { return nil }, logger.NewNop(), 0)

	assert.Error(t, fw.Start(context.Background()))
	fw.Stop()
}

func TestFileWatcherStopsOnContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	fw := NewFileWatcher(path, func(context.Context) error { return nil }, logger.NewNop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, fw.Start(ctx))
	cancel()

	select {
	case <-fw.done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
	fw.Stop()
}
