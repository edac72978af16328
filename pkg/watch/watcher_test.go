package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchSignalsOnFileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(nil)
	w.debounce = 50 * time.Millisecond

	changed := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx, root, changed) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "new.txt"), []byte("x"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestWatchStopsWhenContextCancelled(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- New(nil).Watch(ctx, root, changed) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop")
	}

	// The watcher closes its channel on return.
	for range changed {
	}
}
