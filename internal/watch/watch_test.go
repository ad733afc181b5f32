package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/acklang/ack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) <-chan []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 8)
	done := make(chan error, 1)

	w := New(dir, WithDebounce(50*time.Millisecond), WithLogger(testutil.NewTestLogger(t)))
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// fsnotify registers watches synchronously inside Run; give it a moment.
	time.Sleep(50 * time.Millisecond)
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestWatcher_BatchesComponentChanges(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, dir)

	a := filepath.Join(dir, "A.ack")
	b := filepath.Join(dir, "B.ack")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("<h1>b</h1>"), 0600))
	require.NoError(t, os.WriteFile(a, []byte("<h1>a</h1>"), 0600))

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, dir)

	sub := filepath.Join(dir, "widgets")
	require.NoError(t, os.Mkdir(sub, 0750))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "Card.ack")
	require.NoError(t, os.WriteFile(file, []byte("<p>card</p>"), 0600))

	assert.Contains(t, waitBatch(t, batches), file)
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"))
	err := w.Run(context.Background(), func([]string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
