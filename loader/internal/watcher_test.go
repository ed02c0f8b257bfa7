package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherEmitsSettledFile(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWatcher(dir, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, fileChan)
	}()

	// give the watcher a moment to register before dropping the file
	time.Sleep(200 * time.Millisecond)
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	select {
	case got := <-fileChan:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("settled file never emitted")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}

func TestWatcherPicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.txt")
	require.NoError(t, os.WriteFile(path, []byte("already here"), 0o644))

	w := NewDirWatcher(dir, 100*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 4)
	go w.Watch(ctx, fileChan)

	select {
	case got := <-fileChan:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("pre-existing file never emitted")
	}
}

func TestWatcherIgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWatcher(dir, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 4)
	go w.Watch(ctx, fileChan)

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case got := <-fileChan:
		assert.Equal(t, filepath.Join(dir, "notes.txt"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("supported file never emitted")
	}

	select {
	case got := <-fileChan:
		t.Fatalf("unexpected extra emission: %s", got)
	case <-time.After(1500 * time.Millisecond):
	}
}
