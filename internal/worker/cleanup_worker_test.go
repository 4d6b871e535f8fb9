package worker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tiktask/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	paths []string
	err   error
}

func (f *fakeIndex) AllAttachmentPaths(ctx context.Context) ([]string, error) {
	return f.paths, f.err
}

func writeFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	if age > 0 {
		old := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(p, old, old))
	}
	return p
}

func TestSweepRemovesOrphans(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	known := writeFile(t, dir, "known.pdf", 48*time.Hour)
	orphan := writeFile(t, dir, "orphan.pdf", 48*time.Hour)
	fresh := writeFile(t, dir, "fresh.pdf", 0)

	index := &fakeIndex{paths: []string{"uploads/known.pdf"}}
	w := worker.NewCleanupWorker(index, dir, time.Hour, 24*time.Hour)

	w.Sweep(context.Background())

	assert.FileExists(t, known)
	assert.NoFileExists(t, orphan)
	// свежий файл мог прийти из ещё идущего запроса
	assert.FileExists(t, fresh)
}

func TestSweepSkipsOnIndexError(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	orphan := writeFile(t, dir, "orphan.pdf", 48*time.Hour)

	index := &fakeIndex{err: errors.New("db down")}
	w := worker.NewCleanupWorker(index, dir, time.Hour, 24*time.Hour)

	w.Sweep(context.Background())

	// без списка известных путей ничего не трогаем
	assert.FileExists(t, orphan)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	w := worker.NewCleanupWorker(&fakeIndex{}, dir, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("воркер не остановился после отмены контекста")
	}
}
