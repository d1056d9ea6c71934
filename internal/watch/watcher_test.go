package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changed)
	return nil
}

func (r *recorder) all() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func TestNew_SkipsIgnoredTrees(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"static/site", "deploy/site", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	w, err := New([]string{root, filepath.Join(root, "missing")}, []string{filepath.Join(root, "deploy")},
		time.Millisecond, nil, func(context.Context, []string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fs.Close() })

	watched := w.Watched()
	assert.Contains(t, watched, filepath.Join(root, "static", "site"))
	assert.NotContains(t, watched, filepath.Join(root, "deploy"))
	assert.NotContains(t, watched, filepath.Join(root, "deploy", "site"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
}

func TestRun_DebouncesChanges(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	w, err := New([]string{root}, nil, 50*time.Millisecond, nil, rec.onChange)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.css"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.css"), []byte("b"), 0o644))

	require.Eventually(t, func() bool { return len(rec.all()) > 0 }, 5*time.Second, 10*time.Millisecond)
	batches := rec.all()
	assert.Contains(t, batches[0], filepath.Join(root, "a.css"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	w, err := New([]string{root}, nil, 20*time.Millisecond, nil, rec.onChange)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	sub := filepath.Join(root, "images")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return len(rec.all()) > 0 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "logo.png"), []byte("png"), 0o644))
	require.Eventually(t, func() bool {
		for _, b := range rec.all() {
			for _, p := range b {
				if p == filepath.Join(sub, "logo.png") {
					return true
				}
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRun_IgnoresMatchingFiles(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "history.db")
	rec := &recorder{}
	w, err := New([]string{root}, nil, 50*time.Millisecond, nil, rec.onChange)
	require.NoError(t, err)
	w.WithIgnore(func(p string) bool { return strings.HasPrefix(p, db) })

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(db, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(db+"-journal", []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "page.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(rec.all()) > 0 }, 5*time.Second, 10*time.Millisecond)
	for _, batch := range rec.all() {
		assert.NotContains(t, batch, db)
		assert.NotContains(t, batch, db+"-journal")
	}
}
