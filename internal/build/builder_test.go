package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/render"
	"git.home.luguber.info/inful/sitedeploy/internal/sites"
	"git.home.luguber.info/inful/sitedeploy/internal/workspace"
)

func testSite(name string) sites.Site {
	return sites.Site{
		Name: name,
		Pages: map[string]render.Renderable{
			"index.html":       render.Text("<p>" + name + "</p>"),
			"about/index.html": render.Text("  <p>about</p>\n\n"),
		},
	}
}

func newTestBuilder(t *testing.T) (*Builder, string) {
	t.Helper()
	root := t.TempDir()
	return NewBuilder(workspace.NewManager(root, nil)), root
}

func TestBuildSite_WritesPagesWithTrailingNewline(t *testing.T) {
	b, root := newTestBuilder(t)

	dir, err := b.BuildSite(t.Context(), testSite("alpha"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "deploy", "alpha"), dir)

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>alpha</p>\n", string(index))

	about, err := os.ReadFile(filepath.Join(dir, "about", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>about</p>\n", string(about))
}

func TestBuildSite_RemovesStaleFiles(t *testing.T) {
	b, root := newTestBuilder(t)
	stale := filepath.Join(root, "deploy", "alpha", "old.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := b.BuildSite(t.Context(), testSite("alpha"))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildSite_StaticSymlink(t *testing.T) {
	b, root := newTestBuilder(t)
	static := filepath.Join(root, "static", "withassets")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "style.css"), []byte("p{}"), 0o644))

	withDir, err := b.BuildSite(t.Context(), testSite("withassets"))
	require.NoError(t, err)
	info, err := os.Lstat(filepath.Join(withDir, "static"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	target, err := os.Readlink(filepath.Join(withDir, "static"))
	require.NoError(t, err)
	assert.Equal(t, static, target)
	_, err = os.Stat(filepath.Join(withDir, "static", "style.css"))
	require.NoError(t, err)

	withoutDir, err := b.BuildSite(t.Context(), testSite("plain"))
	require.NoError(t, err)
	_, err = os.Lstat(filepath.Join(withoutDir, "static"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildSite_InvalidSiteName(t *testing.T) {
	b, _ := newTestBuilder(t)
	_, err := b.BuildSite(t.Context(), testSite("../escape"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestBuildSite_Cancelled(t *testing.T) {
	b, root := newTestBuilder(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := b.BuildSite(ctx, testSite("alpha"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "deploy", "alpha"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildAll_IsolatesFailingSite(t *testing.T) {
	var logs bytes.Buffer
	b, root := newTestBuilder(t)
	b.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	broken := sites.Site{
		Name:  "broken",
		Pages: map[string]render.Renderable{"/etc/index.html": render.Text("x")},
	}
	results, err := b.BuildAll(t.Context(), []sites.Site{testSite("alpha"), broken, testSite("gamma")})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "deploy", "alpha"),
		filepath.Join(root, "deploy", "gamma"),
	}, results.Succeeded())

	failed := results.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Site)
	assert.True(t, errors.HasCategory(failed[0].Err, errors.CategoryValidation))
	site, ok := failed[0].Err.Context().GetString("site")
	require.True(t, ok)
	assert.Equal(t, "broken", site)

	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "site=broken")
	assert.Contains(t, logs.String(), "chain=")
}

func TestBuildAll_AllFailingYieldsEmptySet(t *testing.T) {
	b, _ := newTestBuilder(t)
	broken := sites.Site{Name: "broken", Pages: map[string]render.Renderable{"index.html": render.HTML{}}}

	results, err := b.BuildAll(t.Context(), []sites.Site{broken})
	require.NoError(t, err)
	assert.Empty(t, results.Succeeded())
	assert.True(t, errors.HasCategory(results[0].Err, errors.CategoryRender))
}

func TestBuildAll_RejectsInvalidCollections(t *testing.T) {
	b, _ := newTestBuilder(t)

	_, err := b.BuildAll(t.Context(), nil)
	require.Error(t, err)

	_, err = b.BuildAll(t.Context(), []sites.Site{testSite("dup"), testSite("dup")})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	results, err := b.BuildAll(t.Context(), []sites.Site{})
	require.NoError(t, err)
	assert.Empty(t, results.Succeeded())
}

func TestBuildAll_RebuildIsByteIdentical(t *testing.T) {
	b, root := newTestBuilder(t)
	b.WithMinify(true)
	all := []sites.Site{{
		Name: "alpha",
		Pages: map[string]render.Renderable{
			"index.html": render.Text("<!DOCTYPE html><html><head><title>a</title></head>" +
				"<body><p>Email:<a href=\"mailto:a@example.com\">a</a></p></body></html>"),
		},
	}}

	_, err := b.BuildAll(t.Context(), all)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, "deploy", "alpha", "index.html"))
	require.NoError(t, err)

	_, err = b.BuildAll(t.Context(), all)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(root, "deploy", "alpha", "index.html"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "Email: <a")
}

func TestBuildAll_ShippedSites(t *testing.T) {
	b, root := newTestBuilder(t)

	results, err := b.BuildAll(t.Context(), sites.All())
	require.NoError(t, err)
	require.Empty(t, results.Failed())
	for _, s := range sites.All() {
		for _, p := range s.PagePaths() {
			data, err := os.ReadFile(filepath.Join(root, "deploy", s.Name, filepath.FromSlash(p)))
			require.NoError(t, err, "%s/%s", s.Name, p)
			assert.Equal(t, byte('\n'), data[len(data)-1])
		}
	}
}
