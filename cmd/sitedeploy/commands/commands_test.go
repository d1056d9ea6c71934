package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/render"
	"git.home.luguber.info/inful/sitedeploy/internal/sites"
)

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	return nil, nil
}

// clearEnv unsets every variable the CLI reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG", "VERBOSITY", "DRY_RUN", "MINIFY", "LOG_FORMAT", "SITES",
		"REMOTE_IP", "REMOTE_USERNAME", "REMOTE_DIRECTORY", "REMOTE_IDENTITY_FILE",
		"HISTORY_DB", "METRICS_FILE",
	} {
		name := "STATIC_WEBSITES_BUILDER_" + key
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

type harness struct {
	root   string
	runner *fakeRunner
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clearEnv(t)
	return &harness{root: t.TempDir(), runner: &fakeRunner{}}
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	g := &Global{
		Root:   h.root,
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Runner: h.runner,
		Sites: []sites.Site{
			{Name: "one", Pages: map[string]render.Renderable{"index.html": render.Text("<p>one</p>")}},
			{Name: "two", Pages: map[string]render.Renderable{"index.html": render.Text("<p>two</p>")}},
		},
	}
	return run(t.Context(), args, g)
}

func TestDefaultCommandDryRun(t *testing.T) {
	h := newHarness(t)

	code := h.run(t, "--dry-run")
	assert.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, "one,two", h.stdout.String())
	require.Len(t, h.runner.calls, 2)
	assert.Contains(t, h.runner.calls[0], "--dry-run")
	assert.NoDirExists(t, filepath.Join(h.root, "deploy"))
}

func TestEnvironmentSettings(t *testing.T) {
	h := newHarness(t)
	t.Setenv("STATIC_WEBSITES_BUILDER_REMOTE_IP", " 10.9.8.7\n")
	t.Setenv("STATIC_WEBSITES_BUILDER_REMOTE_USERNAME", "web")
	t.Setenv("STATIC_WEBSITES_BUILDER_SITES", "two")

	code := h.run(t, "run")
	assert.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, "two", h.stdout.String())
	require.Len(t, h.runner.calls, 1)
	args := h.runner.calls[0]
	assert.Equal(t, "web@10.9.8.7:/home/web/two", args[len(args)-1])
	assert.NotContains(t, args, "--dry-run")
	assert.DirExists(t, filepath.Join(h.root, "deploy", "two"))
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env"),
		[]byte("STATIC_WEBSITES_BUILDER_REMOTE_IP=10.0.0.1\nSTATIC_WEBSITES_BUILDER_REMOTE_DIRECTORY=www\n"), 0o600))
	t.Setenv("STATIC_WEBSITES_BUILDER_REMOTE_IP", "10.0.0.2")
	t.Cleanup(func() { _ = os.Unsetenv("STATIC_WEBSITES_BUILDER_REMOTE_DIRECTORY") })

	code := h.run(t, "--sites=one")
	assert.Equal(t, 0, code, h.stderr.String())
	require.Len(t, h.runner.calls, 1)
	args := h.runner.calls[0]
	assert.Equal(t, "10.0.0.2:/www/one", args[len(args)-1])
}

func TestMissingHostIsUsageError(t *testing.T) {
	h := newHarness(t)

	code := h.run(t, "run")
	assert.Equal(t, 2, code)
	assert.Contains(t, h.stderr.String(), "remote host is required")
	assert.Empty(t, h.runner.calls)
}

func TestNegativeVerbosityWithDryRun(t *testing.T) {
	h := newHarness(t)

	code := h.run(t, "--dry-run", "--verbosity=-1")
	assert.Equal(t, 2, code)
	assert.Contains(t, h.stderr.String(), "negative verbosity")
}

func TestBuildThenClean(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "build"), h.stderr.String())
	assert.Equal(t, "one,two", h.stdout.String())
	assert.FileExists(t, filepath.Join(h.root, "deploy", "one", "index.html"))

	require.Equal(t, 0, h.run(t, "clean"), h.stderr.String())
	assert.NoDirExists(t, filepath.Join(h.root, "deploy"))
}

func TestInitAndConfigFile(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "init"), h.stderr.String())
	path := filepath.Join(h.root, "sitedeploy.yaml")
	assert.FileExists(t, path)

	assert.Equal(t, 7, h.run(t, "init"), "existing file without --force")
	require.Equal(t, 0, h.run(t, "init", "--force"), h.stderr.String())

	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\ndry_run: true\nminify: false\n"), 0o600))
	h.stdout.Reset()
	require.Equal(t, 0, h.run(t), h.stderr.String())
	assert.Equal(t, "one,two", h.stdout.String())
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness(t)
	db := filepath.Join(h.root, "history.db")

	require.Equal(t, 0, h.run(t, "--dry-run", "--history-db", db), h.stderr.String())
	h.stdout.Reset()
	require.Equal(t, 0, h.run(t, "history", "--history-db", db, "-n", "5"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "STATUS")
	assert.Contains(t, h.stdout.String(), "succeeded")

	assert.Equal(t, 7, h.run(t, "history"), "history disabled")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "version"))
	assert.Contains(t, h.stdout.String(), "sitedeploy ")
}

func TestRootOnlyRequiredWhereUsed(t *testing.T) {
	clearEnv(t)
	lookups := 0
	noRoot := func() (string, error) {
		lookups++
		return "", errors.FileSystemError("could not locate project root directory").Build()
	}
	var stdout, stderr bytes.Buffer
	runner := &fakeRunner{}
	newGlobal := func() *Global {
		return &Global{Stdout: &stdout, Stderr: &stderr, Runner: runner, FindRoot: noRoot}
	}

	code := run(t.Context(), []string{"version"}, newGlobal())
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "sitedeploy ")
	assert.Empty(t, stderr.String())

	code = run(t.Context(), []string{"--dry-run"}, newGlobal())
	assert.Equal(t, 11, code)
	assert.Contains(t, stderr.String(), "could not locate project root directory")
	assert.Empty(t, runner.calls)
	assert.Equal(t, 2, lookups)
}
