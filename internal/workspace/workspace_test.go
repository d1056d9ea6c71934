package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_Layout(t *testing.T) {
	root := t.TempDir()
	mgr := NewManager(root, nil)

	if got, want := mgr.DeployRoot(), filepath.Join(root, "deploy"); got != want {
		t.Fatalf("DeployRoot() = %s, want %s", got, want)
	}

	siteDir, err := mgr.SiteDir("carrotmanmatt.com")
	if err != nil {
		t.Fatalf("SiteDir() failed: %v", err)
	}
	if want := filepath.Join(root, "deploy", "carrotmanmatt.com"); siteDir != want {
		t.Errorf("SiteDir() = %s, want %s", siteDir, want)
	}

	staticDir, err := mgr.StaticDir("car-points")
	if err != nil {
		t.Fatalf("StaticDir() failed: %v", err)
	}
	if want := filepath.Join(root, "static", "car-points"); staticDir != want {
		t.Errorf("StaticDir() = %s, want %s", staticDir, want)
	}
}

func TestManager_RejectsEscapingSiteNames(t *testing.T) {
	mgr := NewManager(t.TempDir(), nil)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../etc"} {
		if _, err := mgr.SiteDir(name); err == nil {
			t.Errorf("SiteDir(%q) should fail", name)
		}
	}
}

func TestManager_HasStatic(t *testing.T) {
	root := t.TempDir()
	mgr := NewManager(root, nil)

	if _, ok := mgr.HasStatic("car-points"); ok {
		t.Fatal("HasStatic() should be false without a static directory")
	}

	if err := os.MkdirAll(filepath.Join(root, "static", "car-points"), 0o755); err != nil {
		t.Fatal(err)
	}
	dir, ok := mgr.HasStatic("car-points")
	if !ok || dir != filepath.Join(root, "static", "car-points") {
		t.Fatalf("HasStatic() = %s, %v", dir, ok)
	}

	// A plain file with the site's name does not count as an assets directory.
	if err := os.WriteFile(filepath.Join(root, "static", "other"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := mgr.HasStatic("other"); ok {
		t.Error("HasStatic() should ignore regular files")
	}
}

func TestManager_RecreateRemovesStaleFiles(t *testing.T) {
	root := t.TempDir()
	mgr := NewManager(root, nil)
	siteDir, _ := mgr.SiteDir("car-points")

	if err := os.MkdirAll(filepath.Join(siteDir, "old"), 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(siteDir, "old", "page.html")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Recreate(siteDir); err != nil {
		t.Fatalf("Recreate() failed: %v", err)
	}

	entries, err := os.ReadDir(siteDir)
	if err != nil {
		t.Fatalf("site directory missing after Recreate(): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestManager_CleanupIsIdempotent(t *testing.T) {
	root := t.TempDir()
	mgr := NewManager(root, nil)

	// Absent deploy tree is a no-op.
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() on missing tree failed: %v", err)
	}

	siteDir, _ := mgr.SiteDir("car-points")
	if err := mgr.Recreate(siteDir); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(mgr.DeployRoot()); !os.IsNotExist(err) {
		t.Errorf("deploy tree still exists after cleanup")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("project root must survive cleanup: %v", err)
	}
}

func TestSiteName(t *testing.T) {
	cases := map[string]string{
		"/srv/project/deploy/car-points":         "car-points",
		"/srv/project/deploy/carrotmanmatt.com/": "carrotmanmatt.com",
		"/srv/project/car-points/deploy":         "car-points",
	}
	for in, want := range cases {
		if got := SiteName(in); got != want {
			t.Errorf("SiteName(%q) = %q, want %q", in, got, want)
		}
	}
}
