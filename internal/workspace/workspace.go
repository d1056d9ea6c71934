package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
)

const (
	// DeployDirName is the directory under the project root holding rendered sites.
	DeployDirName = "deploy"
	// StaticDirName is the directory under the project root holding per-site assets,
	// and the name of the symlink placed in each site's deployment directory.
	StaticDirName = "static"
)

// Manager resolves and maintains the deploy tree of one project root.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager for the project rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{root: root, logger: logging.OrDiscard(logger)}
}

// Root returns the project root.
func (m *Manager) Root() string { return m.root }

// DeployRoot returns <root>/deploy.
func (m *Manager) DeployRoot() string {
	return filepath.Join(m.root, DeployDirName)
}

// SiteDir returns the deployment directory of site.
func (m *Manager) SiteDir(site string) (string, error) {
	if err := ValidateSiteName(site); err != nil {
		return "", err
	}
	return filepath.Join(m.DeployRoot(), site), nil
}

// StaticDir returns the static-assets directory of site. It may not exist.
func (m *Manager) StaticDir(site string) (string, error) {
	if err := ValidateSiteName(site); err != nil {
		return "", err
	}
	return filepath.Join(m.root, StaticDirName, site), nil
}

// HasStatic reports whether site has a static-assets directory.
func (m *Manager) HasStatic(site string) (string, bool) {
	dir, err := m.StaticDir(site)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// Recreate deletes dir recursively if it exists and creates it again, parents included.
func (m *Manager) Recreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove deployment directory").
			WithContext("path", dir).
			Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create deployment directory").
			WithContext("path", dir).
			Build()
	}
	m.logger.Debug("Recreated deployment directory", logfields.Path(dir))
	return nil
}

// Cleanup removes the whole deploy tree. A missing tree is not an error.
func (m *Manager) Cleanup() error {
	dir := m.DeployRoot()
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean up deploy directory").
			WithContext("path", dir).
			Build()
	}
	m.logger.Debug("Cleaned up deploy directory", logfields.Path(dir))
	return nil
}

// SiteName recovers the site name from a deployment directory path.
func SiteName(siteDir string) string {
	clean := filepath.Clean(siteDir)
	if filepath.Base(clean) == DeployDirName {
		return filepath.Base(filepath.Dir(clean))
	}
	return filepath.Base(clean)
}

// ValidateSiteName rejects names that would escape the deploy tree.
func ValidateSiteName(site string) error {
	if site == "" || site == "." || site == ".." || strings.ContainsAny(site, `/\`) {
		return errors.ValidationError("invalid site name").
			WithContext("site", site).
			WithContext("reason", fmt.Sprintf("%q is not a single path element", site)).
			Build()
	}
	return nil
}
