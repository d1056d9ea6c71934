// Package project locates the sitedeploy project root: the working tree of the
// enclosing git repository, or failing that the nearest ancestor holding a README.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// maxReadmeDepth bounds how many ancestors are inspected for a README.
const maxReadmeDepth = 8

// FindRoot resolves the project root starting from dir.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve working directory").
			WithContext("dir", dir).
			Build()
	}
	if root, ok := gitRoot(abs); ok {
		return root, nil
	}
	return readmeRoot(abs)
}

// FindRootFromWorkingDir resolves the project root from the process working directory.
func FindRootFromWorkingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read working directory").Build()
	}
	return FindRoot(wd)
}

func gitRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no working tree to render into
		return "", false
	}
	root := wt.Filesystem.Root()
	if root == "" {
		return "", false
	}
	return root, true
}

func readmeRoot(dir string) (string, error) {
	current := dir
	for range maxReadmeDepth + 1 {
		if hasReadme(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", errors.FileSystemError("could not locate project root directory").
		WithContext("start", dir).
		Build()
}

func hasReadme(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == "README" {
			return true
		}
	}
	return false
}
