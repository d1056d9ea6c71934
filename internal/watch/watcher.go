// Package watch triggers rebuilds when files below the watched directories change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
)

// ChangeFunc is called once per debounce window with the sorted changed paths.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches directory trees and reports debounced batches of changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	skip     []string
	ignore   func(path string) bool
	onChange ChangeFunc
}

// New watches every directory below roots. Directories below any skip path, and
// .git directories, are ignored. Missing roots are skipped.
func New(roots, skip []string, debounce time.Duration, logger *slog.Logger, onChange ChangeFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{
		fs:       fsw,
		logger:   logging.OrDiscard(logger),
		debounce: debounce,
		onChange: onChange,
	}
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			w.skip = append(w.skip, abs)
		}
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve watch path").
				WithContext("path", root).Build()
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			w.logger.Debug("Watch path does not exist", logfields.Path(abs))
			continue
		}
		if err := w.addTree(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// WithIgnore drops events for paths matching ignore, such as files written by the
// change callback itself.
func (w *Watcher) WithIgnore(ignore func(path string) bool) *Watcher {
	w.ignore = ignore
	return w
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string {
	list := w.fs.WatchList()
	slices.Sort(list)
	return list
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to walk watch path").
				WithContext("path", p).Build()
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipped(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to watch directory").
				WithContext("path", p).Build()
		}
		return nil
	})
}

func (w *Watcher) skipped(p string) bool {
	if filepath.Base(p) == ".git" {
		return true
	}
	if w.ignore != nil && w.ignore(p) {
		return true
	}
	for _, s := range w.skip {
		if p == s || strings.HasPrefix(p, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run processes events until ctx is done. Errors returned by the change callback are
// logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.skipped(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("File change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)

			w.logger.Info("Rebuilding after changes", logfields.Count(len(changed)))
			if err := w.onChange(ctx, changed); err != nil {
				w.logger.Error("Rebuild after changes failed", logfields.Error(err))
			}
		}
	}
}
