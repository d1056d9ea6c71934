package app

import (
	"context"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/watch"
)

// Watch builds once, then rebuilds whenever files below the project root change.
// Sites are deployed after each build when a host is configured or on dry runs. Every
// rebuild is recorded as its own run. It returns when ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	if a.opts.Settings.DryRun {
		defer a.cleanupAfterDryRun()
	}
	var target deploy.Target
	deployEnabled := a.opts.Settings.Host != "" || a.opts.Settings.DryRun
	if deployEnabled {
		t, err := a.Target(ctx)
		if err != nil {
			return err
		}
		target = t
	}

	cycle := func(ctx context.Context, changed []string) error {
		_, err := a.rebuild(ctx, target, deployEnabled, changed)
		return err
	}
	if err := cycle(ctx, nil); err != nil {
		return err
	}

	roots := []string{a.ws.Root()}
	for _, p := range a.opts.Settings.WatchPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.ws.Root(), p)
		}
		roots = append(roots, p)
	}
	w, err := watch.New(roots, []string{a.ws.DeployRoot()}, a.opts.Settings.Debounce, a.logger, cycle)
	if err != nil {
		return err
	}
	w.WithIgnore(a.isRunOutput)
	a.logger.Info("Watching for changes", logfields.Count(len(w.Watched())))
	return w.Run(ctx)
}

// rebuild runs one watch cycle and completes its history row. Every cycle after the
// first gets a new run id. A zero target host is allowed only when deployEnabled is
// false.
func (a *App) rebuild(ctx context.Context, target deploy.Target, deployEnabled bool, changed []string) (code int, err error) {
	if a.cycles > 0 {
		a.newRun()
	}
	a.cycles++
	defer func() { a.finish(ctx, code, err) }()

	if len(changed) > 0 {
		a.logger.Debug("Changed files", logfields.Count(len(changed)))
	}
	built, err := a.Build(ctx)
	if err != nil {
		return 1, err
	}
	if len(built.Succeeded()) == 0 {
		a.logger.Warn(WarnNothingBuilt)
		a.outcome = metrics.RunOutcomeBuildFailed
		return 1, nil
	}
	if !deployEnabled {
		return 0, nil
	}
	deployed, err := a.Deploy(ctx, built.Succeeded(), target)
	if err != nil {
		return 1, err
	}
	if len(deployed.Succeeded()) == 0 {
		a.logger.Warn(WarnNothingDeployed)
		a.outcome = metrics.RunOutcomeDeployFailed
		return 1, nil
	}
	return 0, nil
}

// isRunOutput reports whether p is the history database, the metrics textfile, or one
// of their journal and temporary siblings.
func (a *App) isRunOutput(p string) bool {
	for _, out := range []string{a.opts.Settings.HistoryDB, a.opts.Settings.MetricsFile} {
		if out == "" {
			continue
		}
		if abs, err := filepath.Abs(out); err == nil && strings.HasPrefix(p, abs) {
			return true
		}
	}
	return false
}
