package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/build"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/eventstore"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/validate"
	"git.home.luguber.info/inful/sitedeploy/internal/workspace"
)

// Warnings logged when a stage produced nothing.
const (
	WarnNothingBuilt    = "All sites failed to build. (Or no sites exist.)"
	WarnNothingDeployed = "All sites failed to deploy."
)

// Run builds and deploys every selected site and prints the deployed site names.
// It returns exit status 0 only when at least one site was built and deployed. The
// error return is reserved for failures outside the per-site stages, such as invalid
// settings.
func (a *App) Run(ctx context.Context) (code int, err error) {
	if a.opts.Settings.DryRun {
		defer a.cleanupAfterDryRun()
	}
	defer func() { a.finish(ctx, code, err) }()

	target, err := a.Target(ctx)
	if err != nil {
		return 1, err
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

	deployed, err := a.Deploy(ctx, built.Succeeded(), target)
	if err != nil {
		return 1, err
	}
	if len(deployed.Succeeded()) == 0 {
		a.logger.Warn(WarnNothingDeployed)
		a.outcome = metrics.RunOutcomeDeployFailed
		return 1, nil
	}

	if err := a.printNames(deployed.Succeeded()); err != nil {
		return 1, err
	}
	return 0, nil
}

// BuildOnly builds the selected sites and prints the names of those built.
func (a *App) BuildOnly(ctx context.Context) (code int, err error) {
	defer func() { a.finish(ctx, code, err) }()

	built, err := a.Build(ctx)
	if err != nil {
		return 1, err
	}
	paths := built.Succeeded()
	if len(paths) == 0 {
		a.logger.Warn(WarnNothingBuilt)
		a.outcome = metrics.RunOutcomeBuildFailed
		return 1, nil
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, workspace.SiteName(p))
	}
	if err := a.printNames(names); err != nil {
		return 1, err
	}
	return 0, nil
}

// DeployOnly deploys the deployment directories left by an earlier build.
func (a *App) DeployOnly(ctx context.Context) (code int, err error) {
	if a.opts.Settings.DryRun {
		defer a.cleanupAfterDryRun()
	}
	defer func() { a.finish(ctx, code, err) }()

	target, err := a.Target(ctx)
	if err != nil {
		return 1, err
	}
	selected, err := a.selectedSites()
	if err != nil {
		return 1, err
	}
	var paths []string
	for _, s := range selected {
		dir, err := a.ws.SiteDir(s.Name)
		if err != nil {
			return 1, err
		}
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			paths = append(paths, dir)
		}
	}
	if len(paths) == 0 {
		a.logger.Warn("No built sites found; run the build command first",
			logfields.Path(a.ws.DeployRoot()))
		a.outcome = metrics.RunOutcomeBuildFailed
		return 1, nil
	}

	a.recordStart(ctx, siteNames(paths))
	deployed, err := a.Deploy(ctx, paths, target)
	if err != nil {
		return 1, err
	}
	if len(deployed.Succeeded()) == 0 {
		a.logger.Warn(WarnNothingDeployed)
		a.outcome = metrics.RunOutcomeDeployFailed
		return 1, nil
	}
	if err := a.printNames(deployed.Succeeded()); err != nil {
		return 1, err
	}
	return 0, nil
}

// Clean removes the deploy tree.
func (a *App) Clean() error {
	return a.ws.Cleanup()
}

// Build builds the selected sites and records each outcome.
func (a *App) Build(ctx context.Context) (build.Results, error) {
	selected, err := a.selectedSites()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(selected))
	for _, s := range selected {
		names = append(names, s.Name)
	}
	a.recordStart(ctx, names)

	results, err := a.builder.BuildAll(ctx, selected)
	if err != nil {
		return nil, err
	}
	a.built = siteNames(results.Succeeded())
	for _, r := range results {
		if r.OK() {
			e, err := eventstore.NewSiteBuilt(a.runID, r.Site, r.Path, r.Pages, r.Duration)
			a.record(ctx, e, err)
			continue
		}
		e, err := eventstore.NewSiteBuildFailed(a.runID, r.Site, string(r.Err.Category()), errors.Summary(r.Err), r.Duration)
		a.record(ctx, e, err)
	}
	return results, nil
}

// Deploy deploys sitePaths to target and records each outcome.
func (a *App) Deploy(ctx context.Context, sitePaths []string, target deploy.Target) (deploy.Results, error) {
	results, err := a.deployer.DeployAll(ctx, sitePaths, target)
	if err != nil {
		return nil, err
	}
	a.deployed = results.Succeeded()
	for _, r := range results {
		if r.OK() {
			e, err := eventstore.NewSiteDeployed(a.runID, r.Site, r.RemotePath, r.Duration)
			a.record(ctx, e, err)
			continue
		}
		e, err := eventstore.NewSiteDeployFailed(a.runID, r.Site, string(r.Err.Category()), errors.Summary(r.Err), r.Duration)
		a.record(ctx, e, err)
	}
	return results, nil
}

// Target validates the remote settings. An empty host is allowed here; the deploy
// stage decides whether a dry run may use the placeholder.
func (a *App) Target(ctx context.Context) (deploy.Target, error) {
	s := a.opts.Settings
	t := deploy.Target{Directory: s.Directory, DryRun: s.DryRun}

	if s.Host != "" {
		var (
			host validate.Hostname
			err  error
		)
		if a.opts.Resolver != nil {
			host, err = validate.NewHostnameWith(ctx, s.Host, a.opts.Resolver)
		} else {
			host, err = validate.NewHostname(ctx, s.Host)
		}
		if err != nil {
			return deploy.Target{}, err
		}
		t.Host = host
	} else if !s.DryRun {
		return deploy.Target{}, errors.ValidationError("remote host is required unless dry run is enabled").
			WithContext("env", "STATIC_WEBSITES_BUILDER_REMOTE_IP").
			Build()
	}
	if s.Username != "" {
		u, err := validate.NewUsername(s.Username)
		if err != nil {
			return deploy.Target{}, err
		}
		t.Username = &u
	}
	if s.IdentityFile != "" {
		f, err := validate.NewIdentityFile(s.IdentityFile)
		if err != nil {
			return deploy.Target{}, err
		}
		t.IdentityFile = &f
	}
	return t, nil
}

// printNames writes the comma separated names to stdout with no trailing newline.
func (a *App) printNames(names []string) error {
	if _, err := fmt.Fprint(a.opts.Stdout, strings.Join(names, ",")); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to write result").Build()
	}
	return nil
}

func (a *App) cleanupAfterDryRun() {
	if err := a.ws.Cleanup(); err != nil {
		a.logger.Warn("Failed to remove deploy directory after dry run", logfields.Error(err))
		return
	}
	a.logger.Debug("Removed deploy directory after dry run", logfields.Path(a.ws.DeployRoot()))
}

func (a *App) finish(ctx context.Context, code int, err error) {
	d := time.Since(a.started)
	outcome := a.outcome
	if err != nil {
		outcome = metrics.RunOutcomeError
		code = 1
	}
	a.recorder.IncRunOutcome(outcome)
	a.recorder.ObserveRunDuration(d)

	e, recErr := eventstore.NewRunCompleted(a.runID, eventstore.RunCompletedMeta{
		ExitCode:   code,
		Built:      a.built,
		Deployed:   a.deployed,
		DurationMS: d.Milliseconds(),
	})
	a.record(ctx, e, recErr)
	a.logger.Info("Run finished", logfields.DurationMS(float64(d.Milliseconds())), slog.Int("exit_code", code))
}

func siteNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, workspace.SiteName(p))
	}
	return names
}

func validationUnknownSites(missing []string) error {
	return errors.ValidationError("unknown site").
		WithContext("sites", strings.Join(missing, ",")).
		Build()
}
