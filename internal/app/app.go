// Package app wires the build and deploy stages into the console commands.
//
// A run builds every selected site, deploys the built ones and prints the comma
// separated names of the deployed sites to stdout. On dry runs the deploy tree is
// removed when the run ends, whatever the outcome.
package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitedeploy/internal/build"
	"git.home.luguber.info/inful/sitedeploy/internal/config"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/eventstore"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/sites"
	"git.home.luguber.info/inful/sitedeploy/internal/validate"
	"git.home.luguber.info/inful/sitedeploy/internal/version"
	"git.home.luguber.info/inful/sitedeploy/internal/workspace"
)

// Options configures an App.
type Options struct {
	// Project root holding the deploy and static trees.
	Root     string
	Settings config.Settings
	// Command name recorded in the run history.
	Command string
	Stdout  io.Writer
	Logger  *slog.Logger
	// Transfer runner; deploy.ExecRunner when nil.
	Runner deploy.Runner
	// Site collection; sites.All() when nil.
	Sites []sites.Site
	// Hostname resolver; the system resolver when nil.
	Resolver validate.Resolver
}

// App runs the console commands for one invocation.
type App struct {
	opts     Options
	runID    string
	base     *slog.Logger
	logger   *slog.Logger
	ws       *workspace.Manager
	builder  *build.Builder
	deployer *deploy.Deployer
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
	store    eventstore.Store
	started  time.Time
	outcome  metrics.RunOutcomeLabel
	built    []string
	deployed []string
	// watch cycles run so far
	cycles int
}

// New prepares an App. The run history database is opened when configured.
func New(opts Options) (*App, error) {
	runID := uuid.NewString()
	logger := logging.OrDiscard(opts.Logger).With(logfields.RunID(runID))
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Sites == nil {
		opts.Sites = sites.All()
	}

	a := &App{
		opts:     opts,
		runID:    runID,
		base:     logging.OrDiscard(opts.Logger),
		logger:   logger,
		ws:       workspace.NewManager(opts.Root, logger),
		recorder: metrics.NoopRecorder{},
		started:  time.Now(),
		outcome:  metrics.RunOutcomeSuccess,
	}
	if opts.Settings.MetricsFile != "" {
		a.prom = metrics.NewPrometheusRecorder(prom.NewRegistry())
		a.recorder = a.prom
	}
	if opts.Settings.HistoryDB != "" {
		store, err := eventstore.NewSQLiteStore(opts.Settings.HistoryDB)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	a.builder = build.NewBuilder(a.ws).
		WithLogger(logger).
		WithRecorder(a.recorder).
		WithMinify(opts.Settings.Minify)
	a.deployer = deploy.NewDeployer(opts.Runner).
		WithLogger(logger).
		WithRecorder(a.recorder).
		WithVerbose(opts.Settings.Verbosity > logging.VerbosityQuiet).
		WithRetry(opts.Settings.Retry)
	return a, nil
}

// newRun starts a fresh history row: a new run id on every log record and event,
// and cleared per-run outcome state.
func (a *App) newRun() {
	a.runID = uuid.NewString()
	a.logger = a.base.With(logfields.RunID(a.runID))
	a.builder.WithLogger(a.logger)
	a.deployer.WithLogger(a.logger)
	a.started = time.Now()
	a.outcome = metrics.RunOutcomeSuccess
	a.built = nil
	a.deployed = nil
}

// RunID returns the id attached to every log record and history event of this App.
func (a *App) RunID() string { return a.runID }

// Workspace returns the workspace manager.
func (a *App) Workspace() *workspace.Manager { return a.ws }

// Close writes the metrics textfile and closes the history store.
func (a *App) Close() error {
	var firstErr error
	if a.prom != nil {
		if err := a.prom.WriteTextfile(a.opts.Settings.MetricsFile); err != nil {
			firstErr = err
		} else {
			a.logger.Debug("Wrote metrics", logfields.Path(a.opts.Settings.MetricsFile))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) selectedSites() ([]sites.Site, error) {
	selected, missing := sites.Select(a.opts.Sites, a.opts.Settings.Sites)
	if len(missing) > 0 {
		return nil, validationUnknownSites(missing)
	}
	return selected, nil
}

// record appends e to the run history. History failures are logged, never fatal.
func (a *App) record(ctx context.Context, e eventstore.Event, err error) {
	if a.store == nil {
		return
	}
	if err == nil {
		err = eventstore.Record(ctx, a.store, e)
	}
	if err != nil {
		a.logger.Warn("Failed to record run history", logfields.Error(err))
	}
}

func (a *App) recordStart(ctx context.Context, names []string) {
	if a.store == nil {
		return
	}
	e, err := eventstore.NewRunStarted(a.runID, eventstore.RunStartedMeta{
		Command: a.opts.Command,
		DryRun:  a.opts.Settings.DryRun,
		Host:    a.opts.Settings.Host,
		Sites:   names,
		Version: version.Version,
	})
	a.record(ctx, e, err)
}
