package deploy

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/retry"
	"git.home.luguber.info/inful/sitedeploy/internal/validate"
	"git.home.luguber.info/inful/sitedeploy/internal/workspace"
)

// Deployer transfers deployment directories to a remote host.
type Deployer struct {
	runner   Runner
	logger   *slog.Logger
	recorder metrics.Recorder
	verbose  bool
	retry    retry.Policy
}

// NewDeployer creates a Deployer using runner, or ExecRunner when runner is nil.
func NewDeployer(runner Runner) *Deployer {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Deployer{
		runner:   runner,
		logger:   logging.Discard(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithLogger sets the logger.
func (d *Deployer) WithLogger(logger *slog.Logger) *Deployer {
	d.logger = logging.OrDiscard(logger)
	return d
}

// WithRecorder sets the metrics recorder.
func (d *Deployer) WithRecorder(recorder metrics.Recorder) *Deployer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	d.recorder = recorder
	return d
}

// WithVerbose makes rsync list the files it transfers.
func (d *Deployer) WithVerbose(verbose bool) *Deployer {
	d.verbose = verbose
	return d
}

// WithRetry retries transfers that fail with a transient rsync exit status.
func (d *Deployer) WithRetry(p retry.Policy) *Deployer {
	d.retry = p
	return d
}

// DeploySite synchronizes sitePath to its remote path on t.Host. The command output
// is logged at debug level whatever the outcome.
func (d *Deployer) DeploySite(ctx context.Context, sitePath string, t Target) error {
	site := workspace.SiteName(sitePath)
	logger := d.logger.With(logfields.Site(site))

	info, err := os.Stat(sitePath)
	if err != nil || !info.IsDir() {
		b := errors.ValidationError("deployment directory does not exist").
			WithContext("site", site).
			WithContext("path", sitePath)
		if err != nil {
			b = b.WithCause(err)
		}
		return b.Build()
	}
	if t.Host.IsZero() {
		return errors.ValidationError("remote host is required").WithContext("site", site).Build()
	}

	remote := RemotePath(site, t.Username, t.Directory)
	args := Args(sitePath, remote, t, d.verbose)
	logger.Info("Deploying site",
		logfields.Host(t.Host.String()),
		logfields.RemotePath(remote),
		logfields.DryRun(t.DryRun))
	logger.Debug("Running transfer", slog.String("command", Tool+" "+strings.Join(args, " ")))

	err = d.retry.Do(ctx, IsTransient,
		func(retry int, delay time.Duration, err error) {
			logger.Warn("Transfer failed; retrying",
				slog.Int("retry", retry),
				slog.Int("exit_code", ExitCode(err)),
				logfields.DurationMS(float64(delay.Milliseconds())))
		},
		func() error {
			out, err := d.runner.Run(ctx, Tool, args...)
			if len(out) > 0 {
				logger.Debug("Transfer output", slog.String("output", string(out)))
			}
			return err
		})
	if err != nil {
		if classified, ok := err.(*errors.ClassifiedError); ok {
			return classified.WithContext("site", site).WithContext("remote_path", remote)
		}
		return errors.WrapError(err, errors.CategoryTransfer, msgTransferFailed).
			WithContext("site", site).
			WithContext("remote_path", remote).
			Build()
	}

	logger.Info("Deployed site", logfields.RemotePath(remote))
	return nil
}

// DeployAll deploys every site path and returns one result per site. Without a host
// a dry run targets PlaceholderHost; a real run fails before any transfer.
func (d *Deployer) DeployAll(ctx context.Context, sitePaths []string, t Target) (Results, error) {
	if t.Host.IsZero() {
		if !t.DryRun {
			return nil, errors.ValidationError("remote host is required unless dry run is enabled").Build()
		}
		placeholder, err := validate.NewHostname(ctx, PlaceholderHost)
		if err != nil {
			return nil, err
		}
		d.logger.Info("No remote host given; using placeholder for dry run",
			logfields.Host(PlaceholderHost))
		t.Host = placeholder
	}

	stageStart := time.Now()
	results := make(Results, 0, len(sitePaths))
	for _, p := range slices.Sorted(slices.Values(sitePaths)) {
		site := workspace.SiteName(p)
		start := time.Now()
		err := d.DeploySite(ctx, p, t)
		res := SiteResult{
			Site:       site,
			Path:       p,
			RemotePath: RemotePath(site, t.Username, t.Directory),
			Duration:   time.Since(start),
		}
		if err != nil {
			res.Err = errors.Classify(err)
		}
		results = append(results, res)

		d.recorder.ObserveSiteDuration(metrics.StageDeploy, site, res.Duration)
		d.recorder.IncSiteResult(metrics.StageDeploy, site, metrics.ResultFor(err, ctx.Err() != nil))
	}
	d.recorder.ObserveStageDuration(metrics.StageDeploy, time.Since(stageStart))

	for _, r := range results.Failed() {
		d.logger.Error("Failed to deploy site",
			logfields.Site(r.Site),
			logfields.Category(string(r.Err.Category())),
			slog.String("reason", errors.Summary(r.Err)))
		d.logger.Debug("Failed to deploy site: details",
			logfields.Site(r.Site),
			slog.Any("chain", errors.Chain(r.Err)))
	}
	return results, nil
}
