package build

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/render"
	"git.home.luguber.info/inful/sitedeploy/internal/sites"
	"git.home.luguber.info/inful/sitedeploy/internal/workspace"
)

// Builder writes sites below a workspace's deploy root.
type Builder struct {
	ws       *workspace.Manager
	logger   *slog.Logger
	recorder metrics.Recorder
	minifier *render.Minifier
	minify   bool
}

// NewBuilder creates a Builder for ws with logging discarded and metrics disabled.
func NewBuilder(ws *workspace.Manager) *Builder {
	return &Builder{
		ws:       ws,
		logger:   logging.Discard(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithLogger sets the logger used for per-site and per-page messages.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logging.OrDiscard(logger)
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(recorder metrics.Recorder) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	b.recorder = recorder
	return b
}

// WithMinify enables HTML minification of every page.
func (b *Builder) WithMinify(enabled bool) *Builder {
	b.minify = enabled
	if enabled && b.minifier == nil {
		b.minifier = render.NewMinifier()
	}
	return b
}

// BuildSite recreates the deployment directory of site, links its static assets when
// present and renders every page in path order. Minification applies to HTML pages
// only. It returns the deployment directory.
//
// Errors keep their classification and gain the site name as context. A failure may
// leave the directory partially written; the next build removes it first.
func (b *Builder) BuildSite(ctx context.Context, site sites.Site) (string, error) {
	logger := b.logger.With(logfields.Site(site.Name))

	dir, err := b.ws.SiteDir(site.Name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return dir, errors.WrapError(err, errors.CategoryRuntime, "build cancelled").
			WithContext("site", site.Name).Build()
	}

	logger.Info("Building site", logfields.Path(dir))
	if err := b.ws.Recreate(dir); err != nil {
		return dir, withSite(err, site.Name)
	}

	if static, ok := b.ws.HasStatic(site.Name); ok {
		link := filepath.Join(dir, workspace.StaticDirName)
		if err := os.Symlink(static, link); err != nil {
			return dir, errors.WrapError(err, errors.CategoryFileSystem, "failed to link static assets").
				WithContext("site", site.Name).
				WithContext("path", link).
				Build()
		}
		logger.Debug("Linked static assets", logfields.Path(static))
	}

	for _, p := range site.PagePaths() {
		err := render.PageWith(ctx, logger, b.minifier, render.PageRequest{
			Path:      p,
			Content:   site.Pages[p],
			Site:      site.Name,
			DeployDir: dir,
			Minify:    b.minify && isHTML(p),
		})
		if err != nil {
			return dir, withSite(err, site.Name)
		}
	}
	b.recorder.AddPagesRendered(site.Name, len(site.Pages))

	logger.Info("Built site", logfields.Count(len(site.Pages)))
	return dir, nil
}

// BuildAll builds every site and returns one result per site. Per-site failures are
// logged and recorded, never returned; the error return is reserved for a collection
// that cannot be built at all.
func (b *Builder) BuildAll(ctx context.Context, all []sites.Site) (Results, error) {
	if all == nil {
		return nil, errors.ValidationError("no site collection given").Build()
	}
	seen := make(map[string]bool, len(all))
	for _, s := range all {
		if seen[s.Name] {
			return nil, errors.ValidationError("duplicate site name").
				WithContext("site", s.Name).Build()
		}
		seen[s.Name] = true
	}

	stageStart := time.Now()
	results := make(Results, 0, len(all))
	for _, s := range all {
		start := time.Now()
		dir, err := b.BuildSite(ctx, s)
		if dir == "" {
			dir = filepath.Join(b.ws.DeployRoot(), s.Name)
		}
		res := SiteResult{Site: s.Name, Path: dir, Pages: len(s.Pages), Duration: time.Since(start)}
		if err != nil {
			res.Err = errors.Classify(err)
		}
		results = append(results, res)

		b.recorder.ObserveSiteDuration(metrics.StageBuild, s.Name, res.Duration)
		b.recorder.IncSiteResult(metrics.StageBuild, s.Name, metrics.ResultFor(err, ctx.Err() != nil))
	}
	b.recorder.ObserveStageDuration(metrics.StageBuild, time.Since(stageStart))

	ReportFailures(b.logger, "Failed to build site", results.Failed())
	return results, nil
}

// ReportFailures logs every failed result: a one-line summary at error level and the
// full classified chain at debug level.
func ReportFailures(logger *slog.Logger, msg string, failed []SiteResult) {
	logger = logging.OrDiscard(logger)
	for _, r := range failed {
		logger.Error(msg,
			logfields.Site(r.Site),
			logfields.Category(string(r.Err.Category())),
			slog.String("reason", errors.Summary(r.Err)))
		logger.Debug(msg+": details",
			logfields.Site(r.Site),
			slog.Any("chain", errors.Chain(r.Err)))
	}
}

func isHTML(pagePath string) bool {
	ext := strings.ToLower(path.Ext(pagePath))
	return ext == ".html" || ext == ".htm"
}

func withSite(err error, site string) error {
	if classified, ok := err.(*errors.ClassifiedError); ok {
		return classified.WithContext("site", site)
	}
	return errors.WrapError(err, errors.CategoryFileSystem, "site build failed").
		WithContext("site", site).Build()
}
