package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

const namespace = "sitedeploy"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	gatherer      prom.Gatherer
	stageDuration *prom.HistogramVec
	siteDuration  *prom.HistogramVec
	siteResults   *prom.CounterVec
	pagesRendered *prom.CounterVec
	runOutcome    *prom.CounterVec
	runDuration   prom.Histogram
	lastRun       prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{gatherer: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of the build and deploy stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.siteDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "site_duration_seconds",
			Help:      "Duration of building or deploying a single site",
			Buckets:   prom.DefBuckets,
		}, []string{"stage", "site"})
		pr.siteResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "site_results_total",
			Help:      "Per-site results by stage and outcome",
		}, []string{"stage", "site", "result"})
		pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages written to deployment directories",
		}, []string{"site"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Console run outcomes by final status",
		}, []string{"outcome"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total console run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.lastRun = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished",
		})
		reg.MustRegister(pr.stageDuration, pr.siteDuration, pr.siteResults, pr.pagesRendered,
			pr.runOutcome, pr.runDuration, pr.lastRun)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveSiteDuration(stage, site string, d time.Duration) {
	if p == nil || p.siteDuration == nil {
		return
	}
	p.siteDuration.WithLabelValues(stage, site).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSiteResult(stage, site string, result ResultLabel) {
	if p == nil || p.siteResults == nil {
		return
	}
	p.siteResults.WithLabelValues(stage, site, string(result)).Inc()
}

func (p *PrometheusRecorder) AddPagesRendered(site string, n int) {
	if p == nil || p.pagesRendered == nil || n <= 0 {
		return
	}
	p.pagesRendered.WithLabelValues(site).Add(float64(n))
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every registered metric to path in the textfile collector
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.gatherer == nil {
		return nil
	}
	if err := prom.WriteToTextfile(path, p.gatherer); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).Build()
	}
	return nil
}
