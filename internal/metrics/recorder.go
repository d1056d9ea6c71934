package metrics

import "time"

// ResultLabel enumerates per-site result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Stage names used as label values.
const (
	StageBuild  = "build"
	StageDeploy = "deploy"
)

// RunOutcomeLabel is the final status of a console run.
type RunOutcomeLabel string

const (
	RunOutcomeSuccess      RunOutcomeLabel = "success"
	RunOutcomeBuildFailed  RunOutcomeLabel = "build_failed"
	RunOutcomeDeployFailed RunOutcomeLabel = "deploy_failed"
	RunOutcomeError        RunOutcomeLabel = "error"
)

// Recorder defines observability hooks for site builds, deploys and whole runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveSiteDuration(stage, site string, d time.Duration)
	IncSiteResult(stage, site string, result ResultLabel)
	AddPagesRendered(site string, n int)
	IncRunOutcome(outcome RunOutcomeLabel)
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)        {}
func (NoopRecorder) ObserveSiteDuration(string, string, time.Duration) {}
func (NoopRecorder) IncSiteResult(string, string, ResultLabel)         {}
func (NoopRecorder) AddPagesRendered(string, int)                      {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)                     {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}

// ResultFor maps an error to the matching result label.
func ResultFor(err error, canceled bool) ResultLabel {
	switch {
	case err == nil:
		return ResultSuccess
	case canceled:
		return ResultCanceled
	default:
		return ResultFailed
	}
}
