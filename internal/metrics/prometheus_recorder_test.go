package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StageBuild, 150*time.Millisecond)
	pr.ObserveSiteDuration(StageBuild, "car-points", 20*time.Millisecond)
	pr.IncSiteResult(StageBuild, "car-points", ResultSuccess)
	pr.IncSiteResult(StageDeploy, "car-points", ResultFailed)
	pr.AddPagesRendered("car-points", 3)
	pr.IncRunOutcome(RunOutcomeDeployFailed)
	pr.ObserveRunDuration(500 * time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.InDelta(t, 1, testutil.ToFloat64(pr.siteResults.WithLabelValues(StageBuild, "car-points", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.siteResults.WithLabelValues(StageDeploy, "car-points", "failed")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(pr.pagesRendered.WithLabelValues("car-points")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.runOutcome.WithLabelValues("deploy_failed")), 0)
	assert.Positive(t, testutil.ToFloat64(pr.lastRun))
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration(StageBuild, time.Second)
	pr.IncSiteResult(StageBuild, "x", ResultSuccess)
	pr.IncRunOutcome(RunOutcomeSuccess)
	require.NoError(t, pr.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.IncRunOutcome(RunOutcomeSuccess)

	path := filepath.Join(t.TempDir(), "sitedeploy.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `sitedeploy_run_outcomes_total{outcome="success"} 1`), string(data))
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil, false))
	assert.Equal(t, ResultFailed, ResultFor(assert.AnError, false))
	assert.Equal(t, ResultCanceled, ResultFor(assert.AnError, true))
}

func TestNoopRecorder_SatisfiesRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncRunOutcome(RunOutcomeError)
	r.AddPagesRendered("x", 1)
}
