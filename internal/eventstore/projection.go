package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

const (
	runStatusRunning   = "running"
	runStatusSucceeded = "succeeded"
	runStatusFailed    = "failed"
)

// RunSummary is a read model of one run.
type RunSummary struct {
	RunID       string            `json:"run_id"`
	Command     string            `json:"command"`
	DryRun      bool              `json:"dry_run"`
	Status      string            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	ExitCode    int               `json:"exit_code"`
	Built       []string          `json:"built"`
	Deployed    []string          `json:"deployed"`
	Failures    map[string]string `json:"failures,omitempty"` // site -> "<stage>: <error>"
}

// RunHistoryProjection rebuilds run summaries from the event store.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	maxSize int
}

// NewRunHistoryProjection creates a projection keeping at most maxSize runs.
func NewRunHistoryProjection(store Store, maxSize int) *RunHistoryProjection {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxSize,
	}
}

// Rebuild reconstructs the projection from every stored event.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = make(map[string]*RunSummary)
	for _, e := range events {
		p.applyLocked(e)
	}
	return nil
}

// Apply processes a single event.
func (p *RunHistoryProjection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *RunHistoryProjection) applyLocked(e Event) {
	runID := e.RunID()
	if runID == "" {
		return
	}
	summary, ok := p.runs[runID]
	if !ok {
		summary = &RunSummary{RunID: runID, Status: runStatusRunning, StartedAt: e.Timestamp()}
		p.runs[runID] = summary
	}

	switch e.Type() {
	case TypeRunStarted:
		var meta RunStartedMeta
		if err := json.Unmarshal(e.Payload(), &meta); err == nil {
			summary.Command = meta.Command
			summary.DryRun = meta.DryRun
		}
		summary.StartedAt = e.Timestamp()

	case TypeSiteBuilt:
		if o, ok := outcome(e); ok {
			summary.Built = append(summary.Built, o.Site)
		}

	case TypeSiteDeployed:
		if o, ok := outcome(e); ok {
			summary.Deployed = append(summary.Deployed, o.Site)
		}

	case TypeSiteBuildFailed, TypeSiteDeployFailed:
		if o, ok := outcome(e); ok {
			if summary.Failures == nil {
				summary.Failures = make(map[string]string)
			}
			stage := "build"
			if e.Type() == TypeSiteDeployFailed {
				stage = "deploy"
			}
			summary.Failures[o.Site] = stage + ": " + o.Error
		}

	case TypeRunCompleted:
		var meta RunCompletedMeta
		if err := json.Unmarshal(e.Payload(), &meta); err == nil {
			summary.ExitCode = meta.ExitCode
		}
		done := e.Timestamp()
		summary.CompletedAt = &done
		summary.Status = runStatusSucceeded
		if summary.ExitCode != 0 {
			summary.Status = runStatusFailed
		}
	}
}

func outcome(e Event) (SiteOutcome, bool) {
	var o SiteOutcome
	if err := json.Unmarshal(e.Payload(), &o); err != nil || o.Site == "" {
		return SiteOutcome{}, false
	}
	return o, true
}

// History returns copies of the newest runs, newest first.
func (p *RunHistoryProjection) History() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RunSummary, 0, len(p.runs))
	for _, s := range p.runs {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b RunSummary) int { return b.StartedAt.Compare(a.StartedAt) })
	if len(out) > p.maxSize {
		out = out[:p.maxSize]
	}
	return out
}

// Run returns the summary of one run.
func (p *RunHistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return *s, true
}
