package eventstore

import (
	"encoding/json"
	"time"
)

// Event type names.
const (
	TypeRunStarted       = "RunStarted"
	TypeSiteBuilt        = "SiteBuilt"
	TypeSiteBuildFailed  = "SiteBuildFailed"
	TypeSiteDeployed     = "SiteDeployed"
	TypeSiteDeployFailed = "SiteDeployFailed"
	TypeRunCompleted     = "RunCompleted"
)

// RunStartedMeta describes how a run was invoked.
type RunStartedMeta struct {
	Command string   `json:"command"`
	DryRun  bool     `json:"dry_run"`
	Host    string   `json:"host,omitempty"`
	Sites   []string `json:"sites"`
	Version string   `json:"version,omitempty"`
}

// SiteOutcome is the payload of the per-site events.
type SiteOutcome struct {
	Site       string `json:"site"`
	Path       string `json:"path,omitempty"`
	RemotePath string `json:"remote_path,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Category   string `json:"category,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunCompletedMeta summarizes a finished run.
type RunCompletedMeta struct {
	ExitCode   int      `json:"exit_code"`
	Built      []string `json:"built"`
	Deployed   []string `json:"deployed"`
	DurationMS int64    `json:"duration_ms"`
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID string, meta RunStartedMeta) (Event, error) {
	return newEvent(runID, TypeRunStarted, meta, map[string]string{"command": meta.Command})
}

// NewSiteBuilt creates a SiteBuilt event.
func NewSiteBuilt(runID, site, path string, pages int, d time.Duration) (Event, error) {
	return newEvent(runID, TypeSiteBuilt, SiteOutcome{
		Site: site, Path: path, Pages: pages, DurationMS: d.Milliseconds(),
	}, map[string]string{"site": site})
}

// NewSiteBuildFailed creates a SiteBuildFailed event.
func NewSiteBuildFailed(runID, site, category, message string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeSiteBuildFailed, SiteOutcome{
		Site: site, Category: category, Error: message, DurationMS: d.Milliseconds(),
	}, map[string]string{"site": site})
}

// NewSiteDeployed creates a SiteDeployed event.
func NewSiteDeployed(runID, site, remotePath string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeSiteDeployed, SiteOutcome{
		Site: site, RemotePath: remotePath, DurationMS: d.Milliseconds(),
	}, map[string]string{"site": site})
}

// NewSiteDeployFailed creates a SiteDeployFailed event.
func NewSiteDeployFailed(runID, site, category, message string, d time.Duration) (Event, error) {
	return newEvent(runID, TypeSiteDeployFailed, SiteOutcome{
		Site: site, Category: category, Error: message, DurationMS: d.Milliseconds(),
	}, map[string]string{"site": site})
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, meta RunCompletedMeta) (Event, error) {
	return newEvent(runID, TypeRunCompleted, meta, nil)
}

func newEvent(runID, eventType string, payload any, metadata map[string]string) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, wrap(ErrMarshalPayloadFailed, err)
	}
	return &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
		EventMetadata:  metadata,
	}, nil
}
