// Package metrics records build and deploy outcomes for sitedeploy.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	builder := build.NewBuilder(ws).WithRecorder(recorder)
//
// PrometheusRecorder registers its collectors on a caller-supplied registry. A one-shot
// CLI run has no scrape endpoint, so the registry is exported with WriteTextfile in the
// node_exporter textfile format when a metrics file is configured.
package metrics
