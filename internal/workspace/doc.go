// Package workspace owns the on-disk layout of a sitedeploy project.
//
// Rendered sites live under <root>/deploy/<site>, and optional per-site static assets
// under <root>/static/<site>. The deploy tree is exclusively owned by a run: each site
// directory is deleted and recreated on every build, and Cleanup removes the whole
// deploy tree after dry runs. No locking is provided, so concurrent runs against the
// same root race on deletion and creation.
package workspace
