package build

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// SiteResult is the outcome of building one site.
type SiteResult struct {
	Site string
	// Deployment directory of the site, set even when the build failed.
	Path     string
	Pages    int
	Duration time.Duration
	Err      *errors.ClassifiedError
}

// OK reports whether the site was built.
func (r SiteResult) OK() bool { return r.Err == nil }

// Results holds one SiteResult per site, in build order.
type Results []SiteResult

// Succeeded returns the sorted deployment directories of every built site.
func (rs Results) Succeeded() []string {
	var out []string
	for _, r := range rs {
		if r.OK() {
			out = append(out, r.Path)
		}
	}
	slices.Sort(out)
	return out
}

// Failed returns the results of sites that could not be built.
func (rs Results) Failed() []SiteResult {
	var out []SiteResult
	for _, r := range rs {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
