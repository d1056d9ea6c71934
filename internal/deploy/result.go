package deploy

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// SiteResult is the outcome of deploying one site.
type SiteResult struct {
	Site       string
	Path       string
	RemotePath string
	Duration   time.Duration
	Err        *errors.ClassifiedError
}

// OK reports whether the site was deployed.
func (r SiteResult) OK() bool { return r.Err == nil }

// Results holds one SiteResult per site path.
type Results []SiteResult

// Succeeded returns the sorted names of every deployed site.
func (rs Results) Succeeded() []string {
	var out []string
	for _, r := range rs {
		if r.OK() {
			out = append(out, r.Site)
		}
	}
	slices.Sort(out)
	return out
}

// Failed returns the results of sites that could not be deployed.
func (rs Results) Failed() []SiteResult {
	var out []SiteResult
	for _, r := range rs {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
