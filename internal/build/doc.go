// Package build renders sites into their deployment directories.
//
// Builder.BuildSite recreates one site's deployment directory, links its static assets
// and writes every page. Builder.BuildAll runs BuildSite for a whole site collection and
// records one SiteResult per site: a failing site never prevents the others from being
// built, and the caller receives the set of successfully built directories through
// Results.Succeeded.
package build
