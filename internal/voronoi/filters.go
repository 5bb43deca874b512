package voronoi

import (
	"github.com/unixpickle/model3d/model2d"
)

// CandidateFilter accepts or rejects a candidate point based
// purely on the given point.
// These filters are run before SiteFilter(s) which naturally require
// us to iterate each site.
type CandidateFilter func(c model2d.Coord) bool

// SiteFilter is a filter for a candidate point that is run
// against every current Site in the builder.
// Ie. we must 'accept' the candidate point when compared
// with every existing Site that we've previously accepted.
type SiteFilter func(candidate, site model2d.Coord) bool

// MinDistance ensures that a candidate point is at least `dist`
// distance away from every other site.
func MinDistance(dist float64) SiteFilter {
	return func(candidate, site model2d.Coord) bool {
		return candidate.Dist(site) >= dist
	}
}

// Inset rejects candidates closer than `margin` to the builder's bounds.
func (b *Builder) Inset(margin float64) CandidateFilter {
	return func(c model2d.Coord) bool {
		return c.X-b.bounds.X.Lo >= margin && b.bounds.X.Hi-c.X >= margin &&
			c.Y-b.bounds.Y.Lo >= margin && b.bounds.Y.Hi-c.Y >= margin
	}
}
