// Package hydro routes rain over a mesh: depression filling, flux
// accumulation, sea level solving, erosion and river extraction.
//
// Every stage reads the adjacency through Graph and elevation through plain
// slices indexed by site, so stages can run against the live mesh or a copy.
package hydro

import (
	"github.com/pkg/errors"

	"github.com/voidshard/terramap/internal/mesh"
)

var (
	// ErrFillNotConverged implies depression filling hit its pass limit
	// while still changing the surface.
	ErrFillNotConverged = errors.New("depression filling did not converge")

	// ErrUnreachableSite implies a site has no path to the hull, so it
	// can't be given a filled height.
	ErrUnreachableSite = errors.New("site cannot drain to the hull")

	// ErrFlatFill implies a minimum fill slope that is not positive. Flats
	// left by such a fill have no strictly lower neighbour to drain to.
	ErrFlatFill = errors.New("fill slope must be positive")

	// ErrUnknownPolicy implies a flow policy name we don't know.
	ErrUnknownPolicy = errors.New("unknown flow policy")
)

// Graph is the adjacency hydrology walks. *mesh.Mesh satisfies it.
type Graph interface {
	SiteCount() int
	Neighbors(site int) [3]mesh.Neighbor
	IsHull(site int) bool
}
