// Package mesh holds the dual mesh used for terrain generation.
//
// The input is a Delaunay triangulation. Every triangle becomes one "site"
// (the cell carrying an elevation) and every triangulation vertex becomes a
// "corner". Sites know their three corners and up to three edge-adjacent
// sites; corners know which sites touch them.
package mesh

import (
	"sync"

	"github.com/boljen/go-bitmap"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// InitialElevation is the placeholder elevation every site starts with.
const InitialElevation = 0.5

// noSite marks a hull edge in the halfedge input & the wire format.
const noSite = -1

var (
	// ErrMalformedTriangulation implies the triangle / halfedge arrays are
	// inconsistent (wrong lengths, out of range vertices, degenerate triangles).
	ErrMalformedTriangulation = errors.New("malformed triangulation")

	// ErrDanglingTwin implies a halfedge points to a twin that does not point back.
	ErrDanglingTwin = errors.New("dangling twin halfedge")

	// ErrHullMismatch implies the supplied hull edges disagree with the adjacency.
	ErrHullMismatch = errors.New("hull edges do not match adjacency")
)

// Triangulation is a triangulated planar point set, as produced by a
// Delaunay library.
//
// Triangles holds vertex index triples. Halfedges[e] is the index of the
// opposite halfedge of halfedge e (the edge from Triangles[e] to the next
// vertex of the same triangle) or -1 if e lies on the outer hull.
// HullEdges optionally lists the hull halfedges; if nil they're derived
// from Halfedges.
type Triangulation struct {
	Vertices  []model2d.Coord
	Triangles []int
	Halfedges []int
	HullEdges []int
}

// Neighbor is one of the three edge slots of a site. Ok is false when
// the edge lies on the outer hull & there is no site on the far side.
type Neighbor struct {
	Site int
	Ok   bool
}

// Mesh is the dual graph built from a Triangulation.
type Mesh struct {
	// Corners are the planar triangulation vertices, never moved.
	Corners []model2d.Coord

	// Triangles are corner index triples, one triple per site.
	Triangles []int

	// SiteCorners holds the 3 corners of every site.
	SiteCorners [][3]int

	// SiteXY is the centroid of every site's triangle.
	SiteXY []model2d.Coord

	// Elevation is the mutable z of every site, the state all terrain
	// shaping operates on.
	Elevation []float64

	// SitesHavingCorner is the inverse of SiteCorners; each list is sorted.
	SitesHavingCorner [][]int

	// HullSites are the sites with at least one missing neighbour, sorted.
	HullSites []int

	// Bounds contains every corner & the current elevation surface.
	Bounds Bounds

	neighbors [][3]Neighbor
	hull      bitmap.Bitmap

	lookupOnce sync.Once
	tree       *model2d.CoordTree
	siteByXY   map[model2d.Coord]int
}

// Bounds is an axis aligned box that only ever grows.
type Bounds struct {
	Min model3d.Coord3D
	Max model3d.Coord3D
}

// Encapsulate grows the box to contain c.
func (b *Bounds) Encapsulate(c model3d.Coord3D) {
	b.Min = b.Min.Min(c)
	b.Max = b.Max.Max(c)
}

// Center of the box.
func (b *Bounds) Center() model3d.Coord3D {
	return b.Min.Mid(b.Max)
}

// Size of the box on each axis.
func (b *Bounds) Size() model3d.Coord3D {
	return b.Max.Sub(b.Min)
}

// Surface is a view of the mesh elevation that terrain operators mutate.
// XY is read only. Writes must go through Set so Bounds keeps containing
// the surface.
type Surface struct {
	XY     []model2d.Coord
	Z      []float64
	Bounds *Bounds
}

// Set writes the elevation of site i & grows the bounds.
func (s Surface) Set(i int, z float64) {
	s.Z[i] = z
	s.Bounds.Encapsulate(model3d.XYZ(s.XY[i].X, s.XY[i].Y, z))
}

// Len is the number of sites.
func (s Surface) Len() int {
	return len(s.Z)
}

// Surface returns a view over the mesh's elevation buffer.
func (m *Mesh) Surface() Surface {
	return Surface{XY: m.SiteXY, Z: m.Elevation, Bounds: &m.Bounds}
}

// SiteCount is the number of sites (triangles).
func (m *Mesh) SiteCount() int {
	return len(m.SiteCorners)
}

// Build indexes a triangulation into a Mesh. Any inconsistency in the input
// is fatal; hydrology relies on the adjacency being complete & symmetric.
func Build(t *Triangulation) (*Mesh, error) {
	if err := checkTriangulation(t); err != nil {
		return nil, err
	}

	count := len(t.Triangles) / 3
	m := &Mesh{
		Corners:           t.Vertices,
		Triangles:         t.Triangles,
		SiteCorners:       make([][3]int, count),
		SiteXY:            make([]model2d.Coord, count),
		Elevation:         make([]float64, count),
		SitesHavingCorner: make([][]int, len(t.Vertices)),
		neighbors:         make([][3]Neighbor, count),
	}

	for site := 0; site < count; site++ {
		centroid := model2d.Coord{}
		for k := 0; k < 3; k++ {
			e := site*3 + k
			corner := t.Triangles[e]

			m.SiteCorners[site][k] = corner
			m.SitesHavingCorner[corner] = append(m.SitesHavingCorner[corner], site)
			centroid = centroid.Add(t.Vertices[corner])

			if twin := t.Halfedges[e]; twin != noSite {
				m.neighbors[site][k] = Neighbor{Site: twin / 3, Ok: true}
			}
		}
		m.SiteXY[site] = centroid.Scale(1.0 / 3.0)
		m.Elevation[site] = InitialElevation
	}

	m.indexHull()
	if t.HullEdges != nil {
		if err := m.checkHullEdges(t); err != nil {
			return nil, err
		}
	}

	m.resetBounds()
	return m, nil
}

// checkTriangulation rejects input we can't build a consistent dual graph from.
func checkTriangulation(t *Triangulation) error {
	if t == nil || len(t.Triangles) == 0 {
		return errors.Wrap(ErrMalformedTriangulation, "no triangles")
	}
	if len(t.Triangles)%3 != 0 {
		return errors.Wrapf(ErrMalformedTriangulation, "triangle index count %d is not a multiple of 3", len(t.Triangles))
	}
	if len(t.Halfedges) != len(t.Triangles) {
		return errors.Wrapf(ErrMalformedTriangulation, "%d halfedges for %d triangle indices", len(t.Halfedges), len(t.Triangles))
	}

	for e, v := range t.Triangles {
		if v < 0 || v >= len(t.Vertices) {
			return errors.Wrapf(ErrMalformedTriangulation, "halfedge %d has out of range vertex %d", e, v)
		}
	}
	for tri := 0; tri < len(t.Triangles); tri += 3 {
		a, b, c := t.Triangles[tri], t.Triangles[tri+1], t.Triangles[tri+2]
		if a == b || b == c || a == c {
			return errors.Wrapf(ErrMalformedTriangulation, "triangle %d repeats a vertex (%d,%d,%d)", tri/3, a, b, c)
		}
	}

	for e, twin := range t.Halfedges {
		if twin == noSite {
			continue
		}
		if twin < 0 || twin >= len(t.Halfedges) || twin/3 == e/3 {
			return errors.Wrapf(ErrDanglingTwin, "halfedge %d -> %d", e, twin)
		}
		if t.Halfedges[twin] != e {
			return errors.Wrapf(ErrDanglingTwin, "halfedge %d -> %d -> %d", e, twin, t.Halfedges[twin])
		}
		if t.Triangles[e] != t.Triangles[nextHalfedge(twin)] || t.Triangles[nextHalfedge(e)] != t.Triangles[twin] {
			return errors.Wrapf(ErrDanglingTwin, "halfedge %d and twin %d do not share endpoints", e, twin)
		}
	}
	return nil
}

// indexHull derives HullSites from the neighbour slots.
func (m *Mesh) indexHull() {
	m.hull = bitmap.New(len(m.neighbors))
	m.HullSites = m.HullSites[:0]
	for site, nbrs := range m.neighbors {
		for _, n := range nbrs {
			if !n.Ok {
				m.hull.Set(site, true)
				m.HullSites = append(m.HullSites, site)
				break
			}
		}
	}
}

// checkHullEdges ensures the externally supplied hull maps onto exactly the
// sites that have a missing neighbour.
func (m *Mesh) checkHullEdges(t *Triangulation) error {
	seen := map[int]bool{}
	for _, e := range t.HullEdges {
		if e < 0 || e >= len(t.Halfedges) {
			return errors.Wrapf(ErrHullMismatch, "hull edge %d out of range", e)
		}
		if t.Halfedges[e] != noSite {
			return errors.Wrapf(ErrHullMismatch, "hull edge %d has twin %d", e, t.Halfedges[e])
		}
		seen[e/3] = true
	}
	if len(seen) != len(m.HullSites) {
		return errors.Wrapf(ErrHullMismatch, "%d hull sites from edges, %d from adjacency", len(seen), len(m.HullSites))
	}
	for _, site := range m.HullSites {
		if !seen[site] {
			return errors.Wrapf(ErrHullMismatch, "site %d has an open edge but no hull edge", site)
		}
	}
	return nil
}

// resetBounds recomputes Bounds from the corners & current elevations.
func (m *Mesh) resetBounds() {
	if len(m.Corners) == 0 {
		m.Bounds = Bounds{}
		return
	}
	first := m.Corners[0]
	z := InitialElevation
	if len(m.Elevation) > 0 {
		z = m.Elevation[0]
	}
	m.Bounds = Bounds{Min: model3d.XYZ(first.X, first.Y, z), Max: model3d.XYZ(first.X, first.Y, z)}
	for _, c := range m.Corners {
		m.Bounds.Encapsulate(model3d.XYZ(c.X, c.Y, z))
	}
	for i, xy := range m.SiteXY {
		m.Bounds.Encapsulate(model3d.XYZ(xy.X, xy.Y, m.Elevation[i]))
	}
}

// nextHalfedge returns the halfedge following e within its triangle.
func nextHalfedge(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}
