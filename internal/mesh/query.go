package mesh

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

// Neighbors returns the three edge slots of a site. Slot k is the site
// across the edge from corner k to corner k+1.
func (m *Mesh) Neighbors(site int) [3]Neighbor {
	return m.neighbors[site]
}

// Neighbor returns the site across edge k of `site`, if there is one.
func (m *Mesh) Neighbor(site, k int) (int, bool) {
	n := m.neighbors[site][k]
	return n.Site, n.Ok
}

// NeighborSites returns only the present neighbours of a site.
func (m *Mesh) NeighborSites(site int) []int {
	out := make([]int, 0, 3)
	for _, n := range m.neighbors[site] {
		if n.Ok {
			out = append(out, n.Site)
		}
	}
	return out
}

// IsHull reports whether the site touches the outer hull.
func (m *Mesh) IsHull(site int) bool {
	return m.hull.Get(site)
}

// CornerElevations returns one z per corner: the mean elevation of the
// sites touching it. A corner no site uses gets InitialElevation.
func (m *Mesh) CornerElevations() []float64 {
	out := make([]float64, len(m.Corners))
	for c, sites := range m.SitesHavingCorner {
		if len(sites) == 0 {
			out[c] = InitialElevation
			continue
		}
		sum := 0.0
		for _, s := range sites {
			sum += m.Elevation[s]
		}
		out[c] = sum / float64(len(sites))
	}
	return out
}

// UVs maps every corner into [0,1]^2 over the planar bounds.
func (m *Mesh) UVs() []model2d.Coord {
	size := m.Bounds.Size()
	out := make([]model2d.Coord, len(m.Corners))
	for i, c := range m.Corners {
		u, v := 0.0, 0.0
		if size.X > 0 {
			u = (c.X - m.Bounds.Min.X) / size.X
		}
		if size.Y > 0 {
			v = (c.Y - m.Bounds.Min.Y) / size.Y
		}
		out[i] = model2d.XY(u, v)
	}
	return out
}

// SiteAt returns the site whose centroid is nearest to p.
func (m *Mesh) SiteAt(p model2d.Coord) (int, bool) {
	m.lookupOnce.Do(func() {
		m.siteByXY = make(map[model2d.Coord]int, len(m.SiteXY))
		for i, xy := range m.SiteXY {
			if _, ok := m.siteByXY[xy]; !ok {
				m.siteByXY[xy] = i
			}
		}
		m.tree = model2d.NewCoordTree(m.SiteXY)
	})
	if len(m.SiteXY) == 0 {
		return 0, false
	}
	found := m.tree.KNN(1, p)
	if len(found) == 0 {
		return 0, false
	}
	site, ok := m.siteByXY[found[0]]
	return site, ok
}

// Validate checks the structural invariants of the mesh: symmetric
// adjacency along shared edges, corner / site incidence in both directions
// & the hull set.
func (m *Mesh) Validate() error {
	count := len(m.SiteCorners)
	if len(m.neighbors) != count || len(m.SiteXY) != count || len(m.Elevation) != count {
		return errors.Wrapf(ErrMalformedTriangulation, "per-site arrays disagree on site count %d", count)
	}
	if len(m.SitesHavingCorner) != len(m.Corners) {
		return errors.Wrapf(ErrMalformedTriangulation, "%d incidence lists for %d corners", len(m.SitesHavingCorner), len(m.Corners))
	}

	for s, corners := range m.SiteCorners {
		for _, c := range corners {
			if c < 0 || c >= len(m.Corners) {
				return errors.Wrapf(ErrMalformedTriangulation, "site %d has out of range corner %d", s, c)
			}
			if !contains(m.SitesHavingCorner[c], s) {
				return errors.Wrapf(ErrMalformedTriangulation, "corner %d does not list site %d", c, s)
			}
		}
		for k, n := range m.neighbors[s] {
			if !n.Ok {
				continue
			}
			if n.Site < 0 || n.Site >= count || n.Site == s {
				return errors.Wrapf(ErrDanglingTwin, "site %d has neighbour %d", s, n.Site)
			}
			for j := 0; j < k; j++ {
				if o := m.neighbors[s][j]; o.Ok && o.Site == n.Site {
					return errors.Wrapf(ErrDanglingTwin, "site %d lists neighbour %d twice", s, n.Site)
				}
			}
			back, ok := m.slotOf(n.Site, s)
			if !ok {
				return errors.Wrapf(ErrDanglingTwin, "site %d -> %d is not symmetric", s, n.Site)
			}
			a, b := corners[k], corners[(k+1)%3]
			other := m.SiteCorners[n.Site]
			if other[back] != b || other[(back+1)%3] != a {
				return errors.Wrapf(ErrDanglingTwin, "sites %d and %d do not share edge %d-%d", s, n.Site, a, b)
			}
		}
		if m.IsHull(s) != m.hasOpenEdge(s) {
			return errors.Wrapf(ErrHullMismatch, "site %d hull flag disagrees with adjacency", s)
		}
	}

	for c, sites := range m.SitesHavingCorner {
		for _, s := range sites {
			if s < 0 || s >= count {
				return errors.Wrapf(ErrMalformedTriangulation, "corner %d lists out of range site %d", c, s)
			}
			corners := m.SiteCorners[s]
			if corners[0] != c && corners[1] != c && corners[2] != c {
				return errors.Wrapf(ErrMalformedTriangulation, "corner %d lists site %d which lacks it", c, s)
			}
		}
	}
	return nil
}

// slotOf returns the neighbour slot of site that holds other.
func (m *Mesh) slotOf(site, other int) (int, bool) {
	for k, n := range m.neighbors[site] {
		if n.Ok && n.Site == other {
			return k, true
		}
	}
	return 0, false
}

func (m *Mesh) hasOpenEdge(site int) bool {
	for _, n := range m.neighbors[site] {
		if !n.Ok {
			return true
		}
	}
	return false
}

func contains(in []int, v int) bool {
	for _, i := range in {
		if i == v {
			return true
		}
	}
	return false
}
