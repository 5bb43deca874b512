package cell

import (
	"sort"

	"github.com/voidshard/terramap/internal/mesh"
)

// Edge is a pair of mesh corner indices, lowest first.
type Edge [2]int

// Circuit finds the edges separating "inside" sites from every other site.
// Notes.
//  1. edges are returned sorted (by first then second corner) & each once
//  2. the edges are in no particular walking order
//  3. if border is set, edges along the mesh hull of an inside site count
//     as boundary too (ie. land running off the edge of the map)
func Circuit(m *mesh.Mesh, inside func(site int) bool, border bool) []Edge {
	seen := map[Edge]bool{}
	out := []Edge{}

	for site := 0; site < m.SiteCount(); site++ {
		if !inside(site) {
			continue
		}
		corners := m.SiteCorners[site]
		for k, n := range m.Neighbors(site) {
			if n.Ok && inside(n.Site) {
				continue
			}
			if !n.Ok && !border {
				continue
			}
			e := newEdge(corners[k], corners[(k+1)%3])
			if seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i][0] == out[j][0] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// Degree counts how many of the given edges meet at each corner.
// On a closed circuit every corner has an even degree.
func Degree(edges []Edge) map[int]int {
	deg := map[int]int{}
	for _, e := range edges {
		deg[e[0]]++
		deg[e[1]]++
	}
	return deg
}

func newEdge(a, b int) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{a, b}
}
