package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/mesh"
)

// Relax runs `iterations` passes of Lloyd relaxation: each site with a
// closed Voronoi cell moves to the centroid of that cell (clamped to the
// bounds). Sites on the hull stay put. Returns how many passes ran; it
// stops early if the sites can't be triangulated.
func (b *Builder) Relax(iterations int) (int, error) {
	for i := 0; i < iterations; i++ {
		t, err := b.Triangulate()
		if err != nil {
			return i, err
		}
		b.sites = relaxed(t, b.bounds)
	}
	return iterations, nil
}

// relaxed returns the vertices of t moved to their cell centroids.
func relaxed(t *mesh.Triangulation, bounds r2.Rect) []model2d.Coord {
	cells := Cells(t)
	out := make([]model2d.Coord, len(t.Vertices))
	for i, v := range t.Vertices {
		if cells[i] == nil {
			out[i] = v
			continue
		}
		c := bounds.ClampPoint(toR2(cells[i].Centroid()))
		out[i] = model2d.XY(c.X, c.Y)
	}
	return out
}

func toR2(c model2d.Coord) r2.Point {
	return r2.Point{X: c.X, Y: c.Y}
}
