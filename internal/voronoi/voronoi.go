package voronoi

import (
	"github.com/fogleman/delaunay"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/mesh"
)

// triangulate runs Delaunay triangulation over points.
func triangulate(points []model2d.Coord) (*mesh.Triangulation, error) {
	in := make([]delaunay.Point, len(points))
	for i, p := range points {
		in[i] = delaunay.Point{X: p.X, Y: p.Y}
	}

	dt, err := delaunay.Triangulate(in)
	if err != nil {
		return nil, errors.Wrap(ErrTooFewSites, err.Error())
	}
	if len(dt.Triangles) == 0 {
		return nil, errors.Wrapf(ErrTooFewSites, "%d points are collinear", len(points))
	}

	return &mesh.Triangulation{
		Vertices:  append([]model2d.Coord(nil), points...),
		Triangles: dt.Triangles,
		Halfedges: dt.Halfedges,
	}, nil
}

// Cells returns the Voronoi cell of every interior vertex of t: the ring of
// circumcentres of the triangles around it. Vertices on the hull have an
// unbounded cell and get nil.
func Cells(t *mesh.Triangulation) []*Polygon {
	centres := make([]model2d.Coord, len(t.Triangles)/3)
	for i := range centres {
		centres[i] = circumcenter(
			t.Vertices[t.Triangles[3*i]],
			t.Vertices[t.Triangles[3*i+1]],
			t.Vertices[t.Triangles[3*i+2]],
		)
	}

	// any halfedge ending at each vertex
	inedge := make([]int, len(t.Vertices))
	for i := range inedge {
		inedge[i] = -1
	}
	for e := range t.Triangles {
		v := t.Triangles[nextHalfedge(e)]
		if inedge[v] == -1 {
			inedge[v] = e
		}
	}

	cells := make([]*Polygon, len(t.Vertices))
	for v, start := range inedge {
		if start == -1 {
			continue
		}
		ring, closed := aroundVertex(t, start)
		if !closed {
			continue
		}
		pts := make([]model2d.Coord, len(ring))
		for i, e := range ring {
			pts[i] = centres[e/3]
		}
		cells[v] = NewPolygon(pts)
	}
	return cells
}

// aroundVertex walks the halfedges ending at the same vertex as start.
// closed is false if the walk left the triangulation (a hull vertex).
func aroundVertex(t *mesh.Triangulation, start int) ([]int, bool) {
	ring := []int{}
	incoming := start
	for {
		ring = append(ring, incoming)
		incoming = t.Halfedges[nextHalfedge(incoming)]
		if incoming == -1 {
			return ring, false
		}
		if incoming == start {
			return ring, true
		}
	}
}

// circumcenter of the triangle abc. Degenerate triangles give their centroid.
func circumcenter(a, b, c model2d.Coord) model2d.Coord {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return a.Add(b).Add(c).Scale(1.0 / 3.0)
	}
	bl := bx*bx + by*by
	cl := cx*cx + cy*cy
	return model2d.XY(
		a.X+(cy*bl-by*cl)/d,
		a.Y+(bx*cl-cx*bl)/d,
	)
}

func nextHalfedge(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}
