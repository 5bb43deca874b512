package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// A Polygon is a closed ring of points; the last point forms an edge with
// the first. Voronoi cells are convex, but nothing here relies on that.
type Polygon struct {
	Points []model2d.Coord
}

// NewPolygon: Creates and returns a new pointer to a Polygon
// composed of the passed in Points.
func NewPolygon(points []model2d.Coord) *Polygon {
	return &Polygon{Points: points}
}

// Bounds returns the highest & lowest x & y values from the Points in this polygon.
func (p *Polygon) Bounds() r2.Rect {
	if len(p.Points) == 0 {
		return r2.EmptyRect()
	}
	pts := make([]r2.Point, len(p.Points))
	for i, c := range p.Points {
		pts[i] = toR2(c)
	}
	return r2.RectFromPoints(pts...)
}

// IsClosed returns whether or not the polygon encloses any area.
func (p *Polygon) IsClosed() bool {
	return len(p.Points) >= 3
}

// SignedArea is positive for counter clockwise rings.
func (p *Polygon) SignedArea() float64 {
	if !p.IsClosed() {
		return 0
	}
	sum := 0.0
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Centroid returns the area centroid of the polygon. Rings without area
// fall back to the mean of their points.
func (p *Polygon) Centroid() model2d.Coord {
	if len(p.Points) == 0 {
		return model2d.Coord{}
	}

	area := p.SignedArea()
	if area == 0 {
		mean := model2d.Coord{}
		for _, c := range p.Points {
			mean = mean.Add(c)
		}
		return mean.Scale(1 / float64(len(p.Points)))
	}

	cx, cy := 0.0, 0.0
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		cross := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	return model2d.XY(cx/(6*area), cy/(6*area))
}
