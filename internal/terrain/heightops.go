// Package terrain has the operators that sculpt the elevation of a mesh.
// Each one mutates a mesh.Surface in place; writes go through Surface.Set
// so the mesh bounds always contain the surface.
package terrain

import (
	"math"

	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/mesh"
)

// Conify biases elevation by planar distance from the centre of the bounds.
// With a positive strength the centre sinks and the rim rises (a bowl);
// negative strength gives a cone, the usual island base.
func Conify(s mesh.Surface, strength float64) {
	center := planarCenter(s.Bounds)
	maxD := center.Dist(model2d.XY(s.Bounds.Max.X, s.Bounds.Max.Y))
	if maxD == 0 {
		return
	}
	for i, xy := range s.XY {
		d := center.Dist(xy)
		s.Set(i, s.Z[i]+(d/maxD-0.5)*strength/2)
	}
}

// SlopeGlobal tilts the whole surface along dir. A zero dir is no slope.
func SlopeGlobal(s mesh.Surface, dir model2d.Coord, strength float64) {
	if dir.Norm() == 0 {
		return
	}
	dir = dir.Normalize()

	size := s.Bounds.Size()
	for i, xy := range s.XY {
		pctX, pctY := 0.0, 0.0
		if size.X > 0 {
			pctX = (xy.X-s.Bounds.Min.X)/size.X - 0.5
		}
		if size.Y > 0 {
			pctY = (xy.Y-s.Bounds.Min.Y)/size.Y - 0.5
		}
		s.Set(i, s.Z[i]+(pctX*dir.X+pctY*dir.Y)*strength/4)
	}
}

// Blob adds a raised cosine bump: full strength at center, falling to
// nothing at radius. Sites outside the radius are untouched. Negative
// strength digs a depression.
func Blob(s mesh.Surface, strength, radius float64, center model2d.Coord) {
	if radius <= 0 {
		return
	}
	for i, xy := range s.XY {
		dist := center.Dist(xy)
		if dist >= radius {
			continue
		}
		s.Set(i, s.Z[i]+strength*math.Cos(dist/radius*math.Pi/2))
	}
}

// SetHeightSpan linearly rescales elevations so the lowest site sits at lo
// and the highest at hi. A flat surface is moved to lo.
func SetHeightSpan(s mesh.Surface, lo, hi float64) {
	if s.Len() == 0 {
		return
	}
	zMin, zMax := s.Z[0], s.Z[0]
	for _, z := range s.Z {
		zMin = math.Min(zMin, z)
		zMax = math.Max(zMax, z)
	}
	span := zMax - zMin
	for i, z := range s.Z {
		if span == 0 {
			s.Set(i, lo)
			continue
		}
		s.Set(i, lo+(z-zMin)/span*(hi-lo))
	}
}

// planarCenter is the xy centre of the bounds.
func planarCenter(b *mesh.Bounds) model2d.Coord {
	c := b.Center()
	return model2d.XY(c.X, c.Y)
}
