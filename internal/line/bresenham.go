// Package line rasterises straight segments onto the integer grid.
package line

import (
	"image"
)

// Walk calls fn for every grid point on the segment a -> b, starting at a &
// ending at b. Each step moves one pixel along the major axis, so the
// points form an 8-connected path.
func Walk(a, b image.Point, fn func(image.Point)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)

	err := dx + dy
	p := a
	for {
		fn(p)
		if p == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

// PointsBetween returns all points on a line between a,b (inclusive)
func PointsBetween(a, b image.Point) []image.Point {
	pts := []image.Point{}
	Walk(a, b, func(p image.Point) {
		pts = append(pts, p)
	})
	return pts
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
