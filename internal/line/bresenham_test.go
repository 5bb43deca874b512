package line

import (
	"image"
	"reflect"
	"testing"
)

func TestPointsBetween(t *testing.T) {
	cases := []struct {
		Name   string
		A, B   image.Point
		Expect []image.Point
	}{
		{"point", image.Pt(2, 2), image.Pt(2, 2), []image.Point{{2, 2}}},
		{"horizontal", image.Pt(0, 1), image.Pt(3, 1), []image.Point{{0, 1}, {1, 1}, {2, 1}, {3, 1}}},
		{"vertical up", image.Pt(1, 2), image.Pt(1, 0), []image.Point{{1, 2}, {1, 1}, {1, 0}}},
		{"diagonal", image.Pt(0, 0), image.Pt(2, 2), []image.Point{{0, 0}, {1, 1}, {2, 2}}},
		{"backwards diagonal", image.Pt(2, 0), image.Pt(0, 2), []image.Point{{2, 0}, {1, 1}, {0, 2}}},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			got := PointsBetween(tt.A, tt.B)
			if !reflect.DeepEqual(got, tt.Expect) {
				t.Errorf("expected %v got %v", tt.Expect, got)
			}
		})
	}
}

func TestWalkConnected(t *testing.T) {
	a, b := image.Pt(-3, 7), image.Pt(11, -2)
	pts := PointsBetween(a, b)

	if pts[0] != a || pts[len(pts)-1] != b {
		t.Fatalf("expected ends %v %v got %v %v", a, b, pts[0], pts[len(pts)-1])
	}
	// major axis is x: one point per column
	if len(pts) != 15 {
		t.Errorf("expected 15 points got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		d := pts[i].Sub(pts[i-1])
		if abs(d.X) > 1 || abs(d.Y) > 1 || d == (image.Point{}) {
			t.Errorf("step %d: %v -> %v is not 8-connected", i, pts[i-1], pts[i])
		}
	}
}
