package terrain

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"

	"github.com/voidshard/terramap/internal/mesh"
)

// grid returns a flat n x n surface spanning [0,n-1]^2 at z=0.
func grid(n int) mesh.Surface {
	s := mesh.Surface{
		Bounds: &mesh.Bounds{Min: model3d.XYZ(0, 0, 0), Max: model3d.XYZ(float64(n-1), float64(n-1), 0)},
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			s.XY = append(s.XY, model2d.XY(float64(x), float64(y)))
			s.Z = append(s.Z, 0)
		}
	}
	return s
}

func at(s mesh.Surface, x, y float64) int {
	for i, xy := range s.XY {
		if xy.X == x && xy.Y == y {
			return i
		}
	}
	return -1
}

func checkContained(t *testing.T, s mesh.Surface) {
	t.Helper()
	for i, z := range s.Z {
		if z < s.Bounds.Min.Z || z > s.Bounds.Max.Z {
			t.Fatalf("site %d z=%v outside bounds [%v,%v]", i, z, s.Bounds.Min.Z, s.Bounds.Max.Z)
		}
	}
}

func TestConify(t *testing.T) {
	s := grid(5)
	Conify(s, 2)

	center := s.Z[at(s, 2, 2)]
	corner := s.Z[at(s, 4, 4)]
	if math.Abs(center-(-0.5)) > 1e-12 {
		t.Fatalf("centre z=%v, want -0.5", center)
	}
	if math.Abs(corner-0.5) > 1e-12 {
		t.Fatalf("corner z=%v, want 0.5", corner)
	}
	checkContained(t, s)
}

func TestSlopeGlobal(t *testing.T) {
	s := grid(5)
	SlopeGlobal(s, model2d.XY(3, 0), 4)

	if got := s.Z[at(s, 0, 2)]; math.Abs(got-(-0.5)) > 1e-12 {
		t.Fatalf("west z=%v, want -0.5", got)
	}
	if got := s.Z[at(s, 4, 0)]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("east z=%v, want 0.5", got)
	}
	if got := s.Z[at(s, 2, 4)]; got != 0 {
		t.Fatalf("middle column z=%v, want 0", got)
	}
	checkContained(t, s)
}

func TestSlopeGlobalZeroDirection(t *testing.T) {
	s := grid(3)
	SlopeGlobal(s, model2d.Coord{}, 10)
	for i, z := range s.Z {
		if z != 0 {
			t.Fatalf("site %d moved to %v", i, z)
		}
	}
}

func TestBlob(t *testing.T) {
	s := grid(9)
	Blob(s, 3, 2, model2d.XY(4, 4))

	if got := s.Z[at(s, 4, 4)]; got != 3 {
		t.Fatalf("centre z=%v, want 3", got)
	}
	want := 3 * math.Cos(0.5*math.Pi/2)
	if got := s.Z[at(s, 5, 4)]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("half radius z=%v, want %v", got, want)
	}
	if got := s.Z[at(s, 6, 4)]; got != 0 {
		t.Fatalf("at radius z=%v, want 0", got)
	}
	if got := s.Z[at(s, 0, 0)]; got != 0 {
		t.Fatalf("far site z=%v, want 0", got)
	}
	if s.Bounds.Max.Z != 3 {
		t.Fatalf("bounds max z=%v, want 3", s.Bounds.Max.Z)
	}

	Blob(s, -5, 1.5, model2d.XY(0, 0))
	if got := s.Z[at(s, 0, 0)]; got != -5 {
		t.Fatalf("pit z=%v, want -5", got)
	}
	checkContained(t, s)

	before := append([]float64(nil), s.Z...)
	Blob(s, 1, 0, model2d.XY(4, 4))
	for i := range before {
		if before[i] != s.Z[i] {
			t.Fatalf("zero radius blob changed site %d", i)
		}
	}
}

func TestSetHeightSpan(t *testing.T) {
	s := grid(3)
	for i := range s.Z {
		s.Z[i] = float64(i)
	}
	SetHeightSpan(s, -1, 1)

	lo, hi := s.Z[0], s.Z[0]
	for _, z := range s.Z {
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	if lo != -1 || hi != 1 {
		t.Fatalf("span [%v,%v], want [-1,1]", lo, hi)
	}
	checkContained(t, s)
}
