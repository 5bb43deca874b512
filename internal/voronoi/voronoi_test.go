package voronoi

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/mesh"
)

func square(size float64) r2.Rect {
	return r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: size, Y: size})
}

func TestUniformDeterministic(t *testing.T) {
	a := NewBuilder(square(10))
	a.SetSeed(7)
	b := NewBuilder(square(10))
	b.SetSeed(7)

	if n := a.Uniform(100); n != 100 {
		t.Fatalf("accepted %d, want 100", n)
	}
	b.Uniform(100)

	for i, s := range a.Sites() {
		if s != b.Sites()[i] {
			t.Fatalf("site %d differs: %v vs %v", i, s, b.Sites()[i])
		}
		if s.X < 0 || s.X > 10 || s.Y < 0 || s.Y > 10 {
			t.Fatalf("site %v outside bounds", s)
		}
	}
}

func TestFilters(t *testing.T) {
	b := NewBuilder(square(10))
	b.SetSeed(1)
	b.SetCandidateFilters(b.Inset(1))
	b.SetSiteFilters(MinDistance(2))

	b.Uniform(500)
	sites := b.Sites()
	if len(sites) == 0 {
		t.Fatalf("nothing accepted")
	}
	for i, s := range sites {
		if s.X < 1 || s.X > 9 || s.Y < 1 || s.Y > 9 {
			t.Fatalf("site %v inside margin", s)
		}
		for _, o := range sites[i+1:] {
			if s.Dist(o) < 2 {
				t.Fatalf("sites %v and %v too close", s, o)
			}
		}
	}

	if _, ok := b.AddSite(model2d.XY(20, 20)); ok {
		t.Fatalf("accepted a site outside bounds")
	}
}

func TestPoisson(t *testing.T) {
	b := NewBuilder(square(20))
	b.SetSeed(3)
	n := b.Poisson(1)
	if n < 100 {
		t.Fatalf("only %d poisson sites", n)
	}
	sites := b.Sites()
	for i, s := range sites {
		for _, o := range sites[i+1:] {
			if s.Dist(o) < 1-1e-9 {
				t.Fatalf("sites %v and %v closer than radius", s, o)
			}
		}
	}
}

func TestDedupe(t *testing.T) {
	b := NewBuilder(square(4))
	for _, c := range []model2d.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 2}} {
		b.AddSite(c)
	}
	if removed := b.Dedupe(); removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	if b.SiteCount() != 3 {
		t.Fatalf("%d sites left", b.SiteCount())
	}
}

func TestTriangulateBuildsMesh(t *testing.T) {
	b := NewBuilder(square(10))
	b.SetSeed(11)
	b.Uniform(100)

	tr, err := b.Triangulate()
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	m, err := mesh.Build(tr)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Euler: 2n - 2 - h triangles for n points with h on the hull
	if m.SiteCount() < 100 || m.SiteCount() > 200 {
		t.Fatalf("site count %d", m.SiteCount())
	}
	if len(m.HullSites) == 0 || len(m.HullSites) == m.SiteCount() {
		t.Fatalf("hull sites %d of %d", len(m.HullSites), m.SiteCount())
	}
}

func TestTriangulateTooFew(t *testing.T) {
	b := NewBuilder(square(4))
	b.AddSite(model2d.XY(1, 1))
	b.AddSite(model2d.XY(2, 2))
	if _, err := b.Triangulate(); !errors.Is(err, ErrTooFewSites) {
		t.Fatalf("expected ErrTooFewSites, got %v", err)
	}
}

func TestCellsAndRelax(t *testing.T) {
	b := NewBuilder(square(10))
	b.SetSeed(5)
	b.Uniform(200)

	tr, err := b.Triangulate()
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	cells := Cells(tr)
	closed := 0
	for _, c := range cells {
		if c != nil {
			closed++
			if len(c.Points) < 3 {
				t.Fatalf("cell with %d points", len(c.Points))
			}
		}
	}
	if closed == 0 || closed == len(cells) {
		t.Fatalf("%d closed cells of %d", closed, len(cells))
	}

	passes, err := b.Relax(2)
	if err != nil || passes != 2 {
		t.Fatalf("Relax: %d %v", passes, err)
	}
	for _, s := range b.Sites() {
		if !b.Bounds().ContainsPoint(toR2(s)) {
			t.Fatalf("relaxed site %v left the bounds", s)
		}
	}
	if _, err := b.Triangulate(); err != nil {
		t.Fatalf("Triangulate after relax: %v", err)
	}
}

func TestPolygonCentroid(t *testing.T) {
	p := NewPolygon([]model2d.Coord{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}})
	if got := p.Centroid(); got.Dist(model2d.XY(1, 1)) > 1e-12 {
		t.Fatalf("centroid %v", got)
	}
	if p.SignedArea() != 4 {
		t.Fatalf("area %v", p.SignedArea())
	}

	rev := NewPolygon([]model2d.Coord{{X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 0}})
	if got := rev.Centroid(); got.Dist(model2d.XY(1, 1)) > 1e-12 {
		t.Fatalf("clockwise centroid %v", got)
	}

	bounds := p.Bounds()
	if bounds.X.Hi != 2 || bounds.Y.Lo != 0 {
		t.Fatalf("bounds %v", bounds)
	}
}

func TestCircumcenter(t *testing.T) {
	c := circumcenter(model2d.XY(0, 0), model2d.XY(2, 0), model2d.XY(0, 2))
	if math.Abs(c.X-1) > 1e-12 || math.Abs(c.Y-1) > 1e-12 {
		t.Fatalf("circumcenter %v", c)
	}
}
