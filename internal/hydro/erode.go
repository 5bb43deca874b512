package hydro

import (
	"math"

	"github.com/unixpickle/model3d/model3d"

	"github.com/voidshard/terramap/internal/mesh"
)

// Erode lowers every site by min(-slope * sqrt(flux), maxRate) where slope
// is the mean downhill gradient to its neighbours. All amounts are computed
// from the surface before any site moves. Erode returns the amount each
// site was lowered by; none is negative or above maxRate.
func Erode(g Graph, s mesh.Surface, flux []float64, maxRate float64) []float64 {
	count := g.SiteCount()
	shift := make([]float64, count)

	for c := 0; c < count; c++ {
		p := model3d.XYZ(s.XY[c].X, s.XY[c].Y, s.Z[c])

		sum := model3d.Coord3D{}
		n := 0
		for _, nb := range g.Neighbors(c) {
			if !nb.Ok {
				continue
			}
			q := model3d.XYZ(s.XY[nb.Site].X, s.XY[nb.Site].Y, s.Z[nb.Site])
			v := q.Sub(p)
			if v.Z > 0 {
				v = v.Scale(-1)
			}
			sum = sum.Add(v)
			n++
		}
		if n == 0 {
			continue
		}

		avg := sum.Scale(1 / float64(n))
		run := math.Hypot(avg.X, avg.Y)
		if run == 0 {
			continue
		}
		slope := avg.Z / run

		amount := math.Min(-slope*math.Sqrt(math.Max(flux[c], 0)), maxRate)
		shift[c] = math.Max(amount, 0)
	}

	for c, v := range shift {
		if v > 0 {
			s.Set(c, s.Z[c]-v)
		}
	}
	return shift
}
