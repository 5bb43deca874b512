package hydro

import (
	"math"
)

const (
	// DefaultLandRatio replaces a land ratio outside (0,1).
	DefaultLandRatio = 0.5

	// DefaultSeaLevelTolerance is how far the land fraction may be from
	// the target ratio.
	DefaultSeaLevelTolerance = 0.05

	// DefaultSeaLevelIterations bounds the bisection.
	DefaultSeaLevelIterations = 64
)

// SeaLevelOptions configure SeaLevel. Zero values take the defaults above.
type SeaLevelOptions struct {
	LandRatio     float64
	Tolerance     float64
	MaxIterations int
}

// SeaLevel is the solved water surface.
type SeaLevel struct {
	// Z is the water surface height. Sites with z > Z are land.
	Z float64

	// LandFraction is the fraction of sites above Z.
	LandFraction float64

	// Converged is false if the bisection ran out of iterations; Z is then
	// the closest estimate seen.
	Converged bool

	Iterations int
}

// SolveSeaLevel bisects between the lowest and highest site for a height
// that leaves LandRatio of the sites above water.
func SolveSeaLevel(z []float64, opts SeaLevelOptions) SeaLevel {
	ratio := opts.LandRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultLandRatio
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultSeaLevelTolerance
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultSeaLevelIterations
	}

	if len(z) == 0 {
		return SeaLevel{}
	}

	lo, hi := z[0], z[0]
	for _, v := range z {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	best := SeaLevel{Z: lo, LandFraction: landFraction(z, lo)}
	bestErr := math.Abs(best.LandFraction - ratio)

	for i := 1; i <= maxIter; i++ {
		mid := lo + (hi-lo)/2
		frac := landFraction(z, mid)
		diff := frac - ratio

		if math.Abs(diff) < bestErr {
			best = SeaLevel{Z: mid, LandFraction: frac}
			bestErr = math.Abs(diff)
		}
		best.Iterations = i
		if math.Abs(diff) <= tol {
			best.Converged = true
			return best
		}

		if diff > 0 {
			// too much land, raise the water
			lo = mid
		} else {
			hi = mid
		}
	}
	return best
}

// landFraction is the fraction of z strictly above level.
func landFraction(z []float64, level float64) float64 {
	n := 0
	for _, v := range z {
		if v > level {
			n++
		}
	}
	return float64(n) / float64(len(z))
}
