package hydro

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/progress"
)

// FillOptions configure depression filling.
type FillOptions struct {
	// MinSlope is the least drop per unit of planar distance the filled
	// surface has along every drainage edge. Must be > 0.
	MinSlope float64

	// MaxPasses bounds the number of relaxation passes.
	// If 0 we use SiteCount()+1, enough for any finite mesh.
	MaxPasses int

	// Progress is told how many sites have a finite filled height after
	// each pass.
	Progress progress.Sink
}

// Filled is the depression free surface.
type Filled struct {
	// W is the filled height of every site. W[s] >= z[s] and every
	// interior site has a neighbour at least MinSlope*distance lower.
	W []float64

	// Passes is how many relaxation passes ran, including the final
	// pass that changed nothing.
	Passes int
}

// Fill computes the Planchon-Darboux filled surface of z. Hull sites keep
// their height; interior sites start infinitely high and are lowered until
// they can drain to a neighbour. z is not modified.
//
// MinSlope must be positive, else ErrFlatFill. Filling stops at the first
// pass that changes nothing. Running out of passes first is
// ErrFillNotConverged, never a partial surface.
func Fill(ctx context.Context, g Graph, xy []model2d.Coord, z []float64, opts FillOptions) (*Filled, error) {
	if !(opts.MinSlope > 0) {
		return nil, errors.Wrapf(ErrFlatFill, "min slope %v", opts.MinSlope)
	}

	count := g.SiteCount()
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = count + 1
	}
	sink := progress.OrNop(opts.Progress)

	w := make([]float64, count)
	for s := range w {
		if g.IsHull(s) {
			w[s] = z[s]
		} else {
			w[s] = math.Inf(1)
		}
	}

	passes := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if passes >= maxPasses {
			return nil, errors.Wrapf(ErrFillNotConverged, "still changing after %d passes", passes)
		}
		passes++

		changed := false
		for c := 0; c < count; c++ {
			if g.IsHull(c) || w[c] <= z[c] {
				continue
			}
			for _, nb := range g.Neighbors(c) {
				if !nb.Ok {
					continue
				}
				wn := w[nb.Site] + xy[c].Dist(xy[nb.Site])*opts.MinSlope
				if z[c] >= wn {
					w[c] = z[c]
					changed = true
					break
				}
				if w[c] > wn {
					w[c] = wn
					changed = true
				}
			}
		}

		if pct := settled(w); pct < 1 {
			sink.Update(pct, "Planchon-Darboux")
		}
		if !changed {
			break
		}
	}

	for s, v := range w {
		if math.IsInf(v, 1) {
			return nil, errors.Wrapf(ErrUnreachableSite, "site %d", s)
		}
	}
	return &Filled{W: w, Passes: passes}, nil
}

// settled is the fraction of sites with a finite filled height.
func settled(w []float64) float64 {
	if len(w) == 0 {
		return 1
	}
	n := 0
	for _, v := range w {
		if !math.IsInf(v, 1) {
			n++
		}
	}
	return float64(n) / float64(len(w))
}
