package hydro

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/progress"
)

// Policy picks a site's downstream neighbour among the strictly lower ones.
type Policy int

const (
	// MaxDrop picks the neighbour with the largest height difference.
	MaxDrop Policy = iota
	// MaxSlope picks the neighbour with the largest drop per unit distance.
	MaxSlope
)

// ParsePolicy maps a settings name ("drop", "slope") to a Policy.
// The empty string is MaxDrop.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "drop":
		return MaxDrop, nil
	case "slope":
		return MaxSlope, nil
	}
	return MaxDrop, errors.Wrapf(ErrUnknownPolicy, "%q", name)
}

// String returns the settings name of the policy.
func (p Policy) String() string {
	if p == MaxSlope {
		return "slope"
	}
	return "drop"
}

// WaterNode is the flow state of one site.
type WaterNode struct {
	Site int     `json:"site"`
	Flux float64 `json:"flux"`

	// Downstream is only meaningful if HasDownstream.
	Downstream    int  `json:"downstream"`
	HasDownstream bool `json:"has_downstream"`
}

// FlowOptions configure flux accumulation.
type FlowOptions struct {
	// Rainfall is the flux every site starts with.
	Rainfall float64

	// Policy selects the downstream neighbour.
	Policy Policy

	Progress progress.Sink
}

// Flow is the result of flux accumulation: a forest where each site points
// at most once downstream.
type Flow struct {
	// Nodes are indexed by site.
	Nodes []WaterNode

	// Order is the sweep order, highest filled height first.
	Order []int

	FluxMax float64
	FluxMin float64

	// Pits are interior sites left with no downstream neighbour. A correctly
	// filled surface has none; callers should report them.
	Pits []int
}

// Downstream returns the site that `site` drains into.
func (f *Flow) Downstream(site int) (int, bool) {
	n := f.Nodes[site]
	return n.Downstream, n.HasDownstream
}

// Flux returns the flux of every site, indexed by site.
func (f *Flow) Flux() []float64 {
	out := make([]float64, len(f.Nodes))
	for i, n := range f.Nodes {
		out[i] = n.Flux
	}
	return out
}

// Outlets returns every site with no downstream neighbour, ascending.
func (f *Flow) Outlets() []int {
	out := []int{}
	for _, n := range f.Nodes {
		if !n.HasDownstream {
			out = append(out, n.Site)
		}
	}
	return out
}

// Accumulate routes rainfall down the filled surface w. Sites are swept
// from highest to lowest (ties by site index) and each passes its flux to
// one strictly lower neighbour, so the result never contains a cycle and
// every site is finished before anything downstream of it is swept.
func Accumulate(g Graph, xy []model2d.Coord, w []float64, opts FlowOptions) *Flow {
	count := g.SiteCount()
	flow := &Flow{
		Nodes: make([]WaterNode, count),
		Order: make([]int, count),
		Pits:  []int{},
	}
	for s := 0; s < count; s++ {
		flow.Nodes[s] = WaterNode{Site: s, Flux: opts.Rainfall}
		flow.Order[s] = s
	}
	sort.Slice(flow.Order, func(i, j int) bool {
		a, b := flow.Order[i], flow.Order[j]
		if w[a] != w[b] {
			return w[a] > w[b]
		}
		return a < b
	})

	tick := progress.NewThrottle(opts.Progress, "Flux", count, 10)
	for i, c := range flow.Order {
		tick.Tick(i)

		down, ok := downstream(g, xy, w, c, opts.Policy)
		if !ok {
			if !g.IsHull(c) {
				flow.Pits = append(flow.Pits, c)
			}
			continue
		}
		flow.Nodes[c].Downstream = down
		flow.Nodes[c].HasDownstream = true
		flow.Nodes[down].Flux += flow.Nodes[c].Flux
	}

	if count > 0 {
		flow.FluxMax = flow.Nodes[0].Flux
		flow.FluxMin = flow.Nodes[0].Flux
	}
	for _, n := range flow.Nodes {
		if n.Flux > flow.FluxMax {
			flow.FluxMax = n.Flux
		}
		if n.Flux < flow.FluxMin {
			flow.FluxMin = n.Flux
		}
	}
	return flow
}

// downstream picks the lower neighbour of c under policy. Ties keep the
// first neighbour found.
func downstream(g Graph, xy []model2d.Coord, w []float64, c int, policy Policy) (int, bool) {
	best, found := 0, false
	bestScore := 0.0
	for _, nb := range g.Neighbors(c) {
		if !nb.Ok || w[nb.Site] >= w[c] {
			continue
		}
		score := w[c] - w[nb.Site]
		if policy == MaxSlope {
			if d := xy[c].Dist(xy[nb.Site]); d > 0 {
				score /= d
			}
		}
		if !found || score > bestScore {
			best, bestScore, found = nb.Site, score, true
		}
	}
	return best, found
}
