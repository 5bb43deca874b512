package hydro

import (
	"sort"
)

// Rivers returns the land sites (z > waterZ) whose flux reaches
// threshold*(FluxMax-FluxMin)+FluxMin, highest flux first (ties by site).
// The list is not a path; follow Flow.Downstream to draw segments.
func Rivers(flow *Flow, z []float64, waterZ, threshold float64) []int {
	land := []int{}
	for s := range flow.Nodes {
		if z[s] > waterZ {
			land = append(land, s)
		}
	}
	sort.Slice(land, func(i, j int) bool {
		a, b := flow.Nodes[land[i]], flow.Nodes[land[j]]
		if a.Flux != b.Flux {
			return a.Flux > b.Flux
		}
		return a.Site < b.Site
	})

	cutoff := RiverCutoff(flow, threshold)
	out := []int{}
	for _, s := range land {
		if flow.Nodes[s].Flux < cutoff {
			break
		}
		out = append(out, s)
	}
	return out
}

// RiverCutoff is the least flux a river site carries for a threshold in [0,1].
func RiverCutoff(flow *Flow, threshold float64) float64 {
	return threshold*(flow.FluxMax-flow.FluxMin) + flow.FluxMin
}
