package terramap

// MapStats holds generic stats about a generated map
type MapStats struct {
	// Points triangulated (after relaxation & de-duplication)
	Points int

	// Sites (triangles) in the mesh & how many touch the hull
	Sites     int
	HullSites int

	// FillPasses depression filling took to settle
	FillPasses int

	// Pits are interior sites flux accumulation found no way out of.
	// Always 0 unless filling is broken; kept as a diagnostic.
	Pits int `json:",omitempty"`

	FluxMin float64
	FluxMax float64

	// LandFraction is the fraction of sites above WaterSurfaceZ
	LandFraction float64

	// SeaLevelConverged is false if the land fraction missed the target
	// tolerance & the sea level is a best effort.
	SeaLevelConverged  bool
	SeaLevelIterations int

	Rivers int

	// Count of the number of sites of a given biome
	SitesByBiome map[BiomeType]int
}

// newMapStats returns blank MapStats
func newMapStats() *MapStats {
	return &MapStats{SitesByBiome: map[BiomeType]int{}}
}

// Site is one cell of the finished map.
type Site struct {
	// ID is the site (triangle) index in the mesh
	ID int

	// Centroid of the site & its final elevation
	X, Y, Z float64

	// Hull is true if the site touches the edge of the mesh
	Hull bool `json:",omitempty"`

	// Flux of water through the site
	Flux float64

	// Downstream is the site this one drains into, nil for outlets
	Downstream *int `json:",omitempty"`

	Biome BiomeType
	River bool `json:",omitempty"`
}

// Result is delivered once by Generator.Start.
type Result struct {
	Map *Map
	Err error
}
