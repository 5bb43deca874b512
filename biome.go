package terramap

import (
	"sort"
)

// BiomeType names the land cover of a site.
// Land biomes come from a table of 4 elevation bands by 6 moisture zones;
// anything under the sea is Water.
type BiomeType string

const (
	Water                    = "water"                      // under sea level
	Snow                     = "snow"                       // high & wet
	Tundra                   = "tundra"                     // high, moderate moisture
	Bare                     = "bare"                       // high & dry
	Scorched                 = "scorched"                   // high, driest
	Taiga                    = "taiga"                      // upper slopes, wet
	Shrubland                = "shrubland"                  // upper slopes, moderate
	TemperateDesert          = "temperate-desert"           // upper slopes or mid, dry
	TemperateRainForest      = "temperate-rain-forest"      // mid elevation, wettest
	TemperateDeciduousForest = "temperate-deciduous-forest" // mid elevation, wet
	Grassland                = "grassland"                  // mid or low, moderate to dry
	TropicalRainForest       = "tropical-rain-forest"       // lowland, wet
	TropicalSeasonalForest   = "tropical-seasonal-forest"   // lowland, moderate
	SubtropicalDesert        = "subtropical-desert"         // lowland, driest
)

const (
	// MoistureZones is the number of moisture columns in the biome table.
	MoistureZones = 6

	// ElevationBands is the number of elevation rows in the biome table.
	ElevationBands = 4
)

var (
	// biomeTable[band][moisture], band 0 is lowland, moisture 0 is driest
	biomeTable = [ElevationBands][MoistureZones]BiomeType{
		{SubtropicalDesert, Grassland, TropicalSeasonalForest, TropicalSeasonalForest, TropicalRainForest, TropicalRainForest},
		{TemperateDesert, Grassland, Grassland, TemperateDeciduousForest, TemperateDeciduousForest, TemperateRainForest},
		{TemperateDesert, TemperateDesert, Shrubland, Shrubland, Taiga, Taiga},
		{Scorched, Bare, Tundra, Snow, Snow, Snow},
	}

	// bandCeilings are the exclusive upper bounds of the lower three bands
	bandCeilings = [ElevationBands - 1]float64{0.2, 0.5, 0.8}
)

// AllBiomeTypes returns every biome, water first.
func AllBiomeTypes() []BiomeType {
	seen := map[BiomeType]bool{Water: true}
	all := []BiomeType{Water}
	for _, row := range biomeTable {
		for _, b := range row {
			if !seen[b] {
				seen[b] = true
				all = append(all, b)
			}
		}
	}
	sort.Slice(all[1:], func(i, j int) bool { return all[i+1] < all[j+1] })
	return all
}

// Classify returns the biome for a normalised elevation & moisture zone.
// elevNorm is negative under water and runs 0 (shore) to 1 (highest peak)
// on land. Moisture is clamped to [0, MoistureZones).
func Classify(elevNorm float64, moisture int) BiomeType {
	if elevNorm < 0 {
		return Water
	}
	if moisture < 0 {
		moisture = 0
	} else if moisture >= MoistureZones {
		moisture = MoistureZones - 1
	}

	band := ElevationBands - 1
	for i, ceil := range bandCeilings {
		if elevNorm < ceil {
			band = i
			break
		}
	}
	return biomeTable[band][moisture]
}

// normaliseElevation maps land z to [0,1] between the water surface & zMax.
// Sites at or under the water surface are -1.
func normaliseElevation(z, waterZ, zMax float64) float64 {
	if z <= waterZ {
		return -1
	}
	if zMax <= waterZ {
		return 0
	}
	return (z - waterZ) / (zMax - waterZ)
}
