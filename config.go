package terramap

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed settings.schema.json
var settingsSchemaJSON string

var settingsSchema = jsonschema.MustCompileString("settings.schema.json", settingsSchemaJSON)

const (
	// SamplerUniform scatters points uniformly at random.
	SamplerUniform = "uniform"

	// SamplerPoisson scatters points as Poisson-disc blue noise.
	SamplerPoisson = "poisson"
)

// Area is the rectangle a map covers, in map units (km in the defaults).
type Area struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Rect returns the area as an r2.Rect
func (a Area) Rect() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: a.MinX, Y: a.MinY}, r2.Point{X: a.MaxX, Y: a.MaxY})
}

// Width of the area
func (a Area) Width() float64 {
	return a.MaxX - a.MinX
}

// Height of the area
func (a Area) Height() float64 {
	return a.MaxY - a.MinY
}

// Vec2 is a planar direction.
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// HillTier stamps Count raised cosine blobs of the given Strength & Radius
// at random locations. Negative strength digs depressions.
type HillTier struct {
	Count    int     `yaml:"count" json:"count"`
	Strength float64 `yaml:"strength" json:"strength"`
	Radius   float64 `yaml:"radius" json:"radius"`
}

// Settings hold configuration for generating one map.
// Everything is fixed for the duration of a run.
type Settings struct {
	// Seed for rng (random number chosen if 0)
	Seed int64 `yaml:"seed" json:"seed"`

	// Area the map covers, required
	Area Area `yaml:"area" json:"area"`

	// Resolution is points per unit of length; the mesh starts from
	// Width*Resolution * Height*Resolution points.
	Resolution float64 `yaml:"resolution" json:"resolution"`

	// Sampler is SamplerUniform (default) or SamplerPoisson.
	Sampler string `yaml:"sampler" json:"sampler"`

	// MinPointSpacing rejects uniform points closer than this to an already
	// accepted point. 0 disables the check, which is O(n^2) when enabled.
	MinPointSpacing float64 `yaml:"min_point_spacing" json:"min_point_spacing"`

	// RelaxIterations of Lloyd relaxation to even out the point spacing.
	RelaxIterations int `yaml:"relax_iterations" json:"relax_iterations"`

	// Rainfall falling on every site.
	Rainfall float64 `yaml:"rainfall" json:"rainfall"`

	// MinPDSlope is the least slope (drop per unit distance) the filled
	// surface keeps along drainage edges. Must be positive.
	MinPDSlope float64 `yaml:"min_pd_slope" json:"min_pd_slope"`

	// MaxFillPasses bounds depression filling. 0 means site count + 1,
	// which always suffices.
	MaxFillPasses int `yaml:"max_fill_passes" json:"max_fill_passes"`

	// FlowPolicy picks downstream neighbours: "drop" (default) or "slope".
	FlowPolicy string `yaml:"flow_policy" json:"flow_policy"`

	// MaxErosionRate caps how far one site is lowered by erosion.
	MaxErosionRate float64 `yaml:"max_erosion_rate" json:"max_erosion_rate"`

	// LandWaterRatio is the target fraction of land sites. Values outside
	// (0,1) mean 0.5.
	LandWaterRatio float64 `yaml:"land_water_ratio" json:"land_water_ratio"`

	// SeaLevelTolerance is how far the land fraction may miss LandWaterRatio.
	SeaLevelTolerance float64 `yaml:"sea_level_tolerance" json:"sea_level_tolerance"`

	// SeaLevelMaxIterations bounds the sea level bisection.
	SeaLevelMaxIterations int `yaml:"sea_level_max_iterations" json:"sea_level_max_iterations"`

	// ConifyStrength biases height by distance from the centre. Negative
	// values raise the centre (an island), positive values a basin.
	ConifyStrength float64 `yaml:"conify_strength" json:"conify_strength"`

	// GlobalSlopeDir tilts the whole map; a random direction if zero.
	GlobalSlopeDir Vec2 `yaml:"global_slope_dir" json:"global_slope_dir"`

	// GlobalSlopeMag is the strength of the tilt.
	GlobalSlopeMag float64 `yaml:"global_slope_mag" json:"global_slope_mag"`

	// Hills are stamped in order, tier by tier.
	Hills []HillTier `yaml:"hills" json:"hills"`

	// RiverThreshold in [0,1] is the fraction of the flux range a land
	// site needs to count as a river.
	RiverThreshold float64 `yaml:"river_threshold" json:"river_threshold"`

	// MoistureZone (0-5) used for every site when picking biomes.
	MoistureZone int `yaml:"moisture_zone" json:"moisture_zone"`

	// TextureResolution is pixels per unit of length in rendered images.
	TextureResolution float64 `yaml:"texture_resolution" json:"texture_resolution"`

	// RiverStrokeMax is the stroke width (pixels) of the highest flux river.
	RiverStrokeMax float64 `yaml:"river_stroke_max" json:"river_stroke_max"`
}

// DefaultSettings returns settings for a 500 x 500 coastal map.
func DefaultSettings() *Settings {
	return &Settings{
		Area:                  Area{MinX: 1, MinY: 1, MaxX: 501, MaxY: 501},
		Resolution:            1,
		Sampler:               SamplerUniform,
		RelaxIterations:       1,
		Rainfall:              89,
		MinPDSlope:            0.01,
		FlowPolicy:            "drop",
		MaxErosionRate:        0.01,
		LandWaterRatio:        0.7,
		SeaLevelTolerance:     0.05,
		SeaLevelMaxIterations: 64,
		ConifyStrength:        -2,
		GlobalSlopeMag:        15,
		Hills: []HillTier{
			{Count: 20, Strength: 1, Radius: 40},
			{Count: 60, Strength: 0.4, Radius: 15},
			{Count: 30, Strength: -0.5, Radius: 20},
		},
		RiverThreshold:    0.05,
		MoistureZone:      5,
		TextureResolution: 2,
		RiverStrokeMax:    10,
	}
}

// LoadSettings reads yaml settings from path. Fields missing from the file
// keep their DefaultSettings value.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "settings %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks settings against the settings schema, then the rules
// the schema can't express.
func (s *Settings) Validate() error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := settingsSchema.Validate(doc); err != nil {
		return errors.Wrap(ErrInvalidSettings, err.Error())
	}

	if s.Area.Width() <= 0 || s.Area.Height() <= 0 {
		return errors.Wrapf(ErrInvalidSettings, "area %v has no extent", s.Area)
	}
	if s.pointCount() < 3 {
		return errors.Wrapf(ErrInvalidSettings, "resolution %v gives %d points", s.Resolution, s.pointCount())
	}
	for i, h := range s.Hills {
		if h.Count > 0 && h.Radius <= 0 {
			return errors.Wrapf(ErrInvalidSettings, "hill tier %d has radius %v", i, h.Radius)
		}
	}
	return nil
}

// pointCount is how many points the mesh starts from.
func (s *Settings) pointCount() int {
	return int(s.Area.Width() * s.Resolution * s.Area.Height() * s.Resolution)
}

// sampler is the normalised sampler name.
func (s *Settings) sampler() string {
	if strings.ToLower(s.Sampler) == SamplerPoisson {
		return SamplerPoisson
	}
	return SamplerUniform
}
