package terramap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/cell"
	"github.com/voidshard/terramap/internal/hydro"
	"github.com/voidshard/terramap/internal/mesh"
	"github.com/voidshard/terramap/internal/progress"
	"github.com/voidshard/terramap/internal/terrain"
	"github.com/voidshard/terramap/internal/voronoi"
)

var (
	// ErrInvalidSettings implies the settings failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrCancelled implies the context ended mid generation. Errors that
	// match it also match the context's own error (context.Canceled or
	// context.DeadlineExceeded) with errors.Is.
	ErrCancelled = errors.New("generation cancelled")
)

// cancelled reports where generation stopped & why.
type cancelled struct {
	at    string
	cause error
}

func (e *cancelled) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrCancelled, e.at, e.cause)
}

// Is matches ErrCancelled; the cause is reached through Unwrap.
func (e *cancelled) Is(target error) bool {
	return target == ErrCancelled
}

func (e *cancelled) Unwrap() error {
	return e.cause
}

// Map holds a generated terrain: mesh, elevation & hydrology.
type Map struct {
	Seed     int64
	Settings *Settings

	// WaterSurfaceZ is the sea level; sites with Z above it are land
	WaterSurfaceZ float64

	// RiverSites are site IDs, highest flux first
	RiverSites []int

	Sites []*Site
	Stats *MapStats

	mesh *mesh.Mesh
	flow *hydro.Flow
}

// Generator runs map generation. The zero value is usable: it discards
// logs & progress.
type Generator struct {
	// Logger receives stage timings & diagnostics
	Logger *log.Logger

	// Progress receives per stage updates
	Progress Progress
}

// New generates a map with the given settings & no logging.
func New(cfg *Settings) (*Map, error) {
	return (&Generator{}).Generate(context.Background(), cfg)
}

// Generate builds a map synchronously. Cancelling ctx stops generation at
// the next stage boundary (or depression filling pass) with ErrCancelled.
func (g *Generator) Generate(ctx context.Context, cfg *Settings) (*Map, error) {
	if cfg == nil {
		cfg = DefaultSettings()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := g.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	b := &build{
		ctx:  ctx,
		cfg:  cfg,
		log:  logger,
		prog: progress.Multi{progress.Log(logger), g.Progress},
		rng:  rand.New(rand.NewSource(seed)),
		m: &Map{
			Seed:     seed,
			Settings: cfg,
			Stats:    newMapStats(),
		},
	}

	start := time.Now()
	if err := b.run(); err != nil {
		return nil, err
	}
	logger.Printf("map seed=%d sites=%d land=%.2f rivers=%d in %s",
		seed, b.m.Stats.Sites, b.m.Stats.LandFraction, b.m.Stats.Rivers, time.Since(start).Round(time.Millisecond))
	return b.m, nil
}

// Start generates a map on its own goroutine. The returned channel
// delivers exactly one Result & is then closed.
func (g *Generator) Start(ctx context.Context, cfg *Settings) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		m, err := g.Generate(ctx, cfg)
		out <- Result{Map: m, Err: err}
	}()
	return out
}

// JSON returns the map as json.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaveJSON writes a json file to the given path.
func (m *Map) SaveJSON(fpath string) error {
	data, err := m.JSON()
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, data, 0644)
}

// SaveMesh writes the mesh (with final elevations) as a compressed binary
// file, readable with mesh.ReadFile.
func (m *Map) SaveMesh(fpath string) error {
	return mesh.WriteFile(fpath, m.mesh)
}

// SiteAt returns the site nearest the given point.
func (m *Map) SiteAt(x, y float64) (*Site, bool) {
	id, ok := m.mesh.SiteAt(model2d.XY(x, y))
	if !ok {
		return nil, false
	}
	return m.Sites[id], true
}

// Coastline returns the mesh edges separating land from water sites, as
// pairs of corner positions. Land running off the map edge is not coast.
func (m *Map) Coastline() [][2]model2d.Coord {
	land := func(site int) bool {
		return m.mesh.Elevation[site] > m.WaterSurfaceZ
	}
	edges := cell.Circuit(m.mesh, land, false)
	out := make([][2]model2d.Coord, len(edges))
	for i, e := range edges {
		out[i] = [2]model2d.Coord{m.mesh.Corners[e[0]], m.mesh.Corners[e[1]]}
	}
	return out
}

// Biomes returns the biome of every site, indexed by site ID.
func (m *Map) Biomes() []BiomeType {
	out := make([]BiomeType, len(m.Sites))
	for i, s := range m.Sites {
		out[i] = s.Biome
	}
	return out
}

// Elevations returns the final elevation of every site, indexed by site ID.
func (m *Map) Elevations() []float64 {
	return append([]float64(nil), m.mesh.Elevation...)
}

// CornerElevations returns one elevation per mesh corner, the mean of the
// sites sharing it.
func (m *Map) CornerElevations() []float64 {
	return m.mesh.CornerElevations()
}

// WaterTopElevations is CornerElevations with everything under the sea
// raised to the water surface.
func (m *Map) WaterTopElevations() []float64 {
	out := m.mesh.CornerElevations()
	for i, z := range out {
		if z < m.WaterSurfaceZ {
			out[i] = m.WaterSurfaceZ
		}
	}
	return out
}

// build carries the state of a single generation run. Stages run in a
// fixed order; each reads what the ones before it produced.
type build struct {
	ctx  context.Context
	cfg  *Settings
	log  *log.Logger
	prog progress.Sink
	rng  *rand.Rand

	m      *Map
	filled *hydro.Filled
}

// stage is one labelled step of the pipeline
type stage struct {
	label string
	fn    func() error
}

// run executes every stage in order. Order is important as later stages
// read the cumulative elevation left by earlier ones.
func (b *build) run() error {
	stages := []stage{
		{"Building mesh", b.buildMesh},
		{"Conifying", b.conify},
		{"Applying global slope", b.slopeGlobal},
		{"Adding hills", b.addHills},
		{"Filling depressions", b.fillDepressions},
		{"Accumulating flux", b.accumulateFlux},
		{"Eroding", b.erode},
		{"Setting sea level", b.setSeaLevel},
		{"Placing rivers", b.placeRivers},
		{"Creating biomes", b.createBiomes},
	}

	for _, s := range stages {
		if err := b.ctx.Err(); err != nil {
			return &cancelled{at: "before " + s.label, cause: err}
		}
		b.prog.Update(0, s.label)
		if err := s.fn(); err != nil {
			if cerr := b.ctx.Err(); cerr != nil {
				return &cancelled{at: "during " + s.label, cause: cerr}
			}
			return errors.Wrap(err, s.label)
		}
		b.prog.Update(1, s.label)
	}
	return nil
}

// buildMesh scatters, relaxes & triangulates the points and indexes the
// triangulation into the dual mesh.
func (b *build) buildMesh() error {
	vb := voronoi.NewBuilder(b.cfg.Area.Rect())
	vb.SetRand(b.rng)

	if b.cfg.sampler() == SamplerPoisson {
		vb.Poisson(1 / b.cfg.Resolution)
	} else {
		if b.cfg.MinPointSpacing > 0 {
			vb.SetSiteFilters(voronoi.MinDistance(b.cfg.MinPointSpacing))
		}
		vb.Uniform(b.cfg.pointCount())
	}

	if b.cfg.RelaxIterations > 0 {
		if _, err := vb.Relax(b.cfg.RelaxIterations); err != nil {
			return err
		}
	}

	tri, err := vb.Triangulate()
	if err != nil {
		return err
	}
	msh, err := mesh.Build(tri)
	if err != nil {
		return err
	}

	b.m.mesh = msh
	b.m.Stats.Points = len(tri.Vertices)
	b.m.Stats.Sites = msh.SiteCount()
	b.m.Stats.HullSites = len(msh.HullSites)
	b.log.Printf("mesh: %d points, %d sites, %d on the hull", b.m.Stats.Points, b.m.Stats.Sites, b.m.Stats.HullSites)
	return nil
}

func (b *build) conify() error {
	terrain.Conify(b.m.mesh.Surface(), b.cfg.ConifyStrength)
	return nil
}

// slopeGlobal tilts the map, picking a random direction if none is set.
func (b *build) slopeGlobal() error {
	dir := model2d.XY(b.cfg.GlobalSlopeDir.X, b.cfg.GlobalSlopeDir.Y)
	if dir.Norm() == 0 {
		dir = model2d.XY(b.rng.Float64()-0.5, b.rng.Float64()-0.5)
	}
	terrain.SlopeGlobal(b.m.mesh.Surface(), dir, b.cfg.GlobalSlopeMag)
	return nil
}

// addHills stamps every hill tier at random places within the mesh bounds.
func (b *build) addHills() error {
	surf := b.m.mesh.Surface()
	min := surf.Bounds.Min
	size := surf.Bounds.Size()

	for i, tier := range b.cfg.Hills {
		b.prog.Update(float64(i)/float64(len(b.cfg.Hills)), "Adding hills")
		for n := 0; n < tier.Count; n++ {
			at := model2d.XY(min.X+b.rng.Float64()*size.X, min.Y+b.rng.Float64()*size.Y)
			terrain.Blob(surf, tier.Strength, tier.Radius, at)
		}
	}
	return nil
}

func (b *build) fillDepressions() error {
	msh := b.m.mesh
	filled, err := hydro.Fill(b.ctx, msh, msh.SiteXY, msh.Elevation, hydro.FillOptions{
		MinSlope:  b.cfg.MinPDSlope,
		MaxPasses: b.cfg.MaxFillPasses,
		Progress:  b.prog,
	})
	if err != nil {
		return err
	}
	b.filled = filled
	b.m.Stats.FillPasses = filled.Passes
	b.log.Printf("depressions filled in %d passes", filled.Passes)
	return nil
}

func (b *build) accumulateFlux() error {
	policy, err := hydro.ParsePolicy(b.cfg.FlowPolicy)
	if err != nil {
		return err
	}
	msh := b.m.mesh
	flow := hydro.Accumulate(msh, msh.SiteXY, b.filled.W, hydro.FlowOptions{
		Rainfall: b.cfg.Rainfall,
		Policy:   policy,
		Progress: b.prog,
	})
	if len(flow.Pits) > 0 {
		b.log.Printf("warning: %d interior sites have no downstream neighbour, first %d", len(flow.Pits), flow.Pits[0])
	}

	b.m.flow = flow
	b.m.Stats.Pits = len(flow.Pits)
	b.m.Stats.FluxMin = flow.FluxMin
	b.m.Stats.FluxMax = flow.FluxMax
	return nil
}

func (b *build) erode() error {
	hydro.Erode(b.m.mesh, b.m.mesh.Surface(), b.m.flow.Flux(), b.cfg.MaxErosionRate)
	return nil
}

func (b *build) setSeaLevel() error {
	sea := hydro.SolveSeaLevel(b.m.mesh.Elevation, hydro.SeaLevelOptions{
		LandRatio:     b.cfg.LandWaterRatio,
		Tolerance:     b.cfg.SeaLevelTolerance,
		MaxIterations: b.cfg.SeaLevelMaxIterations,
	})
	if !sea.Converged {
		b.log.Printf("sea level best effort: land fraction %.3f after %d iterations", sea.LandFraction, sea.Iterations)
	}

	b.m.WaterSurfaceZ = sea.Z
	b.m.Stats.LandFraction = sea.LandFraction
	b.m.Stats.SeaLevelConverged = sea.Converged
	b.m.Stats.SeaLevelIterations = sea.Iterations
	return nil
}

func (b *build) placeRivers() error {
	b.m.RiverSites = hydro.Rivers(b.m.flow, b.m.mesh.Elevation, b.m.WaterSurfaceZ, b.cfg.RiverThreshold)
	b.m.Stats.Rivers = len(b.m.RiverSites)
	return nil
}

// createBiomes classifies every site & fills in the public Sites.
func (b *build) createBiomes() error {
	msh := b.m.mesh
	zMax := maxFloat(msh.Elevation)

	river := make(map[int]bool, len(b.m.RiverSites))
	for _, s := range b.m.RiverSites {
		river[s] = true
	}

	b.m.Sites = make([]*Site, msh.SiteCount())
	for id := range b.m.Sites {
		z := msh.Elevation[id]
		node := b.m.flow.Nodes[id]
		site := &Site{
			ID:    id,
			X:     msh.SiteXY[id].X,
			Y:     msh.SiteXY[id].Y,
			Z:     z,
			Hull:  msh.IsHull(id),
			Flux:  node.Flux,
			Biome: Classify(normaliseElevation(z, b.m.WaterSurfaceZ, zMax), b.cfg.MoistureZone),
			River: river[id],
		}
		if node.HasDownstream {
			down := node.Downstream
			site.Downstream = &down
		}
		b.m.Sites[id] = site
		b.m.Stats.SitesByBiome[site.Biome]++
	}
	return nil
}
