package voronoi

import (
	"math/rand"
	"time"

	"github.com/fogleman/poissondisc"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/mesh"
)

// poissonAttempts is how many candidates poissondisc tries around each point.
const poissonAttempts = 30

// ErrTooFewSites implies there aren't enough distinct, non collinear
// points to triangulate.
var ErrTooFewSites = errors.New("too few sites to triangulate")

// Builder struct makes managing the setup of a point set easier.
// Points are scattered over a rectangle (uniformly or blue noise), may be
// relaxed toward their Voronoi cell centroids & are then triangulated.
type Builder struct {
	bounds r2.Rect
	sites  []model2d.Coord
	rng    *rand.Rand
	sfilt  []SiteFilter
	cfilt  []CandidateFilter
}

// NewBuilder returns a new point set builder over bounds
func NewBuilder(bounds r2.Rect) *Builder {
	return &Builder{
		bounds: bounds,
		sites:  []model2d.Coord{},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SiteCount returns how many sites we've currently got configured
func (b *Builder) SiteCount() int {
	return len(b.sites)
}

// Sites returns the current sites. The slice is owned by the builder.
func (b *Builder) Sites() []model2d.Coord {
	return b.sites
}

// Bounds returns the area sites are placed in
func (b *Builder) Bounds() r2.Rect {
	return b.bounds
}

// SetSeed sets our internal RNG seed
func (b *Builder) SetSeed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// SetRand shares an existing RNG, so one seed drives a whole generation run.
func (b *Builder) SetRand(rng *rand.Rand) {
	b.rng = rng
}

// SetCandidateFilters sets filters that accept / reject a proposed site without
// reference to other currently set site(s).
func (b *Builder) SetCandidateFilters(f ...CandidateFilter) {
	b.cfilt = f
}

// SetSiteFilters sets filters that compare proposed sites to all current sites.
func (b *Builder) SetSiteFilters(f ...SiteFilter) {
	b.sfilt = f
}

// AddRandomSite places a site at random, assuming it obeys all currently set filters.
func (b *Builder) AddRandomSite() (model2d.Coord, int, bool) {
	// make a random point within bounds
	candidate := model2d.XY(
		b.bounds.X.Lo+b.rng.Float64()*b.bounds.X.Length(),
		b.bounds.Y.Lo+b.rng.Float64()*b.bounds.Y.Length(),
	)

	if !b.accepted(candidate) {
		return candidate, 0, false
	}
	return candidate, b.addSite(candidate), true
}

// AddSite places a site at the given location, assuming it obeys currently set filters.
func (b *Builder) AddSite(c model2d.Coord) (int, bool) {
	if !b.accepted(c) {
		return 0, false
	}
	return b.addSite(c), true
}

// Uniform tries `count` random sites. Returns how many were accepted.
func (b *Builder) Uniform(count int) int {
	added := 0
	for i := 0; i < count; i++ {
		if _, _, ok := b.AddRandomSite(); ok {
			added++
		}
	}
	return added
}

// Poisson fills the bounds with blue noise sites at least `radius` apart.
// Returns how many were accepted.
func (b *Builder) Poisson(radius float64) int {
	points := poissondisc.Sample(
		b.bounds.X.Lo, b.bounds.Y.Lo, b.bounds.X.Hi, b.bounds.Y.Hi,
		radius, poissonAttempts, b.rng,
	)
	added := 0
	for _, p := range points {
		if _, ok := b.AddSite(model2d.XY(p.X, p.Y)); ok {
			added++
		}
	}
	return added
}

// Dedupe removes sites sharing an exact position with an earlier site.
// Site order is not preserved.
func (b *Builder) Dedupe() int {
	seen := make(map[model2d.Coord]bool, len(b.sites))
	removed := 0
	for i := 0; i < len(b.sites); {
		if seen[b.sites[i]] {
			essentials.UnorderedDelete(&b.sites, i)
			removed++
			continue
		}
		seen[b.sites[i]] = true
		i++
	}
	return removed
}

// Triangulate de-duplicates the sites & returns their Delaunay triangulation.
func (b *Builder) Triangulate() (*mesh.Triangulation, error) {
	b.Dedupe()
	if len(b.sites) < 3 {
		return nil, errors.Wrapf(ErrTooFewSites, "have %d", len(b.sites))
	}
	return triangulate(b.sites)
}

// accepted returns if the proposed site location is acceptable to our filters.
// We run CandidateFilter(s) first so we can hopefully reject candidates early.
func (b *Builder) accepted(candidate model2d.Coord) bool {
	if !b.bounds.ContainsPoint(toR2(candidate)) {
		return false
	}

	for _, fn := range b.cfilt {
		if !fn(candidate) {
			return false
		}
	}

	// check if we can reject with any SiteFilter, for every site
	if b.sfilt != nil {
		for _, s := range b.sites {
			for _, fn := range b.sfilt {
				if !fn(candidate, s) {
					return false
				}
			}
		}
	}

	return true
}

// addSite adds a site, no filters are run.
func (b *Builder) addSite(c model2d.Coord) int {
	id := len(b.sites)
	b.sites = append(b.sites, c)
	return id
}
