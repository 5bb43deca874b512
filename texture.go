package terramap

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/unixpickle/model3d/model2d"
	"golang.org/x/image/colornames"

	"github.com/voidshard/terramap/internal/line"
)

// ColourScheme defines how biomes & rivers are coloured in a texture.
type ColourScheme struct {
	// Biomes maps each biome to a fill colour; sites with a biome not
	// present are left as Background.
	Biomes map[BiomeType]color.Color

	Rivers     color.Color
	Background color.Color

	// Coast is stroked along land / water edges, skipped if nil
	Coast color.Color
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Rivers:     colornames.Royalblue,
		Background: colornames.Black,
		Coast:      colornames.Darkslategray,
		Biomes: map[BiomeType]color.Color{
			Water:                    color.RGBA{54, 54, 97, 255},
			Snow:                     color.RGBA{248, 248, 248, 255},
			Tundra:                   color.RGBA{221, 221, 187, 255},
			Bare:                     color.RGBA{187, 187, 187, 255},
			Scorched:                 color.RGBA{153, 153, 153, 255},
			Taiga:                    color.RGBA{204, 212, 187, 255},
			Shrubland:                color.RGBA{196, 204, 187, 255},
			TemperateDesert:          color.RGBA{228, 232, 202, 255},
			TemperateRainForest:      color.RGBA{164, 196, 168, 255},
			TemperateDeciduousForest: color.RGBA{180, 201, 169, 255},
			Grassland:                color.RGBA{196, 212, 170, 255},
			TropicalRainForest:       color.RGBA{156, 187, 169, 255},
			TropicalSeasonalForest:   color.RGBA{169, 204, 164, 255},
			SubtropicalDesert:        color.RGBA{233, 221, 199, 255},
		},
	}
}

// Image returns the map rendered with the DefaultScheme.
func (m *Map) Image() image.Image {
	return m.CustomImage(DefaultScheme())
}

// CustomImage renders the map with the given scheme at
// Settings.TextureResolution pixels per unit. Each site triangle is filled
// with its biome colour, then rivers are stroked from each river site to the
// site downstream of it, wider for more flux.
func (m *Map) CustomImage(scheme *ColourScheme) image.Image {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	w, h := m.textureSize()
	dc := gg.NewContext(w, h)

	dc.SetColor(scheme.Background)
	dc.Clear()

	for id, site := range m.Sites {
		col, ok := scheme.Biomes[site.Biome]
		if !ok {
			continue
		}
		for i, c := range m.mesh.SiteCorners[id] {
			x, y := m.toPixel(m.mesh.Corners[c])
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetColor(col)
		// a hairline stroke closes the seams antialiasing leaves between
		// neighbouring triangles
		dc.SetLineWidth(1)
		dc.FillPreserve()
		dc.Stroke()
	}

	if scheme.Coast != nil {
		dc.SetColor(scheme.Coast)
		dc.SetLineWidth(1)
		for _, seg := range m.Coastline() {
			x0, y0 := m.toPixel(seg[0])
			x1, y1 := m.toPixel(seg[1])
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
		}
	}

	fluxMin, fluxSpan := m.Stats.FluxMin, m.Stats.FluxMax-m.Stats.FluxMin
	maxWidth := m.Settings.RiverStrokeMax

	dc.SetColor(scheme.Rivers)
	dc.SetLineCap(gg.LineCapRound)
	for _, id := range m.RiverSites {
		site := m.Sites[id]
		if site.Downstream == nil {
			continue
		}
		width := maxWidth
		if fluxSpan > 0 {
			width = maxWidth * (site.Flux - fluxMin) / fluxSpan
		}
		if width <= 0 {
			continue
		}
		down := m.Sites[*site.Downstream]
		x0, y0 := m.toPixel(model2d.XY(site.X, site.Y))
		x1, y1 := m.toPixel(model2d.XY(down.X, down.Y))
		dc.SetLineWidth(width)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}

	return dc.Image()
}

// RiverMask marks the one pixel wide centre line of every river segment,
// at the same size & resolution as CustomImage.
func (m *Map) RiverMask() *image.Alpha {
	w, h := m.textureSize()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for _, id := range m.RiverSites {
		site := m.Sites[id]
		if site.Downstream == nil {
			continue
		}
		down := m.Sites[*site.Downstream]
		a := m.toGrid(model2d.XY(site.X, site.Y))
		b := m.toGrid(model2d.XY(down.X, down.Y))
		line.Walk(a, b, func(p image.Point) {
			mask.SetAlpha(p.X, p.Y, color.Alpha{A: 255})
		})
	}
	return mask
}

// SavePNG renders the map with the DefaultScheme & writes it to fpath.
func (m *Map) SavePNG(fpath string) error {
	return savePNG(fpath, m.Image())
}

// SaveAdv is sugar around CustomImage followed by writing out a PNG.
func (m *Map) SaveAdv(fpath string, scheme *ColourScheme) error {
	return savePNG(fpath, m.CustomImage(scheme))
}

// textureSize is the rendered image size in pixels.
func (m *Map) textureSize() (int, int) {
	res := m.Settings.TextureResolution
	w := int(math.Ceil(m.Settings.Area.Width() * res))
	h := int(math.Ceil(m.Settings.Area.Height() * res))
	return maxint(w, 1), maxint(h, 1)
}

// toGrid converts map coordinates to the pixel containing them.
func (m *Map) toGrid(p model2d.Coord) image.Point {
	x, y := m.toPixel(p)
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// toPixel converts map coordinates to image coordinates.
func (m *Map) toPixel(p model2d.Coord) (float64, float64) {
	res := m.Settings.TextureResolution
	return (p.X - m.Settings.Area.MinX) * res, (p.Y - m.Settings.Area.MinY) * res
}
