package mesh

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/terramap/internal/encoding"
)

// FormatVersion is the first value of every serialised mesh.
const FormatVersion = 1

var (
	// ErrUnsupportedVersion implies the data was written by a different format version.
	ErrUnsupportedVersion = errors.New("unsupported mesh format version")

	// ErrTruncated implies the data ends part way through a section or a
	// count claims more data than there is.
	ErrTruncated = errors.New("truncated mesh data")
)

// MarshalBinary serialises the mesh. Every value is a 4 byte little endian
// int32 or float32, sections in order:
//
//	version
//	vertex count, (x, y) per vertex
//	triangle count, 3 corner indices per triangle
//	hull site count, hull site indices
//	site count, 3 corners per site
//	site count, 3 neighbours per site (-1 on the hull)
//	site count, (x, y, z) per site
//	corner count, then per corner: site count & site indices
func (m *Mesh) MarshalBinary() ([]byte, error) {
	sites := len(m.SiteCorners)
	size := 4 * (1 + 1 + 2*len(m.Corners) + 1 + len(m.Triangles) + 1 + len(m.HullSites) + 2 + 6*sites + 1 + 3*sites + 1 + len(m.SitesHavingCorner))
	for _, l := range m.SitesHavingCorner {
		size += 4 * len(l)
	}
	w := encoding.NewWriter(size)

	w.Int(FormatVersion)

	w.Int(len(m.Corners))
	for _, c := range m.Corners {
		w.Float(c.X)
		w.Float(c.Y)
	}

	w.Int(len(m.Triangles) / 3)
	for _, v := range m.Triangles {
		w.Int(v)
	}

	w.Int(len(m.HullSites))
	for _, s := range m.HullSites {
		w.Int(s)
	}

	w.Int(sites)
	for _, corners := range m.SiteCorners {
		w.Int(corners[0])
		w.Int(corners[1])
		w.Int(corners[2])
	}

	w.Int(sites)
	for _, nbrs := range m.neighbors {
		for _, n := range nbrs {
			if n.Ok {
				w.Int(n.Site)
			} else {
				w.Int(noSite)
			}
		}
	}

	w.Int(sites)
	for i, xy := range m.SiteXY {
		w.Float(xy.X)
		w.Float(xy.Y)
		w.Float(m.Elevation[i])
	}

	w.Int(len(m.SitesHavingCorner))
	for _, l := range m.SitesHavingCorner {
		w.Int(len(l))
		for _, s := range l {
			w.Int(s)
		}
	}

	return w.Bytes(), nil
}

// Unmarshal decodes data written by MarshalBinary & validates the result.
func Unmarshal(data []byte) (*Mesh, error) {
	r := encoding.NewReader(data)
	d := &decoder{r: r}

	version := d.int()
	if d.err == nil && version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, want %d", version, FormatVersion)
	}

	m := &Mesh{}

	vertices := d.count(2)
	m.Corners = make([]model2d.Coord, vertices)
	for i := range m.Corners {
		m.Corners[i] = model2d.XY(d.float(), d.float())
	}

	triangles := d.count(3)
	m.Triangles = make([]int, triangles*3)
	for i := range m.Triangles {
		m.Triangles[i] = d.int()
	}

	hull := d.count(1)
	hullSites := make([]int, hull)
	for i := range hullSites {
		hullSites[i] = d.int()
	}

	sites := d.count(3)
	m.SiteCorners = make([][3]int, sites)
	for i := range m.SiteCorners {
		m.SiteCorners[i] = [3]int{d.int(), d.int(), d.int()}
	}

	if n := d.count(3); d.err == nil && n != sites {
		return nil, errors.Wrapf(ErrMalformedTriangulation, "%d neighbour triples for %d sites", n, sites)
	}
	m.neighbors = make([][3]Neighbor, sites)
	for i := range m.neighbors {
		for k := 0; k < 3; k++ {
			if v := d.int(); v != noSite {
				m.neighbors[i][k] = Neighbor{Site: v, Ok: true}
			}
		}
	}

	if n := d.count(3); d.err == nil && n != sites {
		return nil, errors.Wrapf(ErrMalformedTriangulation, "%d site positions for %d sites", n, sites)
	}
	m.SiteXY = make([]model2d.Coord, sites)
	m.Elevation = make([]float64, sites)
	for i := range m.SiteXY {
		m.SiteXY[i] = model2d.XY(d.float(), d.float())
		m.Elevation[i] = d.float()
	}

	corners := d.count(1)
	m.SitesHavingCorner = make([][]int, corners)
	for c := range m.SitesHavingCorner {
		n := d.count(1)
		l := make([]int, n)
		for i := range l {
			l[i] = d.int()
		}
		m.SitesHavingCorner[c] = l
	}

	if d.err != nil {
		return nil, d.err
	}
	if triangles != sites {
		return nil, errors.Wrapf(ErrMalformedTriangulation, "%d triangles for %d sites", triangles, sites)
	}
	for s, c := range m.SiteCorners {
		if c[0] != m.Triangles[3*s] || c[1] != m.Triangles[3*s+1] || c[2] != m.Triangles[3*s+2] {
			return nil, errors.Wrapf(ErrMalformedTriangulation, "site %d corners disagree with triangle", s)
		}
	}

	m.indexHull()
	if len(hullSites) != len(m.HullSites) {
		return nil, errors.Wrapf(ErrHullMismatch, "%d hull sites stored, %d from adjacency", len(hullSites), len(m.HullSites))
	}
	for i := range hullSites {
		if hullSites[i] != m.HullSites[i] {
			return nil, errors.Wrapf(ErrHullMismatch, "stored hull site %d, adjacency gives %d", hullSites[i], m.HullSites[i])
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.resetBounds()
	return m, nil
}

// decoder remembers the first error so a section can be read without
// checking every value.
type decoder struct {
	r   *encoding.Reader
	err error
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, err := d.r.Int()
	if err != nil {
		d.err = errors.Wrap(ErrTruncated, err.Error())
	}
	return v
}

func (d *decoder) float() float64 {
	if d.err != nil {
		return 0
	}
	v, err := d.r.Float()
	if err != nil {
		d.err = errors.Wrap(ErrTruncated, err.Error())
	}
	return v
}

// count reads a section length whose entries are `width` values each and
// rejects lengths the remaining data can't hold.
func (d *decoder) count(width int) int {
	n := d.int()
	if d.err != nil {
		return 0
	}
	if n < 0 || n*width*4 > d.r.Remaining() {
		d.err = errors.Wrapf(ErrTruncated, "section of %d entries with %d bytes left", n, d.r.Remaining())
		return 0
	}
	return n
}
