// Package lookup answers point-to-zone queries over the dissolved pipeline
// output: exact containment first, nearest zone boundary as fallback.
package lookup

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/geoindex"
	"github.com/tidwall/rtree"

	"postzone/geomop"
	"postzone/postal"
)

// Zone is one dissolved postal zone held by the index.
type Zone struct {
	Code     string
	Geometry orb.Geometry
}

// Index is a bbox rtree over dissolved zones. Build once at startup, read
// from any number of goroutines.
type Index struct {
	tree  *geoindex.Index
	zones []Zone
}

// NewIndex builds the spatial index from dissolved zone features. Features
// without a code or polygonal geometry are ignored.
func NewIndex(fs []*geojson.Feature) *Index {
	idx := &Index{tree: geoindex.Wrap(&rtree.RTree{})}
	for _, f := range fs {
		if f == nil {
			continue
		}
		code, ok := postal.Code(f)
		if !ok || !postal.Polygonal(f.Geometry) {
			continue
		}
		b := f.Geometry.Bound()
		idx.tree.Insert(
			[2]float64{b.Min[0], b.Min[1]},
			[2]float64{b.Max[0], b.Max[1]},
			len(idx.zones),
		)
		idx.zones = append(idx.zones, Zone{Code: code, Geometry: f.Geometry})
	}
	return idx
}

// Len returns the number of indexed zones.
func (idx *Index) Len() int { return len(idx.zones) }

// Codes lists the indexed codes in insertion order.
func (idx *Index) Codes() []string {
	out := make([]string, len(idx.zones))
	for i, z := range idx.zones {
		out[i] = z.Code
	}
	return out
}

// Find returns the zone containing p. The rtree narrows to bbox candidates
// and exact point-in-polygon decides.
func (idx *Index) Find(p orb.Point) (Zone, bool) {
	var found Zone
	ok := false
	idx.tree.Search(
		[2]float64{p[0], p[1]},
		[2]float64{p[0], p[1]},
		func(min, max [2]float64, data interface{}) bool {
			z := idx.zones[data.(int)]
			if geomop.Contains(z.Geometry, p) {
				found = z
				ok = true
				return false
			}
			return true
		},
	)
	return found, ok
}

// nearbyCandidates caps how many candidates the nearest fallback measures
// exactly against zone boundaries.
const nearbyCandidates = 8

// Nearest resolves p to the zone whose boundary lies closest, with the
// distance in kilometers. Containment wins at distance zero. The traversal
// walks bbox-nearest order and re-ranks a handful of candidates by exact
// boundary distance.
func (idx *Index) Nearest(p orb.Point) (Zone, float64, bool) {
	if z, ok := idx.Find(p); ok {
		return z, 0, true
	}
	best := -1
	bestKm := math.Inf(1)
	seen := 0
	idx.tree.Nearby(
		boxDistAlgo(p),
		func(min, max [2]float64, data interface{}, dist float64) bool {
			zi := data.(int)
			if km := geomop.BoundaryDistanceKm(p, idx.zones[zi].Geometry); km < bestKm {
				best = zi
				bestKm = km
			}
			seen++
			return seen < nearbyCandidates
		},
	)
	if best < 0 {
		return Zone{}, 0, false
	}
	return idx.zones[best], bestKm, true
}

// boxDistAlgo orders the traversal by squared planar degree distance from
// p to each rectangle, close enough to rank candidates at zone scale.
func boxDistAlgo(p orb.Point) func(min, max [2]float64, data interface{}, item bool) float64 {
	return func(min, max [2]float64, data interface{}, item bool) float64 {
		dx := axisDist(p[0], min[0], max[0])
		dy := axisDist(p[1], min[1], max[1])
		return dx*dx + dy*dy
	}
}

func axisDist(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}
