package geomop

import (
	"errors"
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

// ErrNotPolygonal is returned when an operation receives a geometry that
// cannot be interpreted as one or more polygon rings.
var ErrNotPolygonal = errors.New("geometry is not polygonal")

// toClip flattens a polygonal orb geometry into a polyclip ring set.
// Degenerate rings (fewer than 3 distinct points, zero area, non-finite
// coordinates) are rejected; if no usable ring remains the geometry is
// considered invalid.
func toClip(g orb.Geometry) (polyclip.Polygon, error) {
	if g == nil {
		return nil, errors.New("nil geometry")
	}

	var out polyclip.Polygon
	add := func(r orb.Ring) error {
		c, err := ringToContour(r)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	switch g := g.(type) {
	case orb.Ring:
		keep(add(g))
	case orb.Polygon:
		for _, r := range g {
			keep(add(r))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				keep(add(r))
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotPolygonal, g.GeoJSONType())
	}

	if len(out) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, errors.New("no usable rings")
	}
	return out, nil
}

// ringToContour converts a single ring, dropping the closing duplicate
// point GeoJSON rings carry.
func ringToContour(r orb.Ring) (polyclip.Contour, error) {
	pts := []orb.Point(r)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, errors.New("ring has fewer than 3 points")
	}
	c := make(polyclip.Contour, 0, len(pts))
	for _, p := range pts {
		if !finite(p[0]) || !finite(p[1]) {
			return nil, errors.New("ring has non-finite coordinate")
		}
		c = append(c, polyclip.Point{X: p[0], Y: p[1]})
	}
	if contourArea(c) == 0 {
		return nil, errors.New("ring is degenerate (zero signed area)")
	}
	return c, nil
}

// fromClip rebuilds a polygonal orb geometry from a flat ring set by
// nesting each hole under its smallest enclosing shell. A contour is a
// hole when it sits inside an odd number of other contours. Returns nil
// when the set is empty.
func fromClip(p polyclip.Polygon) orb.Geometry {
	var contours []polyclip.Contour
	for _, c := range p {
		if len(c) >= 3 {
			contours = append(contours, c)
		}
	}
	if len(contours) == 0 {
		return nil
	}

	type ringRec struct {
		contour polyclip.Contour
		area    float64 // absolute
		hole    bool
	}
	recs := make([]ringRec, len(contours))
	for i, c := range contours {
		depth := 0
		for j, other := range contours {
			if i == j {
				continue
			}
			if other.Contains(c[0]) {
				depth++
			}
		}
		recs[i] = ringRec{
			contour: c,
			area:    math.Abs(contourArea(c)),
			hole:    depth%2 == 1,
		}
	}

	// Shells become polygons; orient outer rings counter-clockwise.
	var polys orb.MultiPolygon
	shellIdx := make([]int, 0, len(recs)) // recs index per polys entry
	for i, r := range recs {
		if r.hole {
			continue
		}
		ring := contourToRing(r.contour, false)
		polys = append(polys, orb.Polygon{ring})
		shellIdx = append(shellIdx, i)
	}
	if len(polys) == 0 {
		// Only misnested rings remain; treat them all as shells rather
		// than dropping geometry.
		for _, r := range recs {
			polys = append(polys, orb.Polygon{contourToRing(r.contour, false)})
		}
		if len(polys) == 1 {
			return polys[0]
		}
		return polys
	}

	// Attach each hole to the smallest shell that contains it.
	for _, r := range recs {
		if !r.hole {
			continue
		}
		best := -1
		bestArea := math.Inf(1)
		for k, si := range shellIdx {
			shell := recs[si]
			if shell.area < r.area {
				continue
			}
			if shell.contour.Contains(r.contour[0]) && shell.area < bestArea {
				best = k
				bestArea = shell.area
			}
		}
		if best < 0 {
			continue
		}
		polys[best] = append(polys[best], contourToRing(r.contour, true))
	}

	if len(polys) == 1 {
		return polys[0]
	}
	return polys
}

// contourToRing closes the contour and normalizes winding: clockwise for
// holes, counter-clockwise otherwise.
func contourToRing(c polyclip.Contour, hole bool) orb.Ring {
	ring := make(orb.Ring, 0, len(c)+1)
	for _, p := range c {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	ring = append(ring, ring[0])

	ccw := contourArea(c) > 0
	if hole == ccw {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}
	return ring
}

// contourArea is the signed shoelace area of an open contour; positive
// means counter-clockwise.
func contourArea(c polyclip.Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	sum := 0.0
	for i := range c {
		j := (i + 1) % len(c)
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return sum / 2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Parts splits a polygonal geometry into its constituent single polygons.
func Parts(g orb.Geometry) []orb.Polygon {
	switch g := g.(type) {
	case nil:
		return nil
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		parts := make([]orb.Polygon, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				parts = append(parts, p)
			}
		}
		return parts
	default:
		return nil
	}
}
