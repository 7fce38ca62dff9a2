package geomop

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const earthRadiusKm = 6371.0

// GreatCircleKm calculates the distance between two points in kilometers
// using the Haversine formula
func GreatCircleKm(a, b orb.Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }

	dLat := toRad(b[1] - a[1])
	dLon := toRad(b[0] - a[0])
	lat1Rad := toRad(a[1])
	lat2Rad := toRad(b[1])

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// PointToSegmentKm returns the shortest distance in kilometers from point p
// to the line segment ab
// Uses equirectangular projection (accurate for short distances)
func PointToSegmentKm(p, a, b orb.Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }

	// Equirectangular projection locally around point a
	cosLat := math.Cos(toRad(a[1]))
	ax := toRad(a[0]) * cosLat * earthRadiusKm
	ay := toRad(a[1]) * earthRadiusKm
	bx := toRad(b[0]) * cosLat * earthRadiusKm
	by := toRad(b[1]) * earthRadiusKm
	px := toRad(p[0]) * cosLat * earthRadiusKm
	py := toRad(p[1]) * earthRadiusKm

	// Project point p onto segment ab
	dx := bx - ax
	dy := by - ay
	if dx == 0 && dy == 0 {
		// a and b are the same point
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		return math.Hypot(px-ax, py-ay)
	} else if t > 1 {
		return math.Hypot(px-bx, py-by)
	}
	projx := ax + t*dx
	projy := ay + t*dy
	return math.Hypot(px-projx, py-projy)
}

// BoundaryDistanceKm returns the shortest distance in kilometers from p to
// any ring segment of a polygonal geometry, zero when the geometry has no
// rings to measure against.
func BoundaryDistanceKm(p orb.Point, g orb.Geometry) float64 {
	best := math.Inf(1)
	for _, poly := range Parts(g) {
		for _, ring := range poly {
			for i := 0; i+1 < len(ring); i++ {
				d := PointToSegmentKm(p, ring[i], ring[i+1])
				if d < best {
					best = d
				}
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// AreaSqM returns the geodesic surface area of a polygonal geometry in
// square meters.
func AreaSqM(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(geo.Area(g))
}

// Centroid returns the area-weighted centroid of a polygonal geometry.
// Degenerate geometry with no area has no centroid.
func Centroid(g orb.Geometry) (orb.Point, error) {
	if g == nil {
		return orb.Point{}, errors.New("nil geometry")
	}
	c, area := planar.CentroidArea(g)
	if area == 0 {
		return orb.Point{}, errors.New("geometry has no area")
	}
	return c, nil
}

// Contains reports whether a polygonal geometry covers the point.
func Contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Ring:
		return planar.RingContains(g, p)
	default:
		return false
	}
}
