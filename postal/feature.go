package postal

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Code returns the feature's normalized postal code, ok=false when the
// property is missing or unusable.
func Code(f *geojson.Feature) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	return NormalizeCode(f.Properties[CodeProperty])
}

// Polygonal reports whether g carries polygon area that the pipeline can
// operate on.
func Polygonal(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) > 0 && len(g[0]) > 0
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// NewZoneFeature builds a feature carrying a code and its geometry, as the
// gap assigner and dissolver emit.
func NewZoneFeature(code string, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties[CodeProperty] = code
	return f
}

// Sanitize normalizes code properties in place and filters out features
// with no polygonal geometry. Input order is preserved.
func Sanitize(fs []*geojson.Feature) (kept []*geojson.Feature, dropped int) {
	kept = make([]*geojson.Feature, 0, len(fs))
	for _, f := range fs {
		if f == nil || !Polygonal(f.Geometry) {
			dropped++
			continue
		}
		if f.Properties != nil {
			if raw, ok := f.Properties[CodeProperty]; ok {
				if code, ok := NormalizeCode(raw); ok {
					f.Properties[CodeProperty] = code
				}
			}
		}
		kept = append(kept, f)
	}
	return kept, dropped
}
