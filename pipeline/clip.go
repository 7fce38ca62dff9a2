package pipeline

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/geomop"
	"postzone/logger"
	"postzone/postal"
)

// boundsOverlap is the reject-only rectangle test the clipper prefilters
// with. Touching boxes count as overlapping, so a true overlap is never
// rejected.
func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}

// Clip intersects every postal feature with the unified mask. Features
// whose bounding box misses the mask, or whose intersection comes up
// empty, are dropped; a failed intersection skips just that feature.
// Output preserves input order and the original properties.
func Clip(fs []*geojson.Feature, maskGeom orb.Geometry, report *RunReport) []*geojson.Feature {
	maskBound := maskGeom.Bound()
	out := make([]*geojson.Feature, 0, len(fs))
	outside := 0
	for i, f := range fs {
		if f == nil || f.Geometry == nil {
			report.Skip(StageClip, i, "", ReasonNoGeometry, "")
			continue
		}
		if !boundsOverlap(f.Geometry.Bound(), maskBound) {
			outside++
			continue
		}
		clipped, err := geomop.Intersection(f.Geometry, maskGeom)
		if err != nil {
			code, _ := postal.Code(f)
			report.Skip(StageClip, i, code, ReasonIntersectFailed, err.Error())
			continue
		}
		if !postal.Polygonal(clipped) {
			outside++
			continue
		}
		nf := geojson.NewFeature(clipped)
		nf.Properties = f.Properties.Clone()
		out = append(out, nf)
	}
	report.Stage(StageClip, len(fs), len(out))
	logger.L().Info("clipped against mask", "in", len(fs), "kept", len(out), "outside", outside)
	return out
}
