package pipeline

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/geomop"
	"postzone/logger"
	"postzone/postal"
)

// Gap is a connected region inside the mask left uncovered by the working
// set. It carries no code until assigned.
type Gap struct {
	Geometry orb.Polygon
	AreaSqM  float64
}

// BuildGaps subtracts the covered area from the mask and decomposes what
// remains into one gap per constituent part. A failed or empty difference
// means no gaps were found, never an error.
func BuildGaps(maskGeom, covered orb.Geometry, report *RunReport) []Gap {
	diff, err := geomop.Difference(maskGeom, covered)
	if err != nil {
		report.Skip(StageGapBuild, -1, "", ReasonDifferenceFailed, err.Error())
		report.Stage(StageGapBuild, 0, 0)
		return nil
	}
	parts := geomop.Parts(diff)
	gaps := make([]Gap, 0, len(parts))
	for _, p := range parts {
		gaps = append(gaps, Gap{Geometry: p, AreaSqM: geomop.AreaSqM(p)})
	}
	report.Stage(StageGapBuild, len(parts), len(gaps))
	logger.L().Info("gaps built", "count", len(gaps))
	return gaps
}

// AssignGaps hands each gap to the candidate whose centroid lies nearest
// its own, by great-circle distance. Gaps above the area limit are
// discarded as too large to be legitimate slivers. The comparison is a
// strict less-than, so equidistant candidates resolve to the one seen
// first. Each assignment becomes a new feature carrying the winning code
// and the gap's own geometry; the dissolver merges them later.
func AssignGaps(gaps []Gap, candidates []*geojson.Feature, maxAreaSqM float64, report *RunReport) []*geojson.Feature {
	type anchor struct {
		code     string
		centroid orb.Point
	}
	anchors := make([]anchor, 0, len(candidates))
	for i, f := range candidates {
		code, ok := postal.Code(f)
		if !ok {
			report.Skip(StageGapAssign, i, "", ReasonMissingCode, "candidate has no code")
			continue
		}
		c, err := geomop.Centroid(f.Geometry)
		if err != nil {
			report.Skip(StageGapAssign, i, code, ReasonCentroidFailed, err.Error())
			continue
		}
		anchors = append(anchors, anchor{code: code, centroid: c})
	}

	out := make([]*geojson.Feature, 0, len(gaps))
	discarded := 0
	for gi, gap := range gaps {
		if gap.AreaSqM > maxAreaSqM {
			discarded++
			report.Skip(StageGapAssign, gi, "", ReasonGapTooLarge,
				fmt.Sprintf("%.0f m2 over limit %.0f m2", gap.AreaSqM, maxAreaSqM))
			continue
		}
		if len(anchors) == 0 {
			report.Skip(StageGapAssign, gi, "", ReasonNoCandidates, "")
			continue
		}
		gc, err := geomop.Centroid(gap.Geometry)
		if err != nil {
			report.Skip(StageGapAssign, gi, "", ReasonCentroidFailed, err.Error())
			continue
		}
		best := 0
		bestDist := math.Inf(1)
		for ai, a := range anchors {
			if d := geomop.GreatCircleKm(gc, a.centroid); d < bestDist {
				best = ai
				bestDist = d
			}
		}
		out = append(out, postal.NewZoneFeature(anchors[best].code, gap.Geometry))
	}
	report.Stage(StageGapAssign, len(gaps), len(out))
	logger.L().Info("gaps assigned", "in", len(gaps), "assigned", len(out), "discarded", discarded)
	return out
}
