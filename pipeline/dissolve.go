package pipeline

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/geomop"
	"postzone/logger"
	"postzone/postal"
)

// Dissolve groups the working set by code and unions each group into one
// feature, emitted in first-seen-code order. Features without a usable
// code are dropped from dissolution entirely; a group whose union fails or
// comes up empty emits nothing.
func Dissolve(fs []*geojson.Feature, report *RunReport) []*geojson.Feature {
	var order []string
	groups := make(map[string][]orb.Geometry)
	for i, f := range fs {
		code, ok := postal.Code(f)
		if !ok {
			report.Skip(StageDissolve, i, "", ReasonMissingCode, "")
			continue
		}
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], f.Geometry)
	}

	out := make([]*geojson.Feature, 0, len(order))
	for _, code := range order {
		g := geomop.FoldUnion(groups[code], func(i int, err error) {
			report.Skip(StageDissolve, i, code, ReasonUnionFailed, err.Error())
		})
		if !postal.Polygonal(g) {
			report.Skip(StageDissolve, -1, code, ReasonUnionEmpty, "")
			continue
		}
		out = append(out, postal.NewZoneFeature(code, g))
	}
	report.Stage(StageDissolve, len(fs), len(out))
	logger.L().Info("dissolved by code", "in", len(fs), "codes", len(out))
	return out
}
