package pipeline

import (
	"github.com/paulmach/orb/geojson"

	"postzone/geomop"
	"postzone/logger"
	"postzone/postal"
)

// BuildLabels derives one anchor point per dissolved feature. A centroid
// failure drops the label, not the zone.
func BuildLabels(fs []*geojson.Feature, report *RunReport) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(fs))
	for i, f := range fs {
		code, _ := postal.Code(f)
		c, err := geomop.Centroid(f.Geometry)
		if err != nil {
			report.Skip(StageLabel, i, code, ReasonCentroidFailed, err.Error())
			continue
		}
		out = append(out, postal.NewZoneFeature(code, c))
	}
	report.Stage(StageLabel, len(fs), len(out))
	logger.L().Info("labels built", "count", len(out))
	return out
}
